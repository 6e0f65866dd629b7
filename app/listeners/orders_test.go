package listeners

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/event"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

func TestListenersFeedMetrics(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)
	Register()
	ctx := context.Background()

	created := testutil.ToFloat64(metrics.OrdersCreated)
	deleted := testutil.ToFloat64(metrics.OrdersDeleted)
	cascade := testutil.ToFloat64(metrics.OrderCascadeFailures)
	rollbacks := testutil.ToFloat64(metrics.OrderRollbacks)

	event.Fire(ctx, services.EventOrderCreated, models.Order{TotalPrice: 42})
	event.Fire(ctx, services.EventOrderDeleted, models.Order{})
	event.Fire(ctx, services.EventOrderCascadeFailed, &services.CascadeError{
		OrderID: primitive.NewObjectID(),
		Failed: []services.ItemFailure{
			{OrderItem: primitive.NewObjectID(), Reason: "timeout"},
			{OrderItem: primitive.NewObjectID(), Reason: "timeout"},
		},
	})
	event.Fire(ctx, services.EventOrderRolledBack, services.RollbackEvent{Items: 1, Cause: errors.New("boom")})

	assert.Equal(t, created+1, testutil.ToFloat64(metrics.OrdersCreated))
	assert.Equal(t, deleted+1, testutil.ToFloat64(metrics.OrdersDeleted))
	assert.Equal(t, cascade+2, testutil.ToFloat64(metrics.OrderCascadeFailures))
	assert.Equal(t, rollbacks+1, testutil.ToFloat64(metrics.OrderRollbacks))
}

func TestListenersIgnoreForeignPayloads(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)
	Register()

	before := testutil.ToFloat64(metrics.OrdersCreated)
	event.Fire(context.Background(), services.EventOrderCreated, "not an order")
	assert.Equal(t, before, testutil.ToFloat64(metrics.OrdersCreated))
}
