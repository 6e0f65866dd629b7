// Package listeners subscribes to domain events at boot.
package listeners

import (
	"context"

	"github.com/shashiranjanraj/shopfront/app/models"
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/event"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

// Register wires the order lifecycle events to metrics and logs. Call once
// at boot.
func Register() {
	event.Listen(services.EventOrderCreated, orderCreated)
	event.Listen(services.EventOrderDeleted, orderDeleted)
	event.Listen(services.EventOrderCascadeFailed, cascadeFailed)
	event.Listen(services.EventOrderRolledBack, rolledBack)
}

func orderCreated(_ context.Context, payload any) {
	o, ok := payload.(models.Order)
	if !ok {
		return
	}
	metrics.OrdersCreated.Inc()
	metrics.OrderValue.Observe(o.TotalPrice)
}

func orderDeleted(_ context.Context, payload any) {
	if _, ok := payload.(models.Order); ok {
		metrics.OrdersDeleted.Inc()
	}
}

func cascadeFailed(ctx context.Context, payload any) {
	cerr, ok := payload.(*services.CascadeError)
	if !ok {
		return
	}
	metrics.OrderCascadeFailures.Add(float64(len(cerr.Failed)))
	for _, f := range cerr.Failed {
		logger.WithCtx(ctx).Warn("orphaned order item",
			"order_id", cerr.OrderID.Hex(),
			"order_item_id", f.OrderItem.Hex(),
			"reason", f.Reason,
		)
	}
}

func rolledBack(_ context.Context, payload any) {
	if _, ok := payload.(services.RollbackEvent); ok {
		metrics.OrderRollbacks.Inc()
	}
}
