package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queuedSink() *MongoHandler {
	return &MongoHandler{sink: newSink(nil, nil)}
}

func TestMongoHandlerPromotesTraceIDs(t *testing.T) {
	h := queuedSink()
	log := slog.New(h).With("request_id", "req-1")

	log.Info("order created", "order_id", "64b7f0c2a1b2c3d4e5f60718", "user_id", "u1", "total", 25.5,
		slog.Group("shipping", "city", "Pune"))

	require.Len(t, h.queue, 1)
	doc := <-h.queue
	assert.Equal(t, "order created", doc.Msg)
	assert.Equal(t, "INFO", doc.Level)
	assert.Equal(t, "req-1", doc.RequestID)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", doc.OrderID)
	assert.Equal(t, "u1", doc.UserID)
	assert.Equal(t, 25.5, doc.Attrs["total"])
	assert.Equal(t, "Pune", doc.Attrs["shipping.city"])
	assert.NotContains(t, doc.Attrs, "order_id")
}

func TestMongoHandlerGroupsKeepIDsInAttrs(t *testing.T) {
	h := queuedSink()
	slog.New(h).WithGroup("upstream").Info("retry", "request_id", "other")

	doc := <-h.queue
	assert.Empty(t, doc.RequestID)
	assert.Equal(t, "other", doc.Attrs["upstream.request_id"])
}

func TestMongoHandlerSkipsDebugAndCountsDrops(t *testing.T) {
	h := queuedSink()
	log := slog.New(h)

	log.Debug("noise")
	assert.Empty(t, h.queue)

	for range sinkQueueSize + 3 {
		log.Info("burst")
	}
	assert.Equal(t, int64(3), h.Dropped())
}

func TestMultiHandlerFansOutToSinks(t *testing.T) {
	a, b := queuedSink(), queuedSink()
	slog.New(NewMultiHandler(a, b)).With("order_id", "o1").Warn("cascade incomplete")

	assert.Equal(t, "o1", (<-a.queue).OrderID)
	assert.Equal(t, "o1", (<-b.queue).OrderID)
}
