package event_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/shopfront/pkg/event"
)

func TestFireRunsListenersInOrder(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)

	var seen []string
	event.Listen("order.created", func(_ context.Context, p any) { seen = append(seen, "a:"+p.(string)) })
	event.Listen("order.created", func(_ context.Context, p any) { seen = append(seen, "b:"+p.(string)) })
	event.Listen("order.deleted", func(_ context.Context, p any) { seen = append(seen, "other") })

	event.Fire(context.Background(), "order.created", "x")
	assert.Equal(t, []string{"a:x", "b:x"}, seen)
}

func TestPanickingListenerDoesNotStopOthers(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)

	var calls int32
	event.Listen("e", func(context.Context, any) { panic("boom") })
	event.Listen("e", func(context.Context, any) { atomic.AddInt32(&calls, 1) })

	event.Fire(context.Background(), "e", nil)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFireAsyncSurvivesCancelledRequest(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)

	var alive int32
	event.Listen("e", func(ctx context.Context, _ any) {
		if ctx.Err() == nil {
			atomic.AddInt32(&alive, 1)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	event.FireAsync(ctx, "e", nil)
	event.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&alive))
}

func TestFireAsyncRunsEveryListenerUnderLoad(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)

	const listeners = 100
	var calls int32
	for range listeners {
		event.Listen("burst", func(context.Context, any) { atomic.AddInt32(&calls, 1) })
	}

	event.FireAsync(context.Background(), "burst", nil)
	event.Wait()

	assert.Equal(t, int32(listeners), atomic.LoadInt32(&calls))
}
