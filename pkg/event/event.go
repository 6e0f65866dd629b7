// Package event provides an in-process event dispatcher. Listeners are
// registered at boot (see app/listeners) and run synchronously with Fire or
// on a bounded worker pool with FireAsync.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/workerpool"
)

// asyncWorkers bounds the goroutines running FireAsync listeners.
const asyncWorkers = 16

// Handler receives an event payload.
type Handler func(ctx context.Context, payload any)

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
	inflight sync.WaitGroup

	poolOnce sync.Once
	pool     *workerpool.Pool
)

func workers() *workerpool.Pool {
	poolOnce.Do(func() { pool = workerpool.New(asyncWorkers) })
	return pool
}

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

func snapshot(event string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	return hs
}

// Fire dispatches an event synchronously to all registered listeners. A
// panicking listener is logged and does not stop the others.
func Fire(ctx context.Context, event string, payload any) {
	for _, h := range snapshot(event) {
		call(ctx, event, h, payload)
	}
}

// FireAsync hands each listener to the worker pool and returns. Listeners get
// a context that outlives the request. When the pool is saturated the
// listener runs on the caller's goroutine instead of being dropped.
func FireAsync(ctx context.Context, event string, payload any) {
	detached := context.WithoutCancel(ctx)
	for _, h := range snapshot(event) {
		inflight.Add(1)
		task := func() {
			defer inflight.Done()
			call(detached, event, h, payload)
		}
		if err := workers().Submit(task); err != nil {
			logger.WithCtx(ctx).Debug("event pool busy, running listener inline", "event", event, "error", err)
			task()
		}
	}
}

// Wait blocks until every FireAsync listener has returned.
func Wait() { inflight.Wait() }

func call(ctx context.Context, event string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event listener panicked", "event", event, "panic", fmt.Sprint(r))
		}
	}()
	h(ctx, payload)
}

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
