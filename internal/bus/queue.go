package bus

import (
	"context"
	"sync/atomic"

	"main/internal/adapter"
	"main/pkg/exception"
)

// Queue is the bounded, non-blocking event queue feeding the router loop.
// Feed callbacks and deferred timers publish; exactly one consumer drains.
type Queue struct {
	ch     chan adapter.Event
	closed uint32
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan adapter.Event, capacity)}
}

// TryPublish enqueues an event without blocking.
func (q *Queue) TryPublish(e adapter.Event) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return exception.ErrEngineQueueClosed
	}
	select {
	case q.ch <- e:
		return nil
	default:
		return exception.ErrEngineQueueFull
	}
}

// Close stops the queue from accepting new events.
func (q *Queue) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.ch)
	}
}

// Run consumes events until the context is done or the queue is closed.
func (q *Queue) Run(ctx context.Context, handler func(adapter.Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-q.ch:
			if !ok {
				return
			}
			handler(e)
		}
	}
}
