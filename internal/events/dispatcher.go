package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// EventHandler reacts to a published account event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans account events out to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// ErrHandlerPanic wraps a panic raised inside a subscriber.
var ErrHandlerPanic = errors.New("event handler panicked")

type inMemoryDispatcher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]EventHandler
}

// NewInMemoryDispatcher returns a process-local dispatcher. Handlers run on
// the publishing goroutine in subscription order.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{subscribers: make(map[EventType][]EventHandler)}
}

// Publish runs every subscriber of event.Type. A failing or panicking
// subscriber does not stop the rest; failures come back joined. Publishing
// stops early once ctx is done.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := make([]EventHandler, len(d.subscribers[event.Type]))
	copy(handlers, d.subscribers[event.Type])
	d.mu.RUnlock()

	var errs []error
	for _, handle := range handlers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := invoke(ctx, handle, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	d.subscribers[eventType] = append(d.subscribers[eventType], handler)
	d.mu.Unlock()
}

func invoke(ctx context.Context, handle EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrHandlerPanic, event.Type, r)
		}
	}()
	return handle(ctx, event)
}
