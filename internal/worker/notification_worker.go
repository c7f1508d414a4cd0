// Package worker runs account notifications off the request path.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/events"
)

const defaultQueueSize = 256

// Handler processes one queued event.
type Handler interface {
	Handle(ctx context.Context, event events.Event) error
	EventTypes() []events.EventType
}

// NotificationWorker queues events published on the dispatcher and hands
// them to a Handler from a single goroutine. When the queue is full new
// events are dropped and logged; publishers never block.
type NotificationWorker struct {
	handler Handler
	logger  *zap.Logger
	queue   chan events.Event
	wg      sync.WaitGroup
}

// NewNotificationWorker creates a worker with the given queue size.
func NewNotificationWorker(handler Handler, logger *zap.Logger, size int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = defaultQueueSize
	}
	return &NotificationWorker{
		handler: handler,
		logger:  logger,
		queue:   make(chan events.Event, size),
	}
}

// StartNotificationWorker subscribes the worker to every event type the
// handler supports and starts draining the queue until ctx is done.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, handler Handler, logger *zap.Logger) *NotificationWorker {
	w := NewNotificationWorker(handler, logger, defaultQueueSize)
	if dispatcher == nil || handler == nil {
		return w
	}
	for _, t := range handler.EventTypes() {
		dispatcher.Subscribe(t, w.enqueue)
	}
	w.Start(ctx)
	return w
}

// Start launches the delivery goroutine.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				w.drain()
				return
			case event := <-w.queue:
				w.deliver(context.WithoutCancel(ctx), event)
			}
		}
	}()
}

// Wait blocks until the delivery goroutine has exited.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

// drain delivers what is already queued at shutdown.
func (w *NotificationWorker) drain() {
	for {
		select {
		case event := <-w.queue:
			w.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	if err := w.handler.Handle(ctx, event); err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
