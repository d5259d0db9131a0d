// Package worker runs background consumers.
package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/service"
)

var errQueueFull = errors.New("notification queue full")

// NotificationWorker moves notification delivery off the request path. Events are
// enqueued by a dispatcher subscription and drained by a single goroutine.
type NotificationWorker struct {
	notifications *service.NotificationService
	queue         chan events.Event
	logger        *zap.Logger
	wg            sync.WaitGroup
}

// StartNotificationWorker subscribes to the dispatcher and starts draining. The worker
// stops when ctx is cancelled; Wait blocks until queued events are flushed.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notifications *service.NotificationService, logger *zap.Logger, buffer int) *NotificationWorker {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &NotificationWorker{
		notifications: notifications,
		queue:         make(chan events.Event, buffer),
		logger:        logger,
	}
	if dispatcher == nil || notifications == nil {
		return w
	}

	for _, eventType := range notifications.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}

	w.wg.Add(1)
	go w.run(ctx)
	return w
}

// Wait blocks until the drain goroutine exits.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		return errQueueFull
	}
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case event := <-w.queue:
			w.deliver(event)
		case <-ctx.Done():
			w.flush()
			return
		}
	}
}

func (w *NotificationWorker) flush() {
	for {
		select {
		case event := <-w.queue:
			w.deliver(event)
		default:
			return
		}
	}
}

// deliver runs detached from the request context, which is usually gone by now.
func (w *NotificationWorker) deliver(event events.Event) {
	if err := w.notifications.Handle(context.Background(), event); err != nil {
		w.logger.Warn("notification failed",
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID),
			zap.Error(err))
	}
}
