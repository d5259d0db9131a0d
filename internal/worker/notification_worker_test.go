package worker

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/service"
)

func TestNotificationWorkerDeliversQueuedEvents(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	notifications := service.NewNotificationService(logger, config.NotificationConfig{
		EmailFrom:  "noreply@example.com",
		WebhookURL: "https://hooks.example.com/complaints",
	})
	dispatcher := events.NewInMemoryDispatcher(logger)

	ctx, cancel := context.WithCancel(context.Background())
	w := StartNotificationWorker(ctx, dispatcher, notifications, logger, 8)

	dispatcher.Publish(context.Background(), events.Event{Type: events.EventComplaintCreated, ComplaintID: "c1"})
	dispatcher.Publish(context.Background(), events.Event{Type: events.EventComplaintStatusChanged, ComplaintID: "c1", AuthorID: "u1"})

	cancel()
	w.Wait()

	if n := logs.FilterMessage("ComplaintCreated").Len(); n != 1 {
		t.Fatalf("expected one created log, got %d", n)
	}
	if n := logs.FilterMessage("email notification").Len(); n != 1 {
		t.Fatalf("expected one email for the status change, got %d", n)
	}
	if n := logs.FilterMessage("webhook notification").Len(); n != 2 {
		t.Fatalf("expected two webhooks, got %d", n)
	}
}

func TestNotificationWorkerQueueFull(t *testing.T) {
	notifications := service.NewNotificationService(nil, config.NotificationConfig{})
	w := &NotificationWorker{notifications: notifications, queue: make(chan events.Event, 1), logger: zap.NewNop()}

	if err := w.enqueue(context.Background(), events.Event{Type: events.EventComplaintDeleted}); err != nil {
		t.Fatalf("first enqueue: %v", err)
	}
	if err := w.enqueue(context.Background(), events.Event{Type: events.EventComplaintDeleted}); err != errQueueFull {
		t.Fatalf("expected errQueueFull, got %v", err)
	}

	done := make(chan struct{})
	go func() {
		w.flush()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("flush did not return")
	}
	if len(w.queue) != 0 {
		t.Fatalf("expected queue to be drained")
	}
}
