package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string
	d.Subscribe(EventComplaintCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.ComplaintID)
		return errors.New("smtp down")
	})
	d.Subscribe(EventComplaintCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.ComplaintID)
		return nil
	})
	d.Subscribe(EventComplaintDeleted, func(context.Context, Event) error {
		calls = append(calls, "deleted")
		return nil
	})

	d.Publish(context.Background(), Event{Type: EventComplaintCreated, ComplaintID: "c1"})

	if len(calls) != 2 || calls[0] != "first:c1" || calls[1] != "second:c1" {
		t.Fatalf("unexpected handler calls %v", calls)
	}
}

func TestDispatcherWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	d.Publish(context.Background(), Event{Type: EventComplaintStatusChanged})
}
