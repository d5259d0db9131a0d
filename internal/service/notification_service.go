package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/events"
)

// NotificationService turns complaint events into outbound notifications. Delivery is
// stubbed: each channel logs what it would send.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// EventTypes lists the events the service reacts to.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventComplaintCreated,
		events.EventComplaintStatusChanged,
		events.EventComplaintNotesUpdated,
		events.EventComplaintDeleted,
	}
}

// Handle routes an event to its notification channels.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventComplaintCreated:
		return n.handleComplaintCreated(ctx, event)
	case events.EventComplaintStatusChanged:
		return n.handleStatusChanged(ctx, event)
	case events.EventComplaintNotesUpdated:
		return n.handleNotesUpdated(ctx, event)
	case events.EventComplaintDeleted:
		return n.handleComplaintDeleted(ctx, event)
	}
	return fmt.Errorf("unsupported event type %q", event.Type)
}

func (n *NotificationService) handleComplaintCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintCreated", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.sendWebhook(ctx, event)
	return nil
}

// The author hears about status changes; notes stay internal.
func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintStatusChanged", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.sendEmail(ctx, event)
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleNotesUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintNotesUpdated", zap.String("complaint_id", event.ComplaintID))
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleComplaintDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintDeleted", zap.String("complaint_id", event.ComplaintID), zap.String("actor", event.Actor.UserID))
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) sendEmail(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("email notification",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to_user", event.AuthorID),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhook(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("webhook notification",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}
