package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/config"
	"github.com/spec-kit/parking-service/internal/events"
)

// NotificationService emits account notifications for domain events.
// Delivery is stubbed; messages are logged.
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

// Handle delivers the notification for a single event. Unknown event types
// are ignored.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventUserRegistered:
		return n.handleUserRegistered(ctx, event)
	case events.EventUserLoggedIn:
		return n.handleUserLoggedIn(ctx, event)
	}
	return nil
}

// EventTypes lists the events this service reacts to.
func (n *NotificationService) EventTypes() []events.EventType {
	return []events.EventType{events.EventUserRegistered, events.EventUserLoggedIn}
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	if p, ok := event.Payload.(events.UserRegisteredPayload); ok {
		n.sendWelcomeEmailStub(ctx, event, p.Email)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserLoggedIn(_ context.Context, event events.Event) error {
	n.logger.Debug("UserLoggedIn", zap.String("user_id", event.UserID))
	return nil
}

func (n *NotificationService) sendWelcomeEmailStub(_ context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" || to == "" {
		return
	}
	n.logger.Debug("sendWelcomeEmailStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("user_id", event.UserID))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("user_id", event.UserID),
		zap.String("event_type", string(event.Type)))
}
