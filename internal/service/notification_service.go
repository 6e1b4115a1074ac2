package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/expense-share/internal/config"
	"github.com/spec-kit/expense-share/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventGroupCreated, n.handleGroupChanged)
	n.dispatcher.Subscribe(events.EventGroupUpdated, n.handleGroupChanged)
	n.dispatcher.Subscribe(events.EventGroupDeleted, n.handleGroupChanged)
	n.dispatcher.Subscribe(events.EventExpenseCreated, n.handleExpenseChanged)
	n.dispatcher.Subscribe(events.EventExpenseUpdated, n.handleExpenseChanged)
	n.dispatcher.Subscribe(events.EventExpenseDeleted, n.handleExpenseChanged)
}

func (n *NotificationService) handleGroupChanged(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("group_id", event.GroupID),
		zap.String("actor", event.Actor),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleExpenseChanged(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("group_id", event.GroupID),
		zap.String("actor", event.Actor),
		zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("group_id", event.GroupID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("group_id", event.GroupID),
		zap.String("event_type", string(event.Type)))
}
