package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/securohelp/case-service/internal/config"
	"github.com/securohelp/case-service/internal/events"
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
	n.dispatcher.Subscribe(events.EventCaseCreated, n.handleCaseCreated)
	n.dispatcher.Subscribe(events.EventCaseStatusChanged, n.handleCaseStatusChanged)
	n.dispatcher.Subscribe(events.EventCaseDeleted, n.handleCaseDeleted)
}

func (n *NotificationService) handleCaseCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseCreated", zap.String("case_id", event.CaseID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCaseStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseStatusChanged", zap.String("case_id", event.CaseID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleCaseDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("CaseDeleted", zap.String("case_id", event.CaseID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("case_id", event.CaseID),
		zap.String("event_type", string(event.Type)))
}
