package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/solicitud-service/internal/config"
	"github.com/spec-kit/solicitud-service/internal/events"
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
	n.dispatcher.Subscribe(events.EventSolicitudCreated, n.handleSolicitudCreated)
	n.dispatcher.Subscribe(events.EventSolicitudClaimed, n.handleSolicitudClaimed)
}

func (n *NotificationService) handleSolicitudCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("SolicitudCreated", zap.String("solicitud_id", event.SolicitudID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSolicitudClaimed(ctx context.Context, event events.Event) error {
	n.logger.Info("SolicitudClaimed", zap.String("solicitud_id", event.SolicitudID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("solicitud_id", event.SolicitudID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("solicitud_id", event.SolicitudID),
		zap.String("event_type", string(event.Type)))
}
