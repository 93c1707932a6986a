package service

import (
	"context"
	"fmt"
	"strings"

	"ai-examgen-be/internal/constant"
	"ai-examgen-be/internal/pkg/logger"
	"ai-examgen-be/pkg/events"
	pktNats "ai-examgen-be/pkg/nats" // Renamed to avoid collision

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, eventType string, payload interface{})
}

// NotificationService bridges bus events to the websocket hub: it listens to
// the NATS stream and pushes a rendered notification to the event's owner.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// Strip "events." prefix from type if present (NATS subject includes stream name)
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	template, ok := constant.NotificationTemplates[typeCode]
	if !ok {
		s.logger.Info("NotificationService", "No notification template for event, skipping", map[string]interface{}{"type": typeCode})
		return nil
	}

	payload := event.Payload()
	uidStr, ok := payload["user_id"].(string)
	if !ok {
		s.logger.Warn("NotificationService", "Event carries no user_id, skipping", map[string]interface{}{"type": typeCode})
		return nil
	}
	userID, err := uuid.Parse(uidStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Event user_id is not a UUID, skipping", map[string]interface{}{"type": typeCode, "user_id": uidStr})
		return nil
	}

	message := s.renderTemplate(template, payload)

	if s.delivery != nil {
		s.delivery.Send(userID, "notification", map[string]interface{}{
			"code":    typeCode,
			"message": message,
			"data":    payload,
		})
	}
	return nil
}

// renderTemplate fills {placeholder} slots from the event payload.
func (s *NotificationService) renderTemplate(template string, payload map[string]interface{}) string {
	msg := template
	for k, v := range payload {
		placeholder := fmt.Sprintf("{%s}", k)
		msg = strings.ReplaceAll(msg, placeholder, fmt.Sprintf("%v", v))
	}
	return msg
}
