// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-examgen-be/internal/dto"
	"ai-examgen-be/internal/pkg/logger"
	"ai-examgen-be/internal/pkg/mailer"
	"ai-examgen-be/pkg/events"
	"ai-examgen-be/pkg/genai"
	pktNats "ai-examgen-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService is the background worker behind the generation flow. It
// takes stage lifecycle messages off the in-process bus, forwards terminal
// transitions to the external event stream and emails the user when their
// answer key is done.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.StageLifecycleMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal lifecycle message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	cs.logger.Info("ConsumerService", "Processing stage transition", map[string]interface{}{
		"user_id": payload.UserID,
		"stage":   payload.Stage,
		"status":  payload.Status,
	})

	switch payload.Status {
	case "completed":
		cs.forwardEvent(ctx, events.TypeGenerationCompleted, map[string]interface{}{
			"user_id":        payload.UserID,
			"stage":          payload.Stage,
			"subject":        payload.Subject,
			"test_title":     payload.TestTitle,
			"question_count": payload.QuestionCount,
		})

		if payload.Stage == genai.StageSolution && payload.Email != "" {
			cs.sendCompletionEmail(payload)
		}

	case "failed":
		cs.forwardEvent(ctx, events.TypeGenerationFailed, map[string]interface{}{
			"user_id": payload.UserID,
			"stage":   payload.Stage,
			"subject": payload.Subject,
			"error":   payload.Error,
		})
	}

	msg.Ack()
}

// forwardEvent mirrors the transition onto NATS. Best effort: external
// integrations missing an event is better than replaying the whole message.
func (cs *consumerService) forwardEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if cs.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
		cs.logger.Warn("ConsumerService", "Failed to forward event to NATS", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

// sendCompletionEmail tells the user their exam package is ready. Mail
// failures are logged and the message is still acked; a broken SMTP setup
// must not replay generation messages forever.
func (cs *consumerService) sendCompletionEmail(payload dto.StageLifecycleMessage) {
	if cs.emailService == nil {
		return
	}
	err := cs.emailService.SendGenerationComplete(
		payload.Email,
		payload.Subject,
		payload.TestTitle,
		payload.QuestionCount,
	)
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to send completion email", map[string]interface{}{
			"email": payload.Email,
			"error": err.Error(),
		})
		return
	}
	cs.logger.Info("ConsumerService", "✅ Completion email sent", map[string]interface{}{
		"email": payload.Email,
	})
}
