package service

import (
	"context"
	"fmt"
	"time"

	"finops-copilot-be/internal/dto"
	"finops-copilot-be/internal/pkg/logger"
	"finops-copilot-be/pkg/events"
	pktNats "finops-copilot-be/pkg/nats"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(ownerId string, notification dto.NotificationDTO)
}

// NotificationService bridges the event bus to connected clients: a finished
// analysis or a deleted thread shows up on the owner's open tabs without
// polling.
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
	payload := event.Payload()

	ownerId, _ := payload["owner_id"].(string)
	if ownerId == "" {
		s.logger.Warn("NotificationService", fmt.Sprintf("Event %s carries no owner, dropping", event.EventType()), nil)
		return nil
	}

	var notif dto.NotificationDTO
	switch event.EventType() {
	case events.TypeAnalysisCompleted:
		notif = dto.NotificationDTO{
			Type:    event.EventType(),
			Title:   "Analysis ready",
			Message: "A new cost analysis finished for one of your conversations.",
		}
	case events.TypeThreadDeleted:
		notif = dto.NotificationDTO{
			Type:    event.EventType(),
			Title:   "Conversation deleted",
			Message: "A conversation and its analyses were removed.",
		}
	default:
		// Unknown event types are acked and ignored.
		return nil
	}

	notif.Payload = payload
	notif.CreatedAt = time.Now()

	if s.delivery != nil {
		s.delivery.Send(ownerId, notif)
	}

	return nil
}
