package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/Kmaheshkanna2005/resource-management/internal/dto"
	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"github.com/Kmaheshkanna2005/resource-management/internal/service"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventSyncer upserts an event coming from an upstream calendar.
type EventSyncer interface {
	SyncEvent(ctx context.Context, event *models.Event) error
}

// CalendarEventMessage is the payload published on the calendar exchange.
type CalendarEventMessage struct {
	EventID     uint     `json:"event_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	StartTime   dto.Time `json:"start_time"`
	EndTime     dto.Time `json:"end_time"`
}

type EventConsumer struct {
	syncer EventSyncer
}

func NewEventConsumer(syncer EventSyncer) *EventConsumer {
	return &EventConsumer{syncer: syncer}
}

// Start handles deliveries until msgs is closed or ctx is cancelled.
func (ec *EventConsumer) Start(ctx context.Context, msgs <-chan amqp.Delivery) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Println("[EventConsumer] context cancelled, stopping consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Println("[EventConsumer] channel closed, stopping consumer")
					return
				}
				ec.handleMessage(ctx, msg)
			}
		}
	}()
}

func (ec *EventConsumer) handleMessage(ctx context.Context, msg amqp.Delivery) {
	var payload CalendarEventMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		log.Printf("[EventConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}
	if strings.TrimSpace(payload.Title) == "" || payload.StartTime.IsZero() || payload.EndTime.IsZero() {
		log.Printf("[EventConsumer] dropping incomplete event %d", payload.EventID)
		msg.Nack(false, false)
		return
	}

	event := &models.Event{
		ID:          payload.EventID,
		Title:       payload.Title,
		Description: payload.Description,
		StartTime:   payload.StartTime.Time,
		EndTime:     payload.EndTime.Time,
	}

	if err := ec.syncer.SyncEvent(ctx, event); err != nil {
		if errors.Is(err, service.ErrStorage) {
			log.Printf("[EventConsumer] failed to sync event %d: %v", payload.EventID, err)
			msg.Nack(false, true) // requeue
			return
		}
		// Conflicts and invalid windows will fail the same way on redelivery.
		log.Printf("[EventConsumer] rejected event %d: %v", payload.EventID, err)
		msg.Nack(false, false)
		return
	}

	log.Printf("[EventConsumer] synced event %d: %s", event.ID, event.Title)
	msg.Ack(false)
}
