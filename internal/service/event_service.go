package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"github.com/Kmaheshkanna2005/resource-management/internal/repository"
	"github.com/Kmaheshkanna2005/resource-management/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// EventUpdate carries the fields to change; nil fields are left as they are.
type EventUpdate struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
}

type EventService interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEvent(ctx context.Context, id uint) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, id uint, update EventUpdate) (*models.Event, error)
	DeleteEvent(ctx context.Context, id uint) error
	SyncEvent(ctx context.Context, event *models.Event) error
}

type eventService struct {
	tx           repository.TxRunner
	eventRepo    repository.EventRepository
	resourceRepo repository.ResourceRepository
	allocRepo    repository.AllocationRepository
	checker      *ConflictChecker
	publisher    Publisher
}

func NewEventService(
	tx repository.TxRunner,
	eventRepo repository.EventRepository,
	resourceRepo repository.ResourceRepository,
	allocRepo repository.AllocationRepository,
	publisher Publisher,
) EventService {
	return &eventService{
		tx:           tx,
		eventRepo:    eventRepo,
		resourceRepo: resourceRepo,
		allocRepo:    allocRepo,
		checker:      NewConflictChecker(allocRepo),
		publisher:    publisher,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *models.Event) error {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return validationErr("title is required")
	}
	event.StartTime = event.StartTime.UTC()
	event.EndTime = event.EndTime.UTC()
	if err := ValidateEventTime(event.StartTime, event.EndTime); err != nil {
		return err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return storageErr("create event", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id uint) (*models.Event, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrEventNotFound, "load event")
	}

	allocations, err := s.allocRepo.FindAll(ctx, repository.AllocationFilter{EventID: id})
	if err != nil {
		return nil, storageErr("load event allocations", err)
	}
	event.AllocatedResources = allocatedResources(allocations)[id]
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.eventRepo.FindAll(ctx)
	if err != nil {
		return nil, storageErr("list events", err)
	}

	allocations, err := s.allocRepo.FindAll(ctx, repository.AllocationFilter{})
	if err != nil {
		return nil, storageErr("load allocations", err)
	}
	byEvent := allocatedResources(allocations)
	for i := range events {
		events[i].AllocatedResources = byEvent[events[i].ID]
	}
	return events, nil
}

// UpdateEvent applies update to the event. When the window moves, every
// resource already allocated to the event is re-checked against the new
// window (ignoring the event itself) and the update is refused on conflict.
func (s *eventService) UpdateEvent(ctx context.Context, id uint, update EventUpdate) (*models.Event, error) {
	ctx, span := tracing.Start(ctx, "EventService.UpdateEvent", attribute.Int64("event_id", int64(id)))
	var result *models.Event

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return lookupErr(err, ErrEventNotFound, "load event")
		}

		if update.Title != nil {
			title := strings.TrimSpace(*update.Title)
			if title == "" {
				return validationErr("title must not be empty")
			}
			event.Title = title
		}
		if update.Description != nil {
			event.Description = *update.Description
		}

		if update.StartTime != nil || update.EndTime != nil {
			start, end := event.StartTime, event.EndTime
			if update.StartTime != nil {
				start = update.StartTime.UTC()
			}
			if update.EndTime != nil {
				end = update.EndTime.UTC()
			}
			if err := ValidateEventTime(start, end); err != nil {
				return err
			}
			if !start.Equal(event.StartTime) || !end.Equal(event.EndTime) {
				if err := s.recheckAllocations(ctx, tx, id, start, end); err != nil {
					return err
				}
			}
			event.StartTime, event.EndTime = start, end
		}

		if err := s.eventRepo.Update(ctx, tx, event); err != nil {
			return storageErr("update event", err)
		}
		result = event
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}

	publish(s.publisher, "EventService", RoutingEventUpdated, EventMessage{
		EventID:   result.ID,
		Title:     result.Title,
		StartTime: result.StartTime,
		EndTime:   result.EndTime,
	})
	return result, nil
}

func (s *eventService) recheckAllocations(ctx context.Context, tx *gorm.DB, eventID uint, start, end time.Time) error {
	resourceIDs, err := s.allocRepo.ResourceIDsByEvent(ctx, tx, eventID)
	if err != nil {
		return storageErr("load event resources", err)
	}
	if len(resourceIDs) == 0 {
		return nil
	}
	if _, err := s.resourceRepo.FindByIDsForUpdate(ctx, tx, resourceIDs); err != nil {
		return storageErr("lock resources", err)
	}

	results, err := s.checker.CheckMultiple(ctx, tx, resourceIDs, start, end, &eventID)
	if err != nil {
		return err
	}
	if conflicts := unavailable(results); len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

// DeleteEvent removes the event; its allocations go with it.
func (s *eventService) DeleteEvent(ctx context.Context, id uint) error {
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return lookupErr(err, ErrEventNotFound, "delete event")
	}
	publish(s.publisher, "EventService", RoutingEventDeleted, EventMessage{EventID: id})
	return nil
}

// SyncEvent upserts an event received from an upstream calendar. Known
// events go through UpdateEvent so their allocations stay conflict free.
func (s *eventService) SyncEvent(ctx context.Context, event *models.Event) error {
	if event.ID == 0 {
		return s.CreateEvent(ctx, event)
	}

	_, err := s.eventRepo.FindByID(ctx, event.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.CreateEvent(ctx, event)
	}
	if err != nil {
		return storageErr("load event", err)
	}

	updated, err := s.UpdateEvent(ctx, event.ID, EventUpdate{
		Title:       &event.Title,
		Description: &event.Description,
		StartTime:   &event.StartTime,
		EndTime:     &event.EndTime,
	})
	if err != nil {
		return err
	}
	*event = *updated
	return nil
}

func allocatedResources(allocations []models.Allocation) map[uint][]models.Resource {
	byEvent := make(map[uint][]models.Resource)
	for _, a := range allocations {
		if a.Resource == nil {
			continue
		}
		byEvent[a.EventID] = append(byEvent[a.EventID], *a.Resource)
	}
	return byEvent
}
