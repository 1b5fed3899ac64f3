package dto

import (
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"github.com/Kmaheshkanna2005/resource-management/internal/service"
)

type ResourceResponse struct {
	ID        uint                `json:"resource_id"`
	Name      string              `json:"resource_name"`
	Type      models.ResourceType `json:"resource_type"`
	CreatedAt time.Time           `json:"created_at"`
}

type EventResponse struct {
	ID                 uint               `json:"event_id"`
	Title              string             `json:"title"`
	Description        string             `json:"description,omitempty"`
	StartTime          time.Time          `json:"start_time"`
	EndTime            time.Time          `json:"end_time"`
	DurationHours      float64            `json:"duration_hours"`
	AllocatedResources []ResourceResponse `json:"allocated_resources"`
	CreatedAt          time.Time          `json:"created_at"`
}

type AllocationResponse struct {
	ID          uint              `json:"allocation_id"`
	EventID     uint              `json:"event_id"`
	ResourceID  uint              `json:"resource_id"`
	AllocatedAt time.Time         `json:"allocated_at"`
	Event       *EventResponse    `json:"event,omitempty"`
	Resource    *ResourceResponse `json:"resource,omitempty"`
}

type BatchAllocationResponse struct {
	EventID     uint   `json:"event_id"`
	ResourceIDs []uint `json:"allocated_resource_ids"`
	Message     string `json:"message"`
}

type ConflictCheckResponse struct {
	ResourceID uint                     `json:"resource_id"`
	StartTime  time.Time                `json:"start_time"`
	EndTime    time.Time                `json:"end_time"`
	Available  bool                     `json:"is_available"`
	Conflicts  []service.ConflictRecord `json:"conflicts"`
}

type BatchConflictCheckResponse struct {
	StartTime    time.Time                       `json:"start_time"`
	EndTime      time.Time                       `json:"end_time"`
	AllAvailable bool                            `json:"all_available"`
	Results      map[uint]service.ConflictResult `json:"results"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

// ConflictErrorResponse is the 409 body of a refused allocation. Conflicts is
// a list for a single resource and a map keyed by resource id for a batch.
type ConflictErrorResponse struct {
	Message   string `json:"message"`
	Conflicts any    `json:"conflicts"`
}

func ToResourceResponse(r *models.Resource) ResourceResponse {
	return ResourceResponse{
		ID:        r.ID,
		Name:      r.Name,
		Type:      r.Type,
		CreatedAt: r.CreatedAt,
	}
}

func ToEventResponse(e *models.Event) EventResponse {
	resources := make([]ResourceResponse, len(e.AllocatedResources))
	for i := range e.AllocatedResources {
		resources[i] = ToResourceResponse(&e.AllocatedResources[i])
	}
	return EventResponse{
		ID:                 e.ID,
		Title:              e.Title,
		Description:        e.Description,
		StartTime:          e.StartTime,
		EndTime:            e.EndTime,
		DurationHours:      e.Duration().Hours(),
		AllocatedResources: resources,
		CreatedAt:          e.CreatedAt,
	}
}

func ToAllocationResponse(a *models.Allocation) AllocationResponse {
	resp := AllocationResponse{
		ID:          a.ID,
		EventID:     a.EventID,
		ResourceID:  a.ResourceID,
		AllocatedAt: a.AllocatedAt,
	}
	if a.Event != nil {
		ev := ToEventResponse(a.Event)
		ev.AllocatedResources = nil
		resp.Event = &ev
	}
	if a.Resource != nil {
		r := ToResourceResponse(a.Resource)
		resp.Resource = &r
	}
	return resp
}
