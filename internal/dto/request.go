package dto

type CreateEventRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	StartTime   Time   `json:"start_time" validate:"required"`
	EndTime     Time   `json:"end_time" validate:"required,gtfield=StartTime"`
}

// UpdateEventRequest only changes the fields that are present.
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartTime   *Time   `json:"start_time"`
	EndTime     *Time   `json:"end_time"`
}

type CreateResourceRequest struct {
	Name string `json:"resource_name" validate:"required"`
	Type string `json:"resource_type" validate:"required"`
}

type UpdateResourceRequest struct {
	Name *string `json:"resource_name"`
	Type *string `json:"resource_type"`
}

type AllocateRequest struct {
	EventID    uint `json:"event_id" validate:"required"`
	ResourceID uint `json:"resource_id" validate:"required"`
}

type BatchAllocateRequest struct {
	EventID     uint   `json:"event_id" validate:"required"`
	ResourceIDs []uint `json:"resource_ids" validate:"required,min=1"`
}

type ConflictCheckRequest struct {
	ResourceID     uint  `json:"resource_id" validate:"required"`
	StartTime      Time  `json:"start_time" validate:"required"`
	EndTime        Time  `json:"end_time" validate:"required"`
	ExcludeEventID *uint `json:"exclude_event_id,omitempty"`
}

type BatchConflictCheckRequest struct {
	ResourceIDs    []uint `json:"resource_ids" validate:"required,min=1"`
	StartTime      Time   `json:"start_time" validate:"required"`
	EndTime        Time   `json:"end_time" validate:"required"`
	ExcludeEventID *uint  `json:"exclude_event_id,omitempty"`
}
