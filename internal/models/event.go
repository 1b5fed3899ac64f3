package models

import "time"

type Event struct {
	ID          uint      `gorm:"primaryKey" json:"event_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	StartTime   time.Time `gorm:"not null;index" json:"start_time"`
	EndTime     time.Time `gorm:"not null;index" json:"end_time"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// AllocatedResources is filled by the service layer from the allocations table.
	AllocatedResources []Resource `gorm:"-" json:"allocated_resources,omitempty"`
}

// Duration is the length of the event's [StartTime, EndTime) window.
func (e *Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}
