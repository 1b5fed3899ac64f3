package models

import "time"

// Allocation binds one resource to one event. The (event_id, resource_id)
// pair is unique; rows go away with their event or resource.
type Allocation struct {
	ID          uint      `gorm:"primaryKey" json:"allocation_id"`
	EventID     uint      `gorm:"not null;uniqueIndex:idx_allocation_event_resource" json:"event_id"`
	ResourceID  uint      `gorm:"not null;uniqueIndex:idx_allocation_event_resource;index" json:"resource_id"`
	AllocatedAt time.Time `gorm:"not null" json:"allocated_at"`

	Event    *Event    `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"event,omitempty"`
	Resource *Resource `gorm:"foreignKey:ResourceID;constraint:OnDelete:CASCADE" json:"resource,omitempty"`
}
