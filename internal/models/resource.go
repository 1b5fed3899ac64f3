package models

import (
	"strings"
	"time"
)

type ResourceType string

const (
	ResourceRoom       ResourceType = "room"
	ResourceInstructor ResourceType = "instructor"
	ResourceEquipment  ResourceType = "equipment"
)

// ResourceTypes lists every allocatable resource type in display order.
var ResourceTypes = []ResourceType{ResourceRoom, ResourceInstructor, ResourceEquipment}

// ParseResourceType normalises s and reports whether it names a known type.
func ParseResourceType(s string) (ResourceType, bool) {
	t := ResourceType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ResourceTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

type Resource struct {
	ID        uint         `gorm:"primaryKey" json:"resource_id"`
	Name      string       `gorm:"size:100;not null;uniqueIndex" json:"resource_name"`
	Type      ResourceType `gorm:"type:varchar(20);not null;index" json:"resource_type"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
