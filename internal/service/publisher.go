package service

import (
	"log"
	"time"
)

// Publisher delivers domain notifications after a change has been committed.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

const (
	RoutingAllocationCreated      = "allocation.created"
	RoutingAllocationBatchCreated = "allocation.batch_created"
	RoutingAllocationDeleted      = "allocation.deleted"
	RoutingEventUpdated           = "event.updated"
	RoutingEventDeleted           = "event.deleted"
)

type AllocationMessage struct {
	AllocationID uint      `json:"allocation_id"`
	EventID      uint      `json:"event_id"`
	ResourceID   uint      `json:"resource_id"`
	AllocatedAt  time.Time `json:"allocated_at,omitempty"`
}

type BatchAllocationMessage struct {
	EventID     uint   `json:"event_id"`
	ResourceIDs []uint `json:"resource_ids"`
}

type EventMessage struct {
	EventID   uint      `json:"event_id"`
	Title     string    `json:"title,omitempty"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
}

// publish never fails the caller: the change it announces is already committed.
func publish(p Publisher, component, routingKey string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(routingKey, payload); err != nil {
		log.Printf("[%s] failed to publish %s: %v", component, routingKey, err)
	}
}
