package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/clock"
	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"github.com/Kmaheshkanna2005/resource-management/internal/repository"
	"github.com/Kmaheshkanna2005/resource-management/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type AllocationService interface {
	CheckConflict(ctx context.Context, resourceID uint, start, end time.Time, excludeEventID *uint) (ConflictResult, error)
	CheckMultiple(ctx context.Context, resourceIDs []uint, start, end time.Time, excludeEventID *uint) (map[uint]ConflictResult, error)
	Allocate(ctx context.Context, eventID, resourceID uint) (*models.Allocation, error)
	AllocateBatch(ctx context.Context, eventID uint, resourceIDs []uint) ([]uint, error)
	Deallocate(ctx context.Context, allocationID uint) error
	ListAllocations(ctx context.Context, filter repository.AllocationFilter) ([]models.Allocation, error)
}

type allocationService struct {
	tx           repository.TxRunner
	eventRepo    repository.EventRepository
	resourceRepo repository.ResourceRepository
	allocRepo    repository.AllocationRepository
	checker      *ConflictChecker
	publisher    Publisher
	clock        clock.Clock
}

func NewAllocationService(
	tx repository.TxRunner,
	eventRepo repository.EventRepository,
	resourceRepo repository.ResourceRepository,
	allocRepo repository.AllocationRepository,
	publisher Publisher,
	clk clock.Clock,
) AllocationService {
	return &allocationService{
		tx:           tx,
		eventRepo:    eventRepo,
		resourceRepo: resourceRepo,
		allocRepo:    allocRepo,
		checker:      NewConflictChecker(allocRepo),
		publisher:    publisher,
		clock:        clk,
	}
}

// CheckConflict is the read-only preview of a single resource. It takes no locks.
func (s *allocationService) CheckConflict(ctx context.Context, resourceID uint, start, end time.Time, excludeEventID *uint) (ConflictResult, error) {
	return s.checker.CheckConflict(ctx, nil, resourceID, start.UTC(), end.UTC(), excludeEventID)
}

// CheckMultiple is the read-only preview across several resources.
func (s *allocationService) CheckMultiple(ctx context.Context, resourceIDs []uint, start, end time.Time, excludeEventID *uint) (map[uint]ConflictResult, error) {
	return s.checker.CheckMultiple(ctx, nil, resourceIDs, start.UTC(), end.UTC(), excludeEventID)
}

func (s *allocationService) Allocate(ctx context.Context, eventID, resourceID uint) (*models.Allocation, error) {
	ctx, span := tracing.Start(ctx, "AllocationService.Allocate",
		attribute.Int64("event_id", int64(eventID)),
		attribute.Int64("resource_id", int64(resourceID)),
	)
	var result *models.Allocation

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		// 1. Lock the event, then the resource: every writer takes locks in this order
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return lookupErr(err, ErrEventNotFound, "load event")
		}
		resources, err := s.resourceRepo.FindByIDsForUpdate(ctx, tx, []uint{resourceID})
		if err != nil {
			return storageErr("lock resource", err)
		}
		if len(resources) == 0 {
			return ErrResourceNotFound
		}

		// 2. Duplicate pair
		_, err = s.allocRepo.FindByEventAndResource(ctx, tx, eventID, resourceID)
		if err == nil {
			return ErrAlreadyAllocated
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return storageErr("find allocation", err)
		}

		// 3. Conflicts against the event's own window
		res, err := s.checker.CheckConflict(ctx, tx, resourceID, event.StartTime, event.EndTime, nil)
		if err != nil {
			return err
		}
		if !res.Available {
			return &ConflictError{Conflicts: map[uint][]ConflictRecord{resourceID: res.Conflicts}}
		}

		// 4. Commit the allocation
		allocation := &models.Allocation{
			EventID:     eventID,
			ResourceID:  resourceID,
			AllocatedAt: s.clock.Now(),
		}
		if err := s.allocRepo.Create(ctx, tx, allocation); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrAlreadyAllocated
			}
			return storageErr("create allocation", err)
		}
		allocation.Event = event
		allocation.Resource = &resources[0]
		result = allocation
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}

	publish(s.publisher, "AllocationService", RoutingAllocationCreated, AllocationMessage{
		AllocationID: result.ID,
		EventID:      result.EventID,
		ResourceID:   result.ResourceID,
		AllocatedAt:  result.AllocatedAt,
	})
	return result, nil
}

// AllocateBatch assigns every resource in resourceIDs to the event or none of
// them. Resources already allocated to the event count as satisfied and are
// left out of the returned list.
func (s *allocationService) AllocateBatch(ctx context.Context, eventID uint, resourceIDs []uint) ([]uint, error) {
	if len(resourceIDs) == 0 {
		return nil, validationErr("resource_ids must not be empty")
	}

	ctx, span := tracing.Start(ctx, "AllocationService.AllocateBatch",
		attribute.Int64("event_id", int64(eventID)),
		attribute.Int("resource_count", len(resourceIDs)),
	)
	var allocated []uint

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		event, err := s.eventRepo.FindByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return lookupErr(err, ErrEventNotFound, "load event")
		}

		unique := uniqueSorted(resourceIDs)
		resources, err := s.resourceRepo.FindByIDsForUpdate(ctx, tx, unique)
		if err != nil {
			return storageErr("lock resources", err)
		}
		if missing := missingIDs(unique, resources); len(missing) > 0 {
			return fmt.Errorf("%w: %v", ErrResourceNotFound, missing)
		}

		// The event never conflicts with itself: a resource already holding
		// this event is satisfied, not double-booked.
		results, err := s.checker.CheckMultiple(ctx, tx, resourceIDs, event.StartTime, event.EndTime, &eventID)
		if err != nil {
			return err
		}
		if conflicts := unavailable(results); len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}

		now := s.clock.Now()
		seen := make(map[uint]bool, len(resourceIDs))
		allocated = make([]uint, 0, len(resourceIDs))
		for _, resourceID := range resourceIDs {
			if seen[resourceID] {
				continue
			}
			seen[resourceID] = true

			_, err := s.allocRepo.FindByEventAndResource(ctx, tx, eventID, resourceID)
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return storageErr("find allocation", err)
			}

			allocation := &models.Allocation{EventID: eventID, ResourceID: resourceID, AllocatedAt: now}
			if err := s.allocRepo.Create(ctx, tx, allocation); err != nil {
				// A failed insert aborts the transaction, so the pair cannot be skipped here.
				if errors.Is(err, repository.ErrDuplicateKey) {
					return ErrAlreadyAllocated
				}
				return storageErr("create allocation", err)
			}
			allocated = append(allocated, resourceID)
		}
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		return nil, err
	}

	if len(allocated) > 0 {
		publish(s.publisher, "AllocationService", RoutingAllocationBatchCreated, BatchAllocationMessage{
			EventID:     eventID,
			ResourceIDs: allocated,
		})
	}
	return allocated, nil
}

// Deallocate frees a single allocation. Removing a booking cannot create a
// conflict, so nothing is re-checked.
func (s *allocationService) Deallocate(ctx context.Context, allocationID uint) error {
	ctx, span := tracing.Start(ctx, "AllocationService.Deallocate",
		attribute.Int64("allocation_id", int64(allocationID)),
	)
	var removed *models.Allocation

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		allocation, err := s.allocRepo.FindByID(ctx, tx, allocationID)
		if err != nil {
			return lookupErr(err, ErrAllocationNotFound, "load allocation")
		}
		if err := s.allocRepo.Delete(ctx, tx, allocationID); err != nil {
			return lookupErr(err, ErrAllocationNotFound, "delete allocation")
		}
		removed = allocation
		return nil
	})
	tracing.End(span, err)
	if err != nil {
		return err
	}

	publish(s.publisher, "AllocationService", RoutingAllocationDeleted, AllocationMessage{
		AllocationID: removed.ID,
		EventID:      removed.EventID,
		ResourceID:   removed.ResourceID,
	})
	return nil
}

func (s *allocationService) ListAllocations(ctx context.Context, filter repository.AllocationFilter) ([]models.Allocation, error) {
	allocations, err := s.allocRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, storageErr("list allocations", err)
	}
	return allocations, nil
}

func uniqueSorted(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func missingIDs(want []uint, found []models.Resource) []uint {
	have := make(map[uint]struct{}, len(found))
	for _, r := range found {
		have[r.ID] = struct{}{}
	}
	var missing []uint
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
