package service

import (
	"context"
	"sync"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/repository"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// previewConcurrency bounds the fan-out of read-only multi-resource checks.
const previewConcurrency = 8

// ConflictRecord describes an existing booking that overlaps a candidate window.
type ConflictRecord struct {
	EventID    uint      `json:"event_id"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	ResourceID uint      `json:"resource_id"`
}

type ConflictResult struct {
	Available bool             `json:"is_available"`
	Conflicts []ConflictRecord `json:"conflicts"`
}

// ConflictChecker answers whether resources are free for a time window. It
// holds no state of its own and never writes.
type ConflictChecker struct {
	allocRepo repository.AllocationRepository
}

func NewConflictChecker(allocRepo repository.AllocationRepository) *ConflictChecker {
	return &ConflictChecker{allocRepo: allocRepo}
}

// CheckConflict lists the events allocated to resourceID that overlap
// [start, end). excludeEventID, when set, is left out of the result. Passing
// a transaction makes the check see (and respect the locks of) that
// transaction.
func (c *ConflictChecker) CheckConflict(ctx context.Context, tx *gorm.DB, resourceID uint, start, end time.Time, excludeEventID *uint) (ConflictResult, error) {
	if !start.Before(end) {
		return ConflictResult{Available: false}, ErrInvalidRange
	}

	allocations, err := c.allocRepo.FindOverlapping(ctx, tx, resourceID, start, end, excludeEventID)
	if err != nil {
		return ConflictResult{}, storageErr("find overlapping allocations", err)
	}

	conflicts := make([]ConflictRecord, 0, len(allocations))
	for _, a := range allocations {
		if a.Event == nil {
			continue
		}
		if excludeEventID != nil && a.EventID == *excludeEventID {
			continue
		}
		if !Overlaps(a.Event.StartTime, a.Event.EndTime, start, end) {
			continue
		}
		conflicts = append(conflicts, ConflictRecord{
			EventID:    a.EventID,
			Title:      a.Event.Title,
			StartTime:  a.Event.StartTime,
			EndTime:    a.Event.EndTime,
			ResourceID: resourceID,
		})
	}

	return ConflictResult{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// CheckMultiple runs CheckConflict for every id and reports all of them; it
// does not stop at the first conflict. Inside a transaction the checks run
// one after another on the transaction's connection, otherwise they fan out.
func (c *ConflictChecker) CheckMultiple(ctx context.Context, tx *gorm.DB, resourceIDs []uint, start, end time.Time, excludeEventID *uint) (map[uint]ConflictResult, error) {
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	results := make(map[uint]ConflictResult, len(resourceIDs))
	if tx != nil {
		for _, id := range resourceIDs {
			res, err := c.CheckConflict(ctx, tx, id, start, end, excludeEventID)
			if err != nil {
				return nil, err
			}
			results[id] = res
		}
		return results, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(previewConcurrency)
	for _, id := range resourceIDs {
		g.Go(func() error {
			res, err := c.CheckConflict(gctx, nil, id, start, end, excludeEventID)
			if err != nil {
				return err
			}
			mu.Lock()
			results[id] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// unavailable keeps only the resources that reported conflicts.
func unavailable(results map[uint]ConflictResult) map[uint][]ConflictRecord {
	conflicts := make(map[uint][]ConflictRecord)
	for id, res := range results {
		if !res.Available {
			conflicts[id] = res.Conflicts
		}
	}
	return conflicts
}
