package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/clock"
	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"github.com/Kmaheshkanna2005/resource-management/internal/repository"
)

type BookingInfo struct {
	EventID       uint      `json:"event_id"`
	Title         string    `json:"title"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	DurationHours float64   `json:"duration_hours"`
}

type ResourceUtilization struct {
	ResourceID            uint                `json:"resource_id"`
	ResourceName          string              `json:"resource_name"`
	ResourceType          models.ResourceType `json:"resource_type"`
	TotalHoursUtilized    float64             `json:"total_hours_utilized"`
	TotalBookings         int                 `json:"total_bookings"`
	UpcomingBookingsCount int                 `json:"upcoming_bookings_count"`
	UpcomingBookings      []BookingInfo       `json:"upcoming_bookings"`
	PastBookingsCount     int                 `json:"past_bookings_count"`
}

type UtilizationReport struct {
	StartDate          time.Time             `json:"start_date"`
	EndDate            time.Time             `json:"end_date"`
	ResourceTypeFilter string                `json:"resource_type_filter,omitempty"`
	TotalResources     int                   `json:"total_resources"`
	Data               []ResourceUtilization `json:"data"`
}

type ConflictReportEntry struct {
	EventID           uint             `json:"event_id"`
	EventTitle        string           `json:"event_title"`
	ResourceID        uint             `json:"resource_id"`
	ResourceName      string           `json:"resource_name"`
	StartTime         time.Time        `json:"start_time"`
	EndTime           time.Time        `json:"end_time"`
	ConflictingEvents []ConflictRecord `json:"conflicting_events"`
}

type Summary struct {
	TotalEvents      int64                         `json:"total_events"`
	UpcomingEvents   int64                         `json:"upcoming_events"`
	PastEvents       int64                         `json:"past_events"`
	TotalResources   int64                         `json:"total_resources"`
	TotalAllocations int64                         `json:"total_allocations"`
	ResourcesByType  map[models.ResourceType]int64 `json:"resources_by_type"`
}

// ReportService builds read-only views over already validated data.
type ReportService interface {
	Utilization(ctx context.Context, from, to time.Time, resourceType string) (*UtilizationReport, error)
	ConflictsReport(ctx context.Context) ([]ConflictReportEntry, error)
	Summary(ctx context.Context) (*Summary, error)
}

type reportService struct {
	eventRepo    repository.EventRepository
	resourceRepo repository.ResourceRepository
	allocRepo    repository.AllocationRepository
	checker      *ConflictChecker
	clock        clock.Clock
}

func NewReportService(
	eventRepo repository.EventRepository,
	resourceRepo repository.ResourceRepository,
	allocRepo repository.AllocationRepository,
	clk clock.Clock,
) ReportService {
	return &reportService{
		eventRepo:    eventRepo,
		resourceRepo: resourceRepo,
		allocRepo:    allocRepo,
		checker:      NewConflictChecker(allocRepo),
		clock:        clk,
	}
}

// Utilization sums, per resource, the hours booked inside [from, to). Event
// time outside the window is clipped. Most utilised resources come first.
func (s *reportService) Utilization(ctx context.Context, from, to time.Time, resourceType string) (*UtilizationReport, error) {
	from, to = from.UTC(), to.UTC()
	if !from.Before(to) {
		return nil, ErrInvalidRange
	}

	var filter *models.ResourceType
	if resourceType != "" {
		t, ok := models.ParseResourceType(resourceType)
		if !ok {
			return nil, ErrInvalidResourceType
		}
		filter = &t
	}

	resources, err := s.resourceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, storageErr("list resources", err)
	}

	now := s.clock.Now()
	data := make([]ResourceUtilization, 0, len(resources))
	for _, r := range resources {
		allocations, err := s.allocRepo.FindOverlapping(ctx, nil, r.ID, from, to, nil)
		if err != nil {
			return nil, storageErr(fmt.Sprintf("load bookings of resource %d", r.ID), err)
		}

		u := ResourceUtilization{
			ResourceID:       r.ID,
			ResourceName:     r.Name,
			ResourceType:     r.Type,
			UpcomingBookings: []BookingInfo{},
		}
		var hours float64
		for _, a := range allocations {
			if a.Event == nil {
				continue
			}
			e := a.Event
			start, end := maxTime(e.StartTime, from), minTime(e.EndTime, to)
			hours += end.Sub(start).Hours()
			u.TotalBookings++

			if e.StartTime.After(now) {
				u.UpcomingBookings = append(u.UpcomingBookings, BookingInfo{
					EventID:       e.ID,
					Title:         e.Title,
					StartTime:     e.StartTime,
					EndTime:       e.EndTime,
					DurationHours: round2(e.Duration().Hours()),
				})
			} else {
				u.PastBookingsCount++
			}
		}
		u.TotalHoursUtilized = round2(hours)
		u.UpcomingBookingsCount = len(u.UpcomingBookings)
		data = append(data, u)
	}

	sort.SliceStable(data, func(i, j int) bool {
		return data[i].TotalHoursUtilized > data[j].TotalHoursUtilized
	})

	return &UtilizationReport{
		StartDate:          from,
		EndDate:            to,
		ResourceTypeFilter: resourceType,
		TotalResources:     len(data),
		Data:               data,
	}, nil
}

// ConflictsReport re-checks every allocation against the other bookings of
// its resource. Pairs are de-duplicated within a single pass only, so two
// events that conflict with each other are each reported once.
func (s *reportService) ConflictsReport(ctx context.Context) ([]ConflictReportEntry, error) {
	allocations, err := s.allocRepo.FindAll(ctx, repository.AllocationFilter{})
	if err != nil {
		return nil, storageErr("list allocations", err)
	}

	type pair struct{ eventID, resourceID uint }
	checked := make(map[pair]struct{}, len(allocations))
	entries := []ConflictReportEntry{}

	for _, a := range allocations {
		if a.Event == nil {
			continue
		}
		key := pair{a.EventID, a.ResourceID}
		if _, ok := checked[key]; ok {
			continue
		}
		checked[key] = struct{}{}

		eventID := a.EventID
		res, err := s.checker.CheckConflict(ctx, nil, a.ResourceID, a.Event.StartTime, a.Event.EndTime, &eventID)
		if err != nil {
			return nil, err
		}
		if res.Available {
			continue
		}

		entry := ConflictReportEntry{
			EventID:           a.EventID,
			EventTitle:        a.Event.Title,
			ResourceID:        a.ResourceID,
			StartTime:         a.Event.StartTime,
			EndTime:           a.Event.EndTime,
			ConflictingEvents: res.Conflicts,
		}
		if a.Resource != nil {
			entry.ResourceName = a.Resource.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *reportService) Summary(ctx context.Context) (*Summary, error) {
	now := s.clock.Now()
	var sum Summary
	var err error

	if sum.TotalEvents, err = s.eventRepo.Count(ctx); err != nil {
		return nil, storageErr("count events", err)
	}
	if sum.UpcomingEvents, err = s.eventRepo.CountStartingAfter(ctx, now); err != nil {
		return nil, storageErr("count upcoming events", err)
	}
	if sum.PastEvents, err = s.eventRepo.CountEndedBy(ctx, now); err != nil {
		return nil, storageErr("count past events", err)
	}
	if sum.TotalResources, err = s.resourceRepo.Count(ctx); err != nil {
		return nil, storageErr("count resources", err)
	}
	if sum.TotalAllocations, err = s.allocRepo.Count(ctx); err != nil {
		return nil, storageErr("count allocations", err)
	}
	if sum.ResourcesByType, err = s.resourceRepo.CountByType(ctx); err != nil {
		return nil, storageErr("count resources by type", err)
	}
	return &sum, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
