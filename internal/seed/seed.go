// Package seed loads demo resources, events and allocations from YAML and
// creates them through the services, so seeded bookings pass the same
// conflict checks as API requests.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"github.com/Kmaheshkanna2005/resource-management/internal/service"
	"gopkg.in/yaml.v3"
)

type File struct {
	Resources   []Resource   `yaml:"resources"`
	Events      []Event      `yaml:"events"`
	Allocations []Allocation `yaml:"allocations"`
}

type Resource struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Event struct {
	Title       string    `yaml:"title"`
	Description string    `yaml:"description"`
	StartTime   time.Time `yaml:"start_time"`
	EndTime     time.Time `yaml:"end_time"`
}

// Allocation books resources (by name) for an event (by title).
type Allocation struct {
	Event     string   `yaml:"event"`
	Resources []string `yaml:"resources"`
}

type ResourceService interface {
	CreateResource(ctx context.Context, resource *models.Resource) error
	ListResources(ctx context.Context, resourceType string) ([]models.Resource, error)
}

type EventService interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	ListEvents(ctx context.Context) ([]models.Event, error)
}

type AllocationService interface {
	AllocateBatch(ctx context.Context, eventID uint, resourceIDs []uint) ([]uint, error)
}

type Services struct {
	Resources   ResourceService
	Events      EventService
	Allocations AllocationService
}

// Result counts what Apply created or skipped.
type Result struct {
	Resources   int
	Events      int
	Allocations int
	Skipped     int
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	return &f, nil
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return Parse(data)
}

// Apply creates the seed's content. It can be run against a database that was
// already seeded: existing resources and events (matched by name, or by title
// and window) are reused, and allocations that conflict are logged and skipped.
func Apply(ctx context.Context, f *File, svc Services) (Result, error) {
	var res Result

	resourceIDs, err := applyResources(ctx, f.Resources, svc.Resources, &res)
	if err != nil {
		return res, err
	}
	eventIDs, err := applyEvents(ctx, f.Events, svc.Events, &res)
	if err != nil {
		return res, err
	}

	for _, a := range f.Allocations {
		eventID, ok := eventIDs[a.Event]
		if !ok {
			return res, fmt.Errorf("seed allocation: unknown event %q", a.Event)
		}
		ids := make([]uint, 0, len(a.Resources))
		for _, name := range a.Resources {
			id, ok := resourceIDs[name]
			if !ok {
				return res, fmt.Errorf("seed allocation: unknown resource %q", name)
			}
			ids = append(ids, id)
		}

		allocated, err := svc.Allocations.AllocateBatch(ctx, eventID, ids)
		if errors.Is(err, service.ErrConflictDetected) {
			log.Printf("[Seed] skipping allocation for %q: %v", a.Event, err)
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed allocation for %q: %w", a.Event, err)
		}
		res.Allocations += len(allocated)
	}

	log.Printf("[Seed] created %d resources, %d events, %d allocations (%d skipped)",
		res.Resources, res.Events, res.Allocations, res.Skipped)
	return res, nil
}

func applyResources(ctx context.Context, seeds []Resource, svc ResourceService, res *Result) (map[string]uint, error) {
	existing, err := svc.ListResources(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("seed resources: %w", err)
	}
	ids := make(map[string]uint, len(existing)+len(seeds))
	for _, r := range existing {
		ids[r.Name] = r.ID
	}

	for _, s := range seeds {
		if _, ok := ids[s.Name]; ok {
			continue
		}
		r := &models.Resource{Name: s.Name, Type: models.ResourceType(s.Type)}
		if err := svc.CreateResource(ctx, r); err != nil {
			return nil, fmt.Errorf("seed resource %q: %w", s.Name, err)
		}
		ids[r.Name] = r.ID
		res.Resources++
	}
	return ids, nil
}

func applyEvents(ctx context.Context, seeds []Event, svc EventService, res *Result) (map[string]uint, error) {
	existing, err := svc.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed events: %w", err)
	}

	ids := make(map[string]uint, len(seeds))
	for _, s := range seeds {
		if id, ok := findEvent(existing, s); ok {
			ids[s.Title] = id
			continue
		}
		e := &models.Event{
			Title:       s.Title,
			Description: s.Description,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
		}
		if err := svc.CreateEvent(ctx, e); err != nil {
			return nil, fmt.Errorf("seed event %q: %w", s.Title, err)
		}
		ids[s.Title] = e.ID
		res.Events++
	}
	return ids, nil
}

func findEvent(events []models.Event, s Event) (uint, bool) {
	for _, e := range events {
		if e.Title == s.Title && e.StartTime.Equal(s.StartTime) && e.EndTime.Equal(s.EndTime) {
			return e.ID, true
		}
	}
	return 0, false
}
