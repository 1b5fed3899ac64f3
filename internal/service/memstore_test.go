package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"github.com/Kmaheshkanna2005/resource-management/internal/repository"
	"gorm.io/gorm"
)

// --- In-memory store implementing the repository interfaces ---

type memStore struct {
	txMu sync.Mutex // one writer transaction at a time
	mu   sync.Mutex

	events      map[uint]models.Event
	resources   map[uint]models.Resource
	allocations map[uint]models.Allocation
	nextID      uint

	failAllocCreate   func(a *models.Allocation) error
	failOverlapping   error
	onCountByResource func(resourceID uint)
}

func newMemStore() *memStore {
	return &memStore{
		events:      map[uint]models.Event{},
		resources:   map[uint]models.Resource{},
		allocations: map[uint]models.Allocation{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

type snapshot struct {
	events      map[uint]models.Event
	resources   map[uint]models.Resource
	allocations map[uint]models.Allocation
	nextID      uint
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		events:      make(map[uint]models.Event, len(s.events)),
		resources:   make(map[uint]models.Resource, len(s.resources)),
		allocations: make(map[uint]models.Allocation, len(s.allocations)),
		nextID:      s.nextID,
	}
	for k, v := range s.events {
		snap.events[k] = v
	}
	for k, v := range s.resources {
		snap.resources[k] = v
	}
	for k, v := range s.allocations {
		snap.allocations[k] = v
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events, s.resources, s.allocations, s.nextID = snap.events, snap.resources, snap.allocations, snap.nextID
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(nil); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) allocationsOf(resourceID uint) []models.Allocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Allocation
	for _, a := range s.allocations {
		if a.ResourceID == resourceID {
			out = append(out, a)
		}
	}
	return out
}

func (s *memStore) allocationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.allocations)
}

func (s *memStore) addEvent(title string, start, end time.Time) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := models.Event{ID: s.id(), Title: title, StartTime: start.UTC(), EndTime: end.UTC()}
	s.events[e.ID] = e
	return e
}

func (s *memStore) addResource(name string, t models.ResourceType) models.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := models.Resource{ID: s.id(), Name: name, Type: t}
	s.resources[r.ID] = r
	return r
}

func (s *memStore) addAllocation(eventID, resourceID uint) models.Allocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := models.Allocation{ID: s.id(), EventID: eventID, ResourceID: resourceID}
	s.allocations[a.ID] = a
	return a
}

func (s *memStore) repos() (repository.TxRunner, repository.EventRepository, repository.ResourceRepository, repository.AllocationRepository) {
	return s, &memEventRepo{s}, &memResourceRepo{s}, &memAllocRepo{s}
}

// --- events ---

type memEventRepo struct{ s *memStore }

func (r *memEventRepo) Create(ctx context.Context, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if event.ID == 0 {
		event.ID = r.s.id()
	} else if event.ID > r.s.nextID {
		r.s.nextID = event.ID
	}
	r.s.events[event.ID] = *event
	return nil
}

func (r *memEventRepo) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (r *memEventRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	return r.FindByID(ctx, id)
}

func (r *memEventRepo) FindAll(ctx context.Context) ([]models.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Event, 0, len(r.s.events))
	for _, e := range r.s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *memEventRepo) Update(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events[event.ID] = *event
	return nil
}

func (r *memEventRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.events, id)
	for aid, a := range r.s.allocations {
		if a.EventID == id {
			delete(r.s.allocations, aid)
		}
	}
	return nil
}

func (r *memEventRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.events)), nil
}

func (r *memEventRepo) CountStartingAfter(ctx context.Context, t time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, e := range r.s.events {
		if e.StartTime.After(t) {
			n++
		}
	}
	return n, nil
}

func (r *memEventRepo) CountEndedBy(ctx context.Context, t time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, e := range r.s.events {
		if !e.EndTime.After(t) {
			n++
		}
	}
	return n, nil
}

// --- resources ---

type memResourceRepo struct{ s *memStore }

func (r *memResourceRepo) Create(ctx context.Context, resource *models.Resource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.resources {
		if existing.Name == resource.Name {
			return repository.ErrDuplicateKey
		}
	}
	resource.ID = r.s.id()
	r.s.resources[resource.ID] = *resource
	return nil
}

func (r *memResourceRepo) FindByID(ctx context.Context, id uint) (*models.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res, ok := r.s.resources[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &res, nil
}

func (r *memResourceRepo) FindByName(ctx context.Context, name string) (*models.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, res := range r.s.resources {
		if res.Name == name {
			return &res, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memResourceRepo) FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Resource
	for _, id := range ids {
		if res, ok := r.s.resources[id]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *memResourceRepo) FindAll(ctx context.Context, resourceType *models.ResourceType) ([]models.Resource, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Resource
	for _, res := range r.s.resources {
		if resourceType == nil || res.Type == *resourceType {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memResourceRepo) Update(ctx context.Context, resource *models.Resource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.resources[resource.ID] = *resource
	return nil
}

func (r *memResourceRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.resources[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.resources, id)
	for aid, a := range r.s.allocations {
		if a.ResourceID == id {
			delete(r.s.allocations, aid)
		}
	}
	return nil
}

func (r *memResourceRepo) Count(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.resources)), nil
}

func (r *memResourceRepo) CountByType(ctx context.Context) (map[models.ResourceType]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[models.ResourceType]int64{}
	for _, res := range r.s.resources {
		out[res.Type]++
	}
	return out, nil
}

// --- allocations ---

type memAllocRepo struct{ s *memStore }

func (r *memAllocRepo) Create(ctx context.Context, tx *gorm.DB, a *models.Allocation) error {
	if r.s.failAllocCreate != nil {
		if err := r.s.failAllocCreate(a); err != nil {
			return err
		}
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.allocations {
		if existing.EventID == a.EventID && existing.ResourceID == a.ResourceID {
			return repository.ErrDuplicateKey
		}
	}
	a.ID = r.s.id()
	stored := *a
	stored.Event, stored.Resource = nil, nil
	r.s.allocations[a.ID] = stored
	return nil
}

func (r *memAllocRepo) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Allocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.allocations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r *memAllocRepo) FindByEventAndResource(ctx context.Context, tx *gorm.DB, eventID, resourceID uint) (*models.Allocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.allocations {
		if a.EventID == eventID && a.ResourceID == resourceID {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memAllocRepo) FindOverlapping(ctx context.Context, tx *gorm.DB, resourceID uint, start, end time.Time, excludeEventID *uint) ([]models.Allocation, error) {
	if r.s.failOverlapping != nil {
		return nil, r.s.failOverlapping
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Allocation
	for _, a := range r.s.allocations {
		if a.ResourceID != resourceID {
			continue
		}
		if excludeEventID != nil && a.EventID == *excludeEventID {
			continue
		}
		e := r.s.events[a.EventID]
		if e.StartTime.Before(end) && e.EndTime.After(start) {
			a.Event = &e
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Event.StartTime.Equal(out[j].Event.StartTime) {
			return out[i].Event.StartTime.Before(out[j].Event.StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memAllocRepo) FindAll(ctx context.Context, filter repository.AllocationFilter) ([]models.Allocation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Allocation
	for _, a := range r.s.allocations {
		if filter.EventID != 0 && a.EventID != filter.EventID {
			continue
		}
		if filter.ResourceID != 0 && a.ResourceID != filter.ResourceID {
			continue
		}
		e, res := r.s.events[a.EventID], r.s.resources[a.ResourceID]
		a.Event, a.Resource = &e, &res
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memAllocRepo) ResourceIDsByEvent(ctx context.Context, tx *gorm.DB, eventID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uint
	for _, a := range r.s.allocations {
		if a.EventID == eventID {
			ids = append(ids, a.ResourceID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *memAllocRepo) CountByResource(ctx context.Context, tx *gorm.DB, resourceID uint) (int64, error) {
	if r.s.onCountByResource != nil {
		r.s.onCountByResource(resourceID)
	}
	return int64(len(r.s.allocationsOf(resourceID))), nil
}

func (r *memAllocRepo) Count(ctx context.Context) (int64, error) {
	return int64(r.s.allocationCount()), nil
}

func (r *memAllocRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.allocations[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.allocations, id)
	return nil
}

// --- publisher ---

type published struct {
	key     string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *recordingPublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{routingKey, payload})
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		keys[i] = m.key
	}
	return keys
}

var errDiskFull = errors.New("disk full")
