package repository

import (
	"context"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"gorm.io/gorm"
)

// AllocationFilter narrows ListAllocations; zero fields match everything.
type AllocationFilter struct {
	EventID    uint
	ResourceID uint
}

type AllocationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, allocation *models.Allocation) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Allocation, error)
	FindByEventAndResource(ctx context.Context, tx *gorm.DB, eventID, resourceID uint) (*models.Allocation, error)
	FindOverlapping(ctx context.Context, tx *gorm.DB, resourceID uint, start, end time.Time, excludeEventID *uint) ([]models.Allocation, error)
	FindAll(ctx context.Context, filter AllocationFilter) ([]models.Allocation, error)
	ResourceIDsByEvent(ctx context.Context, tx *gorm.DB, eventID uint) ([]uint, error)
	CountByResource(ctx context.Context, tx *gorm.DB, resourceID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

type allocationRepository struct {
	db *gorm.DB
}

func NewAllocationRepository(db *gorm.DB) AllocationRepository {
	return &allocationRepository{db: db}
}

func (r *allocationRepository) Create(ctx context.Context, tx *gorm.DB, allocation *models.Allocation) error {
	return translate(conn(r.db, tx).WithContext(ctx).Create(allocation).Error)
}

func (r *allocationRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Allocation, error) {
	var allocation models.Allocation
	if err := conn(r.db, tx).WithContext(ctx).First(&allocation, id).Error; err != nil {
		return nil, err
	}
	return &allocation, nil
}

func (r *allocationRepository) FindByEventAndResource(ctx context.Context, tx *gorm.DB, eventID, resourceID uint) (*models.Allocation, error) {
	var allocation models.Allocation
	err := conn(r.db, tx).WithContext(ctx).
		Where("event_id = ? AND resource_id = ?", eventID, resourceID).
		First(&allocation).Error
	if err != nil {
		return nil, err
	}
	return &allocation, nil
}

// FindOverlapping returns the allocations of resourceID whose event overlaps
// [start, end), joined to that event. Events that merely touch the window at
// an endpoint are not returned.
func (r *allocationRepository) FindOverlapping(ctx context.Context, tx *gorm.DB, resourceID uint, start, end time.Time, excludeEventID *uint) ([]models.Allocation, error) {
	var allocations []models.Allocation
	q := conn(r.db, tx).WithContext(ctx).
		Joins("Event").
		Where("allocations.resource_id = ?", resourceID).
		Where(`"Event"."start_time" < ? AND "Event"."end_time" > ?`, end, start)
	if excludeEventID != nil {
		q = q.Where("allocations.event_id <> ?", *excludeEventID)
	}
	err := q.Order(`"Event"."start_time" ASC, allocations.id ASC`).Find(&allocations).Error
	return allocations, err
}

func (r *allocationRepository) FindAll(ctx context.Context, filter AllocationFilter) ([]models.Allocation, error) {
	var allocations []models.Allocation
	q := r.db.WithContext(ctx).Preload("Event").Preload("Resource")
	if filter.EventID != 0 {
		q = q.Where("event_id = ?", filter.EventID)
	}
	if filter.ResourceID != 0 {
		q = q.Where("resource_id = ?", filter.ResourceID)
	}
	if err := q.Order("id ASC").Find(&allocations).Error; err != nil {
		return nil, err
	}
	return allocations, nil
}

func (r *allocationRepository) ResourceIDsByEvent(ctx context.Context, tx *gorm.DB, eventID uint) ([]uint, error) {
	var ids []uint
	err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Allocation{}).
		Where("event_id = ?", eventID).
		Order("resource_id ASC").
		Pluck("resource_id", &ids).Error
	return ids, err
}

func (r *allocationRepository) CountByResource(ctx context.Context, tx *gorm.DB, resourceID uint) (int64, error) {
	var count int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&models.Allocation{}).
		Where("resource_id = ?", resourceID).
		Count(&count).Error
	return count, err
}

func (r *allocationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Allocation{}).Count(&count).Error
	return count, err
}

func (r *allocationRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := conn(r.db, tx).WithContext(ctx).Delete(&models.Allocation{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
