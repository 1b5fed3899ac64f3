package repository

import (
	"context"

	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	FindByID(ctx context.Context, id uint) (*models.Resource, error)
	FindByName(ctx context.Context, name string) (*models.Resource, error)
	FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Resource, error)
	FindAll(ctx context.Context, resourceType *models.ResourceType) ([]models.Resource, error)
	Update(ctx context.Context, resource *models.Resource) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	Count(ctx context.Context) (int64, error)
	CountByType(ctx context.Context) (map[models.ResourceType]int64, error)
}

type resourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	return translate(r.db.WithContext(ctx).Create(resource).Error)
}

func (r *resourceRepository) FindByID(ctx context.Context, id uint) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.WithContext(ctx).First(&resource, id).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

func (r *resourceRepository) FindByName(ctx context.Context, name string) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&resource).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// FindByIDsForUpdate locks the given resource rows in ascending id order so
// concurrent allocators touching overlapping sets cannot deadlock. Missing ids
// are simply absent from the result.
func (r *resourceRepository) FindByIDsForUpdate(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Resource, error) {
	var resources []models.Resource
	if len(ids) == 0 {
		return resources, nil
	}
	err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&resources).Error
	return resources, err
}

func (r *resourceRepository) FindAll(ctx context.Context, resourceType *models.ResourceType) ([]models.Resource, error) {
	var resources []models.Resource
	q := r.db.WithContext(ctx)
	if resourceType != nil {
		q = q.Where("type = ?", *resourceType)
	}
	if err := q.Order("id ASC").Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *resourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	return translate(r.db.WithContext(ctx).
		Model(resource).
		Select("name", "type", "updated_at").
		Updates(resource).Error)
}

func (r *resourceRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	res := conn(r.db, tx).WithContext(ctx).Delete(&models.Resource{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *resourceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Resource{}).Count(&count).Error
	return count, err
}

func (r *resourceRepository) CountByType(ctx context.Context) (map[models.ResourceType]int64, error) {
	var rows []struct {
		Type  models.ResourceType
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Resource{}).
		Select("type, COUNT(*) AS total").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.ResourceType]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Total
	}
	return counts, nil
}
