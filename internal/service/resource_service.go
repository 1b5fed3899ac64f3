package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"github.com/Kmaheshkanna2005/resource-management/internal/repository"
	"gorm.io/gorm"
)

// ResourceUpdate carries the fields to change; nil fields are left as they are.
type ResourceUpdate struct {
	Name *string
	Type *string
}

type ResourceService interface {
	CreateResource(ctx context.Context, resource *models.Resource) error
	GetResource(ctx context.Context, id uint) (*models.Resource, error)
	ListResources(ctx context.Context, resourceType string) ([]models.Resource, error)
	UpdateResource(ctx context.Context, id uint, update ResourceUpdate) (*models.Resource, error)
	DeleteResource(ctx context.Context, id uint, force bool) error
	ResourceTypes() []models.ResourceType
}

type resourceService struct {
	tx           repository.TxRunner
	resourceRepo repository.ResourceRepository
	allocRepo    repository.AllocationRepository
}

func NewResourceService(tx repository.TxRunner, resourceRepo repository.ResourceRepository, allocRepo repository.AllocationRepository) ResourceService {
	return &resourceService{tx: tx, resourceRepo: resourceRepo, allocRepo: allocRepo}
}

func (s *resourceService) CreateResource(ctx context.Context, resource *models.Resource) error {
	resource.Name = strings.TrimSpace(resource.Name)
	if resource.Name == "" || resource.Type == "" {
		return validationErr("resource_name and resource_type are required")
	}
	t, ok := models.ParseResourceType(string(resource.Type))
	if !ok {
		return ErrInvalidResourceType
	}
	resource.Type = t

	if err := s.ensureNameFree(ctx, resource.Name, 0); err != nil {
		return err
	}
	if err := s.resourceRepo.Create(ctx, resource); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return ErrDuplicateResourceName
		}
		return storageErr("create resource", err)
	}
	return nil
}

func (s *resourceService) GetResource(ctx context.Context, id uint) (*models.Resource, error) {
	resource, err := s.resourceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrResourceNotFound, "load resource")
	}
	return resource, nil
}

// ListResources returns every resource, or only those of resourceType when it is set.
func (s *resourceService) ListResources(ctx context.Context, resourceType string) ([]models.Resource, error) {
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
	return resources, nil
}

func (s *resourceService) UpdateResource(ctx context.Context, id uint, update ResourceUpdate) (*models.Resource, error) {
	resource, err := s.resourceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrResourceNotFound, "load resource")
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, validationErr("resource_name must not be empty")
		}
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		resource.Name = name
	}
	if update.Type != nil {
		t, ok := models.ParseResourceType(*update.Type)
		if !ok {
			return nil, ErrInvalidResourceType
		}
		resource.Type = t
	}

	if err := s.resourceRepo.Update(ctx, resource); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateResourceName
		}
		return nil, storageErr("update resource", err)
	}
	return resource, nil
}

// DeleteResource refuses to remove a resource that still has allocations
// unless force is set, in which case the allocations are removed with it.
// The resource row stays locked from the count to the delete, so an
// allocation cannot slip in between.
func (s *resourceService) DeleteResource(ctx context.Context, id uint, force bool) error {
	return s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		locked, err := s.resourceRepo.FindByIDsForUpdate(ctx, tx, []uint{id})
		if err != nil {
			return storageErr("lock resource", err)
		}
		if len(locked) == 0 {
			return ErrResourceNotFound
		}

		if !force {
			count, err := s.allocRepo.CountByResource(ctx, tx, id)
			if err != nil {
				return storageErr("count allocations", err)
			}
			if count > 0 {
				return ErrResourceInUse
			}
		}

		if err := s.resourceRepo.Delete(ctx, tx, id); err != nil {
			return lookupErr(err, ErrResourceNotFound, "delete resource")
		}
		return nil
	})
}

func (s *resourceService) ResourceTypes() []models.ResourceType {
	return append([]models.ResourceType(nil), models.ResourceTypes...)
}

// ensureNameFree fails when another resource (other than selfID) already uses name.
func (s *resourceService) ensureNameFree(ctx context.Context, name string, selfID uint) error {
	existing, err := s.resourceRepo.FindByName(ctx, name)
	if err == nil {
		if existing.ID != selfID {
			return ErrDuplicateResourceName
		}
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return storageErr("find resource by name", err)
}
