package repository

import (
	"context"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	FindByID(ctx context.Context, id uint) (*models.Event, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error)
	FindAll(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, tx *gorm.DB, event *models.Event) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountStartingAfter(ctx context.Context, t time.Time) (int64, error)
	CountEndedBy(ctx context.Context, t time.Time) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Create inserts the event. Events synced from a calendar keep their upstream
// id; the id sequence is then moved past it so local inserts cannot collide.
func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == 0 {
		return r.db.WithContext(ctx).Create(event).Error
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(event).Error; err != nil {
			return err
		}
		return tx.Exec(`SELECT setval(pg_get_serial_sequence('events', 'id'), (SELECT MAX(id) FROM events))`).Error
	})
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindByIDForUpdate acquires a row-level lock on the event within the given transaction.
func (r *eventRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Event, error) {
	var event models.Event
	if err := conn(r.db, tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindAll(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).Order("start_time ASC, id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, tx *gorm.DB, event *models.Event) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(event).
		Select("title", "description", "start_time", "end_time", "updated_at").
		Updates(event).Error
}

func (r *eventRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Event{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Count(&count).Error
	return count, err
}

func (r *eventRepository) CountStartingAfter(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Where("start_time > ?", t).Count(&count).Error
	return count, err
}

func (r *eventRepository) CountEndedBy(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Event{}).Where("end_time <= ?", t).Count(&count).Error
	return count, err
}
