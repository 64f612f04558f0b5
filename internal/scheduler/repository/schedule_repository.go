package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/internal/scheduler/predicate"
)

// ScheduleRepository defines the interface for schedule data operations.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *entity.Schedule) error
	Update(ctx context.Context, schedule *entity.Schedule) error
	FindByID(ctx context.Context, id uint) (*entity.Schedule, error)
	FindByIDWithTrashed(ctx context.Context, id uint) (*entity.Schedule, error)
	FindByOwner(ctx context.Context, schedulableType string, schedulableID uint) (*entity.Schedule, error)
	FindByOwnerWithTrashed(ctx context.Context, schedulableType string, schedulableID uint) (*entity.Schedule, error)
	FindAll(ctx context.Context) ([]*entity.Schedule, error)
	Query(ctx context.Context, p predicate.Predicate) ([]*entity.Schedule, error)
	QueryWithTrashed(ctx context.Context, p predicate.Predicate) ([]*entity.Schedule, error)
	Delete(ctx context.Context, id uint) error
	Restore(ctx context.Context, id uint) error
	SaveRun(ctx context.Context, schedule *entity.Schedule, run *entity.ScheduleRun) error
}

// NewScheduleRepository creates a new GORM-based schedule repository.
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

type scheduleRepository struct {
	db *gorm.DB
}

// Create creates a new schedule.
func (r *scheduleRepository) Create(ctx context.Context, schedule *entity.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

// Update saves every column of a schedule.
func (r *scheduleRepository) Update(ctx context.Context, schedule *entity.Schedule) error {
	return r.db.WithContext(ctx).Unscoped().Save(schedule).Error
}

// FindByID retrieves a live schedule by its ID.
func (r *scheduleRepository) FindByID(ctx context.Context, id uint) (*entity.Schedule, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// FindByIDWithTrashed retrieves a schedule by its ID, soft-deleted or not.
func (r *scheduleRepository) FindByIDWithTrashed(ctx context.Context, id uint) (*entity.Schedule, error) {
	return r.first(r.db.WithContext(ctx).Unscoped(), "id = ?", id)
}

// FindByOwner retrieves the live schedule attached to an owner.
func (r *scheduleRepository) FindByOwner(ctx context.Context, schedulableType string, schedulableID uint) (*entity.Schedule, error) {
	return r.first(r.db.WithContext(ctx), "schedulable_type = ? AND schedulable_id = ?", schedulableType, schedulableID)
}

// FindByOwnerWithTrashed retrieves an owner's schedule including a soft-deleted one.
func (r *scheduleRepository) FindByOwnerWithTrashed(ctx context.Context, schedulableType string, schedulableID uint) (*entity.Schedule, error) {
	return r.first(r.db.WithContext(ctx).Unscoped(), "schedulable_type = ? AND schedulable_id = ?", schedulableType, schedulableID)
}

func (r *scheduleRepository) first(db *gorm.DB, query string, args ...interface{}) (*entity.Schedule, error) {
	var schedule entity.Schedule
	if err := db.Where(query, args...).Order("id").First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrScheduleNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// FindAll retrieves all live schedules.
func (r *scheduleRepository) FindAll(ctx context.Context) ([]*entity.Schedule, error) {
	return r.Query(ctx, predicate.True)
}

// Query retrieves the live schedules matching p.
func (r *scheduleRepository) Query(ctx context.Context, p predicate.Predicate) ([]*entity.Schedule, error) {
	return r.find(r.db.WithContext(ctx), p)
}

// QueryWithTrashed retrieves the schedules matching p, soft-deleted ones included.
func (r *scheduleRepository) QueryWithTrashed(ctx context.Context, p predicate.Predicate) ([]*entity.Schedule, error) {
	return r.find(r.db.WithContext(ctx).Unscoped(), p)
}

func (r *scheduleRepository) find(db *gorm.DB, p predicate.Predicate) ([]*entity.Schedule, error) {
	query, args := predicate.ToSQL(p)
	var schedules []*entity.Schedule
	if err := db.Where(query, args...).Order("id").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// Delete soft-deletes a schedule.
func (r *scheduleRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Schedule{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrScheduleNotFound
	}
	return nil
}

// Restore clears the soft-delete marker of a schedule.
func (r *scheduleRepository) Restore(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Unscoped().
		Model(&entity.Schedule{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrScheduleNotFound
	}
	return nil
}

// SaveRun stores the run bookkeeping of a schedule and its run record within a transaction.
func (r *scheduleRepository) SaveRun(ctx context.Context, schedule *entity.Schedule, run *entity.ScheduleRun) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(schedule).Updates(map[string]interface{}{
			"last_run_at": schedule.LastRunAt,
			"next_run_at": schedule.NextRunAt,
		}).Error
		if err != nil {
			return err
		}
		return tx.Create(run).Error
	})
}
