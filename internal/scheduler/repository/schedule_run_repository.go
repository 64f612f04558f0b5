package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/sinclairt/schedulable/internal/entity"
)

// ScheduleRunRepository defines the interface for schedule run history.
type ScheduleRunRepository interface {
	Create(ctx context.Context, run *entity.ScheduleRun) error
	FindBySchedule(ctx context.Context, scheduleID uint, limit int) ([]*entity.ScheduleRun, error)
}

// NewScheduleRunRepository creates a new GORM-based schedule run repository.
func NewScheduleRunRepository(db *gorm.DB) ScheduleRunRepository {
	return &scheduleRunRepository{db: db}
}

type scheduleRunRepository struct {
	db *gorm.DB
}

// Create creates a new run record.
func (r *scheduleRunRepository) Create(ctx context.Context, run *entity.ScheduleRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// FindBySchedule retrieves the most recent runs of a schedule, newest first.
// A non-positive limit returns every run.
func (r *scheduleRunRepository) FindBySchedule(ctx context.Context, scheduleID uint, limit int) ([]*entity.ScheduleRun, error) {
	var runs []*entity.ScheduleRun
	db := r.db.WithContext(ctx).Where("schedule_id = ?", scheduleID).Order("ran_at desc, id desc")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
