package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/internal/scheduler/predicate"
)

// NewMemoryScheduleRepository creates a schedule repository kept in process memory.
// Predicates are evaluated with predicate.Eval. SaveRun appends to runs.
func NewMemoryScheduleRepository(runs ScheduleRunRepository) ScheduleRepository {
	if runs == nil {
		runs = NewMemoryScheduleRunRepository()
	}
	return &memoryScheduleRepository{
		schedules: make(map[uint]*entity.Schedule),
		runs:      runs,
		now:       time.Now,
	}
}

type memoryScheduleRepository struct {
	mu        sync.RWMutex
	lastID    uint
	schedules map[uint]*entity.Schedule
	runs      ScheduleRunRepository
	now       func() time.Time
}

func (r *memoryScheduleRepository) Create(_ context.Context, schedule *entity.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if schedule.ID == 0 {
		r.lastID++
		schedule.ID = r.lastID
	} else if schedule.ID > r.lastID {
		r.lastID = schedule.ID
	}
	now := r.now()
	schedule.CreatedAt, schedule.UpdatedAt = now, now
	r.schedules[schedule.ID] = schedule.Clone()
	return nil
}

func (r *memoryScheduleRepository) Update(_ context.Context, schedule *entity.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.schedules[schedule.ID]; !ok {
		return entity.ErrScheduleNotFound
	}
	schedule.UpdatedAt = r.now()
	r.schedules[schedule.ID] = schedule.Clone()
	return nil
}

func (r *memoryScheduleRepository) FindByID(_ context.Context, id uint) (*entity.Schedule, error) {
	return r.first(false, func(s *entity.Schedule) bool { return s.ID == id })
}

func (r *memoryScheduleRepository) FindByIDWithTrashed(_ context.Context, id uint) (*entity.Schedule, error) {
	return r.first(true, func(s *entity.Schedule) bool { return s.ID == id })
}

func (r *memoryScheduleRepository) FindByOwner(_ context.Context, schedulableType string, schedulableID uint) (*entity.Schedule, error) {
	return r.first(false, ownedBy(schedulableType, schedulableID))
}

func (r *memoryScheduleRepository) FindByOwnerWithTrashed(_ context.Context, schedulableType string, schedulableID uint) (*entity.Schedule, error) {
	return r.first(true, ownedBy(schedulableType, schedulableID))
}

func ownedBy(schedulableType string, schedulableID uint) func(*entity.Schedule) bool {
	return func(s *entity.Schedule) bool {
		return s.SchedulableType == schedulableType && s.SchedulableID == schedulableID
	}
}

func (r *memoryScheduleRepository) first(withTrashed bool, match func(*entity.Schedule) bool) (*entity.Schedule, error) {
	for _, s := range r.filter(withTrashed, match) {
		return s, nil
	}
	return nil, entity.ErrScheduleNotFound
}

func (r *memoryScheduleRepository) FindAll(ctx context.Context) ([]*entity.Schedule, error) {
	return r.Query(ctx, predicate.True)
}

func (r *memoryScheduleRepository) Query(_ context.Context, p predicate.Predicate) ([]*entity.Schedule, error) {
	return r.filter(false, func(s *entity.Schedule) bool { return predicate.Eval(p, s) }), nil
}

func (r *memoryScheduleRepository) QueryWithTrashed(_ context.Context, p predicate.Predicate) ([]*entity.Schedule, error) {
	return r.filter(true, func(s *entity.Schedule) bool { return predicate.Eval(p, s) }), nil
}

// filter returns copies of the matching schedules ordered by ID.
func (r *memoryScheduleRepository) filter(withTrashed bool, match func(*entity.Schedule) bool) []*entity.Schedule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Schedule
	for _, s := range r.schedules {
		if s.IsDeleted() && !withTrashed {
			continue
		}
		if match(s) {
			out = append(out, s.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memoryScheduleRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.schedules[id]
	if !ok || s.IsDeleted() {
		return entity.ErrScheduleNotFound
	}
	s.DeletedAt = gorm.DeletedAt{Time: r.now(), Valid: true}
	return nil
}

func (r *memoryScheduleRepository) Restore(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.schedules[id]
	if !ok || !s.IsDeleted() {
		return entity.ErrScheduleNotFound
	}
	s.DeletedAt = gorm.DeletedAt{}
	return nil
}

func (r *memoryScheduleRepository) SaveRun(ctx context.Context, schedule *entity.Schedule, run *entity.ScheduleRun) error {
	r.mu.Lock()
	stored, ok := r.schedules[schedule.ID]
	if !ok {
		r.mu.Unlock()
		return entity.ErrScheduleNotFound
	}
	stored.LastRunAt = copyTime(schedule.LastRunAt)
	stored.NextRunAt = copyTime(schedule.NextRunAt)
	stored.UpdatedAt = r.now()
	r.mu.Unlock()

	return r.runs.Create(ctx, run)
}

// NewMemoryScheduleRunRepository creates a run repository kept in process memory.
func NewMemoryScheduleRunRepository() ScheduleRunRepository {
	return &memoryScheduleRunRepository{}
}

type memoryScheduleRunRepository struct {
	mu     sync.RWMutex
	lastID uint
	runs   []entity.ScheduleRun
}

func (r *memoryScheduleRunRepository) Create(_ context.Context, run *entity.ScheduleRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	run.ID = r.lastID
	run.CreatedAt = time.Now()
	r.runs = append(r.runs, *run)
	return nil
}

func (r *memoryScheduleRunRepository) FindBySchedule(_ context.Context, scheduleID uint, limit int) ([]*entity.ScheduleRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.ScheduleRun
	for i := range r.runs {
		if r.runs[i].ScheduleID == scheduleID {
			run := r.runs[i]
			out = append(out, &run)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RanAt.Equal(out[j].RanAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].RanAt.After(out[j].RanAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
