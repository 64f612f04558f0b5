package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/internal/recurrence"
	"github.com/sinclairt/schedulable/internal/scheduler/builder"
	"github.com/sinclairt/schedulable/internal/scheduler/dto"
	"github.com/sinclairt/schedulable/internal/scheduler/predicate"
	"github.com/sinclairt/schedulable/internal/scheduler/repository"
	"github.com/sinclairt/schedulable/pkg/common"
	"github.com/sinclairt/schedulable/pkg/logger"
	"github.com/sinclairt/schedulable/pkg/utils"
)

const (
	directionNext     = "next"
	directionPrevious = "previous"
	directionBetween  = "between"
)

// ScheduleService defines the interface for managing schedules.
type ScheduleService interface {
	CreateSchedule(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
	GetScheduleByID(ctx context.Context, id uint) (*dto.ScheduleResponse, error)
	GetScheduleByOwner(ctx context.Context, schedulableType string, schedulableID uint) (*dto.ScheduleResponse, error)
	ListSchedules(ctx context.Context, filter *dto.ScheduleFilter) ([]*dto.ScheduleResponse, error)
	UpdateSchedule(ctx context.Context, id uint, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, id uint) error
	RestoreSchedule(ctx context.Context, id uint) (*dto.ScheduleResponse, error)
	MarkAsRun(ctx context.Context, id uint) (*dto.ScheduleResponse, error)
	Occurrences(ctx context.Context, id uint, req *dto.OccurrencesRequest) (*dto.OccurrencesResponse, error)
	IsDue(ctx context.Context, id uint, at time.Time) (*dto.DueResponse, error)
	RunDatesBetween(ctx context.Context, id uint, from, to time.Time, limit int) (*dto.OccurrencesResponse, error)
	ListRuns(ctx context.Context, id uint, limit int) ([]*dto.ScheduleRunResponse, error)
}

// NewScheduleService creates a new schedule service. Calendar fields are evaluated in loc.
func NewScheduleService(scheduleRepo repository.ScheduleRepository, runRepo repository.ScheduleRunRepository, loc *time.Location, logger *logger.Logger, opts ...Option) ScheduleService {
	if loc == nil {
		loc = time.UTC
	}
	return &scheduleService{
		scheduleRepo: scheduleRepo,
		runRepo:      runRepo,
		loc:          loc,
		logger:       logger,
		now:          newOptions(opts).now,
	}
}

type scheduleService struct {
	scheduleRepo repository.ScheduleRepository
	runRepo      repository.ScheduleRunRepository
	loc          *time.Location
	logger       *logger.Logger
	now          func() time.Time
}

func (s *scheduleService) clock() time.Time {
	return s.now().In(s.loc)
}

func (s *scheduleService) calculatorOptions() []recurrence.Option {
	return []recurrence.Option{recurrence.WithLocation(s.loc), recurrence.WithClock(s.clock)}
}

func (s *scheduleService) newBuilder(ctx context.Context, owner entity.Schedulable) (*builder.Builder, error) {
	return builder.New(ctx, s.scheduleRepo, owner, builder.WithClock(s.clock), builder.WithLocation(s.loc))
}

// CreateSchedule attaches a new schedule to the requested owner.
func (s *scheduleService) CreateSchedule(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	if req.SchedulableType == "" || req.SchedulableID == 0 {
		return nil, fmt.Errorf("%w: schedulable_type and schedulable_id are required", ErrInvalidRequest)
	}
	owner := entity.Owner{Type: req.SchedulableType, ID: req.SchedulableID}

	b, err := s.newBuilder(ctx, owner)
	if err != nil {
		s.logger.Error("Failed to load schedule builder", logger.ErrorField(err), logger.Field("schedulable_type", owner.Type), logger.Field("schedulable_id", owner.ID))
		return nil, err
	}
	if b.HasSchedule() {
		return nil, fmt.Errorf("%w: %s %d", ErrScheduleExists, owner.Type, owner.ID)
	}
	if err := applyFields(b, req.ScheduleFields); err != nil {
		return nil, err
	}

	schedule, err := b.Save(ctx)
	if err != nil {
		s.logger.Error("Failed to create schedule", logger.ErrorField(err), logger.Field("schedulable_type", owner.Type), logger.Field("schedulable_id", owner.ID))
		return nil, err
	}

	s.logger.Info("Schedule created successfully", logger.Field("schedule_id", schedule.ID), logger.Field("expression", schedule.CompiledExpression()))
	return dto.NewScheduleResponse(schedule), nil
}

// applyFields stages a request onto b: cron first, then the category, then single fields.
func applyFields(b *builder.Builder, f dto.ScheduleFields) error {
	if f.Cron != "" {
		if err := b.LoadFromCron(f.Cron); err != nil {
			return err
		}
	}
	if f.Category != "" {
		if err := b.SetCategory(entity.Category(f.Category)); err != nil {
			return err
		}
	}
	for field, v := range f.Values() {
		if err := b.Set(field, v); err != nil {
			return err
		}
	}
	if f.IsLastDayOfMonth != nil {
		b.SetLastDayOfMonth(*f.IsLastDayOfMonth)
	}
	if f.FrequencyN != nil {
		b.SetFrequencyN(*f.FrequencyN)
	}
	if f.StartsAt != nil {
		b.SetStartsAt(f.StartsAt)
	}
	if f.ExpiresAt != nil {
		b.SetExpiresAt(f.ExpiresAt)
	}
	return nil
}

// GetScheduleByID retrieves a schedule by its ID.
func (s *scheduleService) GetScheduleByID(ctx context.Context, id uint) (*dto.ScheduleResponse, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to find schedule", logger.ErrorField(err), logger.Field("schedule_id", id))
		return nil, err
	}
	return dto.NewScheduleResponse(schedule), nil
}

// GetScheduleByOwner retrieves the schedule attached to an owner.
func (s *scheduleService) GetScheduleByOwner(ctx context.Context, schedulableType string, schedulableID uint) (*dto.ScheduleResponse, error) {
	schedule, err := s.scheduleRepo.FindByOwner(ctx, schedulableType, schedulableID)
	if err != nil {
		s.logger.Error("Failed to find schedule by owner", logger.ErrorField(err), logger.Field("schedulable_type", schedulableType), logger.Field("schedulable_id", schedulableID))
		return nil, err
	}
	return dto.NewScheduleResponse(schedule), nil
}

// ListSchedules returns the schedules matching filter. Date filters are exact:
// the query narrows candidates and each one is confirmed against its occurrences.
func (s *scheduleService) ListSchedules(ctx context.Context, filter *dto.ScheduleFilter) ([]*dto.ScheduleResponse, error) {
	if filter == nil {
		filter = &dto.ScheduleFilter{}
	}

	var dueOn, from, to time.Time
	p := predicate.And{}
	if filter.Category != nil {
		p = append(p, predicate.CategoryIs(*filter.Category))
	}
	switch {
	case filter.DueOn != nil:
		dueOn = filter.DueOn.In(s.loc)
		p = append(p, predicate.DueOn(dueOn, filter.Active))
	case filter.From != nil:
		from = filter.From.In(s.loc)
		if filter.To != nil {
			to = filter.To.In(s.loc)
		}
		p = append(p, predicate.Between(from, to, filter.Active))
	case filter.Active:
		p = append(p, predicate.Active(s.clock()))
	}

	query := s.scheduleRepo.Query
	if filter.IncludeTrashed {
		query = s.scheduleRepo.QueryWithTrashed
	}
	schedules, err := query(ctx, p)
	if err != nil {
		s.logger.Error("Failed to list schedules", logger.ErrorField(err))
		return nil, err
	}

	switch {
	case filter.DueOn != nil:
		schedules = FilterDueOn(schedules, dueOn, filter.Active, s.calculatorOptions()...)
	case filter.From != nil:
		schedules = FilterBetween(schedules, from, to, filter.Active, s.calculatorOptions()...)
	}

	responses := make([]*dto.ScheduleResponse, 0, len(schedules))
	for _, schedule := range schedules {
		responses = append(responses, dto.NewScheduleResponse(schedule))
	}
	return responses, nil
}

// UpdateSchedule applies a request to an existing schedule and saves it.
func (s *scheduleService) UpdateSchedule(ctx context.Context, id uint, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to find schedule for update", logger.ErrorField(err), logger.Field("schedule_id", id))
		return nil, err
	}

	b, err := s.newBuilder(ctx, nil)
	if err != nil {
		return nil, err
	}
	b.LoadFromSchedule(schedule)
	if req.Reset {
		b.Reset()
	}
	if err := applyFields(b, req.ScheduleFields); err != nil {
		return nil, err
	}

	updated, err := b.Save(ctx)
	if err != nil {
		s.logger.Error("Failed to update schedule", logger.ErrorField(err), logger.Field("schedule_id", id))
		return nil, err
	}

	s.logger.Info("Schedule updated successfully", logger.Field("schedule_id", id), logger.Field("expression", updated.CompiledExpression()))
	return dto.NewScheduleResponse(updated), nil
}

// DeleteSchedule soft-deletes a schedule.
func (s *scheduleService) DeleteSchedule(ctx context.Context, id uint) error {
	if err := s.scheduleRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete schedule", logger.ErrorField(err), logger.Field("schedule_id", id))
		return err
	}
	s.logger.Info("Schedule deleted successfully", logger.Field("schedule_id", id))
	return nil
}

// RestoreSchedule undoes a soft delete and recomputes the next run from now.
func (s *scheduleService) RestoreSchedule(ctx context.Context, id uint) (*dto.ScheduleResponse, error) {
	if err := s.scheduleRepo.Restore(ctx, id); err != nil {
		s.logger.Error("Failed to restore schedule", logger.ErrorField(err), logger.Field("schedule_id", id))
		return nil, err
	}

	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := recurrence.NextRun(schedule, s.clock(), s.calculatorOptions()...)
	if err != nil {
		return nil, err
	}
	schedule.NextRunAt = next
	if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
		s.logger.Error("Failed to refresh restored schedule", logger.ErrorField(err), logger.Field("schedule_id", id))
		return nil, err
	}

	s.logger.Info("Schedule restored successfully", logger.Field("schedule_id", id))
	return dto.NewScheduleResponse(schedule), nil
}

// MarkAsRun records a manual run: last_run_at becomes now and next_run_at the
// first occurrence after it.
func (s *scheduleService) MarkAsRun(ctx context.Context, id uint) (*dto.ScheduleResponse, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to find schedule to mark as run", logger.ErrorField(err), logger.Field("schedule_id", id))
		return nil, err
	}

	now := s.clock()
	marked, err := recurrence.MarkRun(schedule, now, s.calculatorOptions()...)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]interface{}{"trigger": "manual", "ran_at": now})
	if err != nil {
		return nil, err
	}
	run := &entity.ScheduleRun{
		ScheduleID: marked.ID,
		EventID:    utils.NewULID(now),
		RanAt:      now,
		NextRunAt:  marked.NextRunAt,
		Payload:    datatypes.JSON(payload),
	}
	if err := s.scheduleRepo.SaveRun(ctx, marked, run); err != nil {
		s.logger.Error("Failed to mark schedule as run", logger.ErrorField(err), logger.Field("schedule_id", id))
		return nil, err
	}

	s.logger.Info("Schedule marked as run", logger.Field("schedule_id", id), logger.Field("event_id", run.EventID))
	return dto.NewScheduleResponse(marked), nil
}

// Occurrences lists upcoming or past occurrences, or the ones inside a range.
func (s *scheduleService) Occurrences(ctx context.Context, id uint, req *dto.OccurrencesRequest) (*dto.OccurrencesResponse, error) {
	count := req.Count
	if count == 0 {
		count = common.DefaultOccurrenceCount
	}
	if count < 0 || count > common.MaxOccurrenceCount {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidRequest, common.MaxOccurrenceCount)
	}

	from, err := parseInstant("from", req.From)
	if err != nil {
		return nil, err
	}

	switch req.Direction {
	case "", directionNext, directionPrevious:
	case directionBetween:
		to, err := parseInstant("to", req.To)
		if err != nil {
			return nil, err
		}
		if from.IsZero() || to.IsZero() {
			return nil, fmt.Errorf("%w: from and to are required", ErrInvalidRequest)
		}
		return s.RunDatesBetween(ctx, id, from, to, count)
	default:
		return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidRequest, req.Direction)
	}

	schedule, calc, err := s.calculator(ctx, id)
	if err != nil {
		return nil, err
	}

	step := calc.Next
	if req.Direction == directionPrevious {
		step = calc.Previous
	}
	ref := from
	if ref.IsZero() {
		ref = s.clock()
	}

	occurrences := make([]time.Time, 0, count)
	for len(occurrences) < count {
		t, err := step(ref, 0)
		if errors.Is(err, recurrence.ErrNoOccurrence) {
			break
		}
		if err != nil {
			return nil, err
		}
		occurrences = append(occurrences, t)
		ref = t
	}

	return &dto.OccurrencesResponse{
		ScheduleID:  schedule.ID,
		Expression:  schedule.CompiledExpression(),
		Occurrences: occurrences,
	}, nil
}

// IsDue reports whether the schedule fires at the given instant.
func (s *scheduleService) IsDue(ctx context.Context, id uint, at time.Time) (*dto.DueResponse, error) {
	schedule, calc, err := s.calculator(ctx, id)
	if err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = s.clock()
	}
	return &dto.DueResponse{ScheduleID: schedule.ID, At: at, Due: calc.IsDue(at)}, nil
}

// RunDatesBetween lists at most limit occurrences inside [from, to].
func (s *scheduleService) RunDatesBetween(ctx context.Context, id uint, from, to time.Time, limit int) (*dto.OccurrencesResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to must not be before from", ErrInvalidRequest)
	}
	if limit <= 0 || limit > common.MaxOccurrenceCount {
		limit = common.MaxOccurrenceCount
	}

	schedule, calc, err := s.calculator(ctx, id)
	if err != nil {
		return nil, err
	}
	occurrences, err := calc.Between(from.In(s.loc), to.In(s.loc), limit)
	if err != nil {
		return nil, err
	}
	if occurrences == nil {
		occurrences = []time.Time{}
	}
	return &dto.OccurrencesResponse{
		ScheduleID:  schedule.ID,
		Expression:  schedule.CompiledExpression(),
		Occurrences: occurrences,
	}, nil
}

// ListRuns returns the most recent runs of a schedule, newest first.
func (s *scheduleService) ListRuns(ctx context.Context, id uint, limit int) ([]*dto.ScheduleRunResponse, error) {
	if _, err := s.scheduleRepo.FindByIDWithTrashed(ctx, id); err != nil {
		return nil, err
	}
	runs, err := s.runRepo.FindBySchedule(ctx, id, limit)
	if err != nil {
		s.logger.Error("Failed to list schedule runs", logger.ErrorField(err), logger.Field("schedule_id", id))
		return nil, err
	}

	responses := make([]*dto.ScheduleRunResponse, 0, len(runs))
	for _, run := range runs {
		responses = append(responses, dto.NewScheduleRunResponse(run))
	}
	return responses, nil
}

func (s *scheduleService) calculator(ctx context.Context, id uint) (*entity.Schedule, *recurrence.Calculator, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to find schedule", logger.ErrorField(err), logger.Field("schedule_id", id))
		return nil, nil, err
	}
	calc, err := recurrence.ForSchedule(schedule, s.calculatorOptions()...)
	if err != nil {
		s.logger.Error("Failed to compile schedule", logger.ErrorField(err), logger.Field("schedule_id", id))
		return nil, nil, err
	}
	return schedule, calc, nil
}

func parseInstant(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s %q", ErrInvalidRequest, name, value)
	}
	return t, nil
}
