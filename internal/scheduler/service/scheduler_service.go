package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/internal/recurrence"
	"github.com/sinclairt/schedulable/internal/scheduler/predicate"
	"github.com/sinclairt/schedulable/internal/scheduler/publisher"
	"github.com/sinclairt/schedulable/internal/scheduler/repository"
	"github.com/sinclairt/schedulable/pkg/common"
	"github.com/sinclairt/schedulable/pkg/logger"
	"github.com/sinclairt/schedulable/pkg/utils"
)

// SchedulerService defines the interface for the due-schedule poller.
type SchedulerService interface {
	Start(ctx context.Context)
	ProcessDue(ctx context.Context) int
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(scheduleRepo repository.ScheduleRepository, pub publisher.Publisher, loc *time.Location, logger *logger.Logger, pollingInterval time.Duration, opts ...Option) SchedulerService {
	if loc == nil {
		loc = time.UTC
	}
	return &schedulerService{
		scheduleRepo:    scheduleRepo,
		publisher:       pub,
		loc:             loc,
		logger:          logger,
		pollingInterval: pollingInterval,
		now:             newOptions(opts).now,
	}
}

type schedulerService struct {
	scheduleRepo    repository.ScheduleRepository
	publisher       publisher.Publisher
	loc             *time.Location
	logger          *logger.Logger
	pollingInterval time.Duration
	now             func() time.Time
}

// Start begins the periodic polling loop. It returns when ctx is cancelled.
func (s *schedulerService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler service stopping")
			return
		case <-ticker.C:
			s.ProcessDue(ctx)
		}
	}
}

// ProcessDue publishes one event per schedule whose next run has passed and
// advances it. Missed occurrences are coalesced into a single event.
// It returns the number of events published.
func (s *schedulerService) ProcessDue(ctx context.Context) int {
	now := s.now().In(s.loc)
	schedules, err := s.scheduleRepo.Query(ctx, predicate.And{predicate.NextRunDue(now), predicate.Active(now)})
	if err != nil {
		s.logger.Error("Failed to find due schedules", logger.ErrorField(err))
		return 0
	}

	published := 0
	for _, schedule := range schedules {
		if ctx.Err() != nil {
			break
		}
		if s.publishDue(ctx, schedule, now) {
			published++
		}
	}
	return published
}

// publishDue emits one event for the schedule's pending occurrence and advances it.
// Delivery is at least once: when the event is out but the schedule cannot be
// advanced, the same occurrence is published again on the next poll.
func (s *schedulerService) publishDue(ctx context.Context, schedule *entity.Schedule, now time.Time) bool {
	event := &publisher.DueEvent{
		EventID:         utils.NewULID(now),
		Type:            common.ScheduleEventDue,
		ScheduleID:      schedule.ID,
		SchedulableType: schedule.SchedulableType,
		SchedulableID:   schedule.SchedulableID,
		Category:        schedule.Category.String(),
		Expression:      schedule.CompiledExpression(),
		ScheduledFor:    *schedule.NextRunAt,
		PublishedAt:     now,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal due event", logger.ErrorField(err), logger.Field("schedule_id", schedule.ID))
		return false
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish due event", logger.ErrorField(err), logger.Field("schedule_id", schedule.ID))
		return false
	}

	marked, err := recurrence.MarkRun(schedule, now, recurrence.WithLocation(s.loc))
	if err != nil {
		s.notAdvanced(schedule, event, fmt.Errorf("compute next run: %w", err))
		return true
	}

	run := &entity.ScheduleRun{
		ScheduleID: schedule.ID,
		EventID:    event.EventID,
		RanAt:      now,
		NextRunAt:  marked.NextRunAt,
		Payload:    datatypes.JSON(payload),
	}
	if err := s.scheduleRepo.SaveRun(ctx, marked, run); err != nil {
		s.notAdvanced(schedule, event, fmt.Errorf("record schedule run: %w", err))
		return true
	}

	s.logger.Info("Due event published successfully", logger.Field("schedule_id", schedule.ID), logger.Field("event_id", event.EventID))
	return true
}

// notAdvanced logs an occurrence that was published but stays pending.
func (s *schedulerService) notAdvanced(schedule *entity.Schedule, event *publisher.DueEvent, err error) {
	s.logger.Warn("Due event published but schedule not advanced, occurrence will be republished",
		logger.ErrorField(err),
		logger.Field("schedule_id", schedule.ID),
		logger.Field("event_id", event.EventID),
		logger.Field("scheduled_for", event.ScheduledFor),
	)
}
