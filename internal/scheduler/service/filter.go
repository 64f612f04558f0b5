package service

import (
	"time"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/internal/recurrence"
	"github.com/sinclairt/schedulable/internal/scheduler/predicate"
)

// FilterDueOn keeps the schedules that fire at t, and are active at t when active is set.
// t must be expressed in the location calendar fields are evaluated in.
func FilterDueOn(schedules []*entity.Schedule, t time.Time, active bool, opts ...recurrence.Option) []*entity.Schedule {
	var out []*entity.Schedule
	for _, s := range predicate.Filter(predicate.DueOn(t, active), schedules) {
		calc, err := recurrence.ForSchedule(s, opts...)
		if err != nil {
			continue
		}
		if calc.IsDue(t) {
			out = append(out, s)
		}
	}
	return out
}

// FilterBetween keeps the schedules with at least one occurrence in [from, to].
// With active set the interval is first narrowed to each schedule's activity window.
// A zero to leaves the interval open.
func FilterBetween(schedules []*entity.Schedule, from, to time.Time, active bool, opts ...recurrence.Option) []*entity.Schedule {
	var out []*entity.Schedule
	for _, s := range predicate.Filter(predicate.Between(from, to, active), schedules) {
		start, end := from, to
		if active {
			start, end = narrow(s, from, to)
			if !end.IsZero() && end.Before(start) {
				continue
			}
		}

		calc, err := recurrence.ForSchedule(s, opts...)
		if err != nil {
			continue
		}
		if firesWithin(calc, start, end) {
			out = append(out, s)
		}
	}
	return out
}

func narrow(s *entity.Schedule, from, to time.Time) (time.Time, time.Time) {
	if s.StartsAt != nil && s.StartsAt.After(from) {
		from = s.StartsAt.In(from.Location())
	}
	if s.ExpiresAt != nil && (to.IsZero() || s.ExpiresAt.Before(to)) {
		to = s.ExpiresAt.In(from.Location())
	}
	return from, to
}

func firesWithin(calc *recurrence.Calculator, from, to time.Time) bool {
	next, err := calc.Next(from.Add(-time.Nanosecond), 0)
	if err != nil {
		return false
	}
	return to.IsZero() || !next.After(to)
}
