package recurrence

import (
	"errors"
	"time"

	"github.com/sinclairt/schedulable/internal/entity"
)

// NextRun returns the first occurrence of s strictly after the given instant that also
// falls inside the activity window. It returns nil when no such occurrence remains.
func NextRun(s *entity.Schedule, after time.Time, opts ...Option) (*time.Time, error) {
	calc, err := ForSchedule(s, opts...)
	if err != nil {
		return nil, err
	}

	ref := after
	if s.StartsAt != nil && ref.Before(*s.StartsAt) {
		ref = s.StartsAt.Add(-time.Nanosecond)
	}

	next, err := calc.Next(ref, 0)
	if errors.Is(err, ErrNoOccurrence) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.ExpiresAt != nil && next.After(*s.ExpiresAt) {
		return nil, nil
	}
	return &next, nil
}

// MarkRun returns a copy of s with LastRunAt set to now and NextRunAt recomputed
// to the next occurrence strictly after now.
func MarkRun(s *entity.Schedule, now time.Time, opts ...Option) (*entity.Schedule, error) {
	out := s.Clone()
	ranAt := now
	out.LastRunAt = &ranAt

	next, err := NextRun(out, now, opts...)
	if err != nil {
		return nil, err
	}
	out.NextRunAt = next
	return out, nil
}
