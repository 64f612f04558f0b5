// Package builder stages edits to a schedule, validates them against the
// category's requirements, and commits the result through a Store.
package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/internal/recurrence"
)

// Store is the persistence the builder needs.
type Store interface {
	FindByOwner(ctx context.Context, schedulableType string, schedulableID uint) (*entity.Schedule, error)
	Create(ctx context.Context, schedule *entity.Schedule) error
	Update(ctx context.Context, schedule *entity.Schedule) error
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the instant used to compute next_run_at on save.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithLocation evaluates calendar fields in loc.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		b.loc = loc
	}
}

// Builder is a mutable staging copy of one schedule. It is not safe for concurrent use.
type Builder struct {
	store  Store
	owner  entity.Schedulable
	record *entity.Schedule
	draft  entity.Schedule
	now    func() time.Time
	loc    *time.Location
	opts   []Option
}

// New creates a builder for owner and loads its schedule when one exists.
// A nil owner yields an unbound builder.
func New(ctx context.Context, store Store, owner entity.Schedulable, opts ...Option) (*Builder, error) {
	b := &Builder{
		store: store,
		owner: owner,
		now:   time.Now,
		opts:  opts,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.Reset()

	if owner != nil {
		if err := b.Load(ctx); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Load stages the owner's persisted schedule. Without one the draft is reset.
func (b *Builder) Load(ctx context.Context) error {
	if b.owner == nil {
		return ErrNoOwner
	}
	s, err := b.store.FindByOwner(ctx, b.owner.SchedulableType(), b.owner.SchedulableID())
	if errors.Is(err, entity.ErrScheduleNotFound) {
		b.record = nil
		b.Reset()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load schedule of %s %d: %w", b.owner.SchedulableType(), b.owner.SchedulableID(), err)
	}
	b.LoadFromSchedule(s)
	return nil
}

// LoadFromSchedule binds the builder to s and stages a copy of its fields.
func (b *Builder) LoadFromSchedule(s *entity.Schedule) *Builder {
	b.record = s
	b.draft = *s.Clone()
	if !b.draft.Category.Valid() {
		b.draft.Category = entity.CategoryMinutely
	}
	return b
}

// LoadFromCron stages the five positional fields of expr and clears the
// last-day marker, which cron cannot express. Only the named aliases also
// change the category. The draft is untouched on error.
func (b *Builder) LoadFromCron(expr string) error {
	imported, err := parseCron(expr)
	if err != nil {
		return err
	}
	b.draft.IsLastDayOfMonth = false
	for f, v := range imported.values {
		b.draft.SetValue(f, v)
	}
	if imported.alias {
		b.draft.Category = imported.category
	}
	return nil
}

// Reset clears every calendar field, the category, frequency and activity
// window. The bound owner and record are kept.
func (b *Builder) Reset() *Builder {
	b.draft = entity.Schedule{Category: entity.CategoryMinutely}
	return b
}

// Refresh returns a fresh builder for the same owner and store.
func (b *Builder) Refresh(ctx context.Context) (*Builder, error) {
	return New(ctx, b.store, b.owner, b.opts...)
}

// SetOwner attaches the builder to owner. It does not reload.
func (b *Builder) SetOwner(owner entity.Schedulable) *Builder {
	b.owner = owner
	return b
}

// Owner returns the attached owner, if any.
func (b *Builder) Owner() entity.Schedulable {
	return b.owner
}

// Schedule returns the bound persisted schedule, or nil.
func (b *Builder) Schedule() *entity.Schedule {
	return b.record
}

// HasSchedule reports whether the builder is bound to a persisted schedule.
func (b *Builder) HasSchedule() bool {
	return b.record != nil
}

// Draft returns a copy of the staged schedule as it would be saved.
func (b *Builder) Draft() *entity.Schedule {
	return b.stripped()
}

// SetCategory makes c the only active category.
func (b *Builder) SetCategory(c entity.Category) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c)
	}
	b.draft.Category = c
	return nil
}

// Category returns the active category.
func (b *Builder) Category() entity.Category {
	return b.draft.Category
}

// Is reports whether c is the active category.
func (b *Builder) Is(c entity.Category) bool {
	return b.draft.Category == c
}

func (b *Builder) category(c entity.Category) *Builder {
	b.draft.Category = c
	return b
}

// Minutely selects the minutely category.
func (b *Builder) Minutely() *Builder { return b.category(entity.CategoryMinutely) }

// Hourly selects the hourly category, which requires a minute.
func (b *Builder) Hourly() *Builder { return b.category(entity.CategoryHourly) }

// Daily selects the daily category, which requires hour and minute.
func (b *Builder) Daily() *Builder { return b.category(entity.CategoryDaily) }

// Weekly selects the weekly category, which also requires a day of week.
func (b *Builder) Weekly() *Builder { return b.category(entity.CategoryWeekly) }

// Monthly selects the monthly category, which also requires a day of month or the last-day marker.
func (b *Builder) Monthly() *Builder { return b.category(entity.CategoryMonthly) }

// Annually selects the annual category, which also requires a month.
func (b *Builder) Annually() *Builder { return b.category(entity.CategoryAnnually) }

// Quarterly selects the quarterly category.
func (b *Builder) Quarterly() *Builder { return b.category(entity.CategoryQuarterly) }

// Adhoc selects the one-off category, which pins year, month, day, hour and minute.
func (b *Builder) Adhoc() *Builder { return b.category(entity.CategoryAdhoc) }

// ParseField resolves a snake_case field name such as "day_of_week".
func ParseField(name string) (entity.Field, error) {
	f, ok := entity.LookupField(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	return f, nil
}

// Get returns the staged value of f, nil when absent.
func (b *Builder) Get(f entity.Field) (*int, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProperty, f)
	}
	return b.draft.Value(f), nil
}

// Set stages v for f. A nil v clears the field.
func (b *Builder) Set(f entity.Field, v *int) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, f)
	}
	if v != nil && !f.InRange(*v) {
		min, max := f.Bounds()
		return fmt.Errorf("%w: %s value %d outside %d-%d", recurrence.ErrInvalidExpression, f, *v, min, max)
	}
	b.draft.SetValue(f, v)
	return nil
}

// Minute returns the staged minute, nil when absent.
func (b *Builder) Minute() *int { return b.draft.Value(entity.FieldMinute) }

// Hour returns the staged hour, nil when absent.
func (b *Builder) Hour() *int { return b.draft.Value(entity.FieldHour) }

// DayOfWeek returns the staged day of week (0 is Sunday), nil when absent.
func (b *Builder) DayOfWeek() *int { return b.draft.Value(entity.FieldDayOfWeek) }

// DayOfMonth returns the staged day of month, nil when absent.
func (b *Builder) DayOfMonth() *int { return b.draft.Value(entity.FieldDayOfMonth) }

// MonthOfYear returns the staged month, nil when absent.
func (b *Builder) MonthOfYear() *int { return b.draft.Value(entity.FieldMonthOfYear) }

// Year returns the staged year, nil when absent.
func (b *Builder) Year() *int { return b.draft.Value(entity.FieldYear) }

// SetMinute stages the minute (0-59).
func (b *Builder) SetMinute(v int) *Builder { return b.set(entity.FieldMinute, v) }

// SetHour stages the hour (0-23).
func (b *Builder) SetHour(v int) *Builder { return b.set(entity.FieldHour, v) }

// SetDayOfWeek stages the day of week (0-6, Sunday first).
func (b *Builder) SetDayOfWeek(v int) *Builder { return b.set(entity.FieldDayOfWeek, v) }

// SetDayOfMonth stages the day of month (1-31).
func (b *Builder) SetDayOfMonth(v int) *Builder { return b.set(entity.FieldDayOfMonth, v) }

// SetMonthOfYear stages the month (1-12).
func (b *Builder) SetMonthOfYear(v int) *Builder { return b.set(entity.FieldMonthOfYear, v) }

// SetYear stages the year.
func (b *Builder) SetYear(v int) *Builder { return b.set(entity.FieldYear, v) }

// set stages v without a range check; Validate reports bad values.
func (b *Builder) set(f entity.Field, v int) *Builder {
	b.draft.SetValue(f, &v)
	return b
}

// LastDayOfMonth reports whether the last-day marker is staged.
func (b *Builder) LastDayOfMonth() bool {
	return b.draft.IsLastDayOfMonth
}

// SetLastDayOfMonth stages the last-day marker.
func (b *Builder) SetLastDayOfMonth(v bool) *Builder {
	b.draft.IsLastDayOfMonth = v
	return b
}

// FrequencyN returns the staged step multiplier.
func (b *Builder) FrequencyN() int {
	return b.draft.FrequencyN
}

// SetFrequencyN stages the step multiplier. Negative values become zero.
func (b *Builder) SetFrequencyN(n int) *Builder {
	b.draft.FrequencyN = max(n, 0)
	return b
}

// StartsAt returns the staged window start.
func (b *Builder) StartsAt() *time.Time {
	return b.draft.StartsAt
}

// SetStartsAt stages the window start; nil leaves it open.
func (b *Builder) SetStartsAt(t *time.Time) *Builder {
	b.draft.StartsAt = copyTime(t)
	return b
}

// ExpiresAt returns the staged window end.
func (b *Builder) ExpiresAt() *time.Time {
	return b.draft.ExpiresAt
}

// SetExpiresAt stages the window end; nil leaves it open.
func (b *Builder) SetExpiresAt(t *time.Time) *Builder {
	b.draft.ExpiresAt = copyTime(t)
	return b
}

// MissingFields lists the unmet requirements of the active category, in field order.
func (b *Builder) MissingFields() []string {
	var missing []string
	for _, f := range b.draft.Category.RequiredFields() {
		if b.draft.Value(f) != nil {
			continue
		}
		if f == entity.FieldDayOfMonth && b.draft.IsLastDayOfMonth {
			continue
		}
		missing = append(missing, f.String())
	}
	return missing
}

// Validate checks the staged schedule without saving it.
func (b *Builder) Validate() error {
	if !b.draft.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, b.draft.Category)
	}
	if missing := b.MissingFields(); len(missing) > 0 {
		return &MissingRequiredFieldsError{Category: b.draft.Category, Fields: missing}
	}
	if s, e := b.draft.StartsAt, b.draft.ExpiresAt; s != nil && e != nil && s.After(*e) {
		return ErrInvalidActivityWindow
	}
	if _, err := recurrence.Compile(b.stripped()); err != nil {
		return err
	}
	return nil
}

// stripped copies the draft keeping only the fields its category requires.
func (b *Builder) stripped() *entity.Schedule {
	out := b.draft.Clone()
	for _, f := range entity.Fields {
		if !out.Category.Requires(f) {
			out.SetValue(f, nil)
		}
	}
	if !out.Category.RelevantLastDayOfMonth() {
		out.IsLastDayOfMonth = false
	}
	return out
}

// Save validates the draft, drops fields the category does not use,
// recomputes next_run_at and creates or updates the schedule.
func (b *Builder) Save(ctx context.Context) (*entity.Schedule, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	out := b.stripped()
	if b.record != nil {
		out.ID = b.record.ID
		out.CreatedAt = b.record.CreatedAt
		out.LastRunAt = copyTime(b.record.LastRunAt)
		out.DeletedAt = b.record.DeletedAt
		out.SchedulableType = b.record.SchedulableType
		out.SchedulableID = b.record.SchedulableID
	}
	if b.owner != nil {
		out.SchedulableType = b.owner.SchedulableType()
		out.SchedulableID = b.owner.SchedulableID()
	}
	if out.SchedulableType == "" {
		return nil, ErrNoOwner
	}

	var opts []recurrence.Option
	if b.loc != nil {
		opts = append(opts, recurrence.WithLocation(b.loc))
	}
	next, err := recurrence.NextRun(out, b.now(), opts...)
	if err != nil {
		return nil, err
	}
	out.NextRunAt = next

	if b.record != nil {
		err = b.store.Update(ctx, out)
	} else {
		err = b.store.Create(ctx, out)
	}
	if err != nil {
		return nil, err
	}

	b.record = out
	b.draft = *out.Clone()
	return out.Clone(), nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
