package entity

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Wildcard is the marker used for an absent field in a compiled expression.
const Wildcard = "*"

// LastDayMarker stands for "last day of the month" in the day-of-month slot.
const LastDayMarker = "L"

// Schedule is one recurrence definition attached to a schedulable entity.
type Schedule struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	SchedulableType  string         `gorm:"size:191;not null;index:idx_schedules_schedulable,priority:1" json:"schedulable_type"`
	SchedulableID    uint           `gorm:"not null;index:idx_schedules_schedulable,priority:2" json:"schedulable_id"`
	Category         Category       `gorm:"size:20;not null;default:minutely;index" json:"category"`
	Minute           *int           `json:"minute"`
	Hour             *int           `json:"hour"`
	DayOfWeek        *int           `json:"day_of_week"`
	DayOfMonth       *int           `json:"day_of_month"`
	MonthOfYear      *int           `json:"month_of_year"`
	Year             *int           `json:"year"`
	IsLastDayOfMonth bool           `gorm:"not null;default:false" json:"is_last_day_of_month"`
	FrequencyN       int            `gorm:"not null;default:0" json:"frequency_n"`
	StartsAt         *time.Time     `json:"starts_at,omitempty"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty"`
	LastRunAt        *time.Time     `json:"last_run_at,omitempty"`
	NextRunAt        *time.Time     `gorm:"index" json:"next_run_at,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Schedule model.
func (Schedule) TableName() string {
	return "schedules"
}

// Owner returns the polymorphic owner of the schedule.
func (s *Schedule) Owner() Owner {
	return Owner{Type: s.SchedulableType, ID: s.SchedulableID}
}

// Value returns the value of a calendar field, nil when absent.
func (s *Schedule) Value(f Field) *int {
	switch f {
	case FieldMinute:
		return s.Minute
	case FieldHour:
		return s.Hour
	case FieldDayOfWeek:
		return s.DayOfWeek
	case FieldDayOfMonth:
		return s.DayOfMonth
	case FieldMonthOfYear:
		return s.MonthOfYear
	case FieldYear:
		return s.Year
	}
	return nil
}

// SetValue assigns a calendar field; nil clears it.
func (s *Schedule) SetValue(f Field, v *int) {
	v = copyInt(v)
	switch f {
	case FieldMinute:
		s.Minute = v
	case FieldHour:
		s.Hour = v
	case FieldDayOfWeek:
		s.DayOfWeek = v
	case FieldDayOfMonth:
		s.DayOfMonth = v
	case FieldMonthOfYear:
		s.MonthOfYear = v
	case FieldYear:
		s.Year = v
	}
}

// Clone returns a deep copy, so callers can mutate without touching a shared snapshot.
func (s *Schedule) Clone() *Schedule {
	c := *s
	for _, f := range Fields {
		c.SetValue(f, s.Value(f))
	}
	c.StartsAt = copyTime(s.StartsAt)
	c.ExpiresAt = copyTime(s.ExpiresAt)
	c.LastRunAt = copyTime(s.LastRunAt)
	c.NextRunAt = copyTime(s.NextRunAt)
	return &c
}

// IsDeleted reports whether the schedule has been soft-deleted.
func (s *Schedule) IsDeleted() bool {
	return s.DeletedAt.Valid
}

// ActiveAt reports whether t falls inside the activity window. Absent bounds are open.
func (s *Schedule) ActiveAt(t time.Time) bool {
	if s.StartsAt != nil && t.Before(*s.StartsAt) {
		return false
	}
	if s.ExpiresAt != nil && t.After(*s.ExpiresAt) {
		return false
	}
	return true
}

// ExpiredAt reports whether the window closed at or before t.
func (s *Schedule) ExpiredAt(t time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(t)
}

// CompiledExpression renders "minute hour day_of_month month_of_year day_of_week year",
// with a wildcard for every absent field.
func (s *Schedule) CompiledExpression() string {
	dom := render(s.DayOfMonth)
	if s.IsLastDayOfMonth {
		if s.DayOfMonth == nil {
			dom = LastDayMarker
		} else {
			dom += "," + LastDayMarker
		}
	}

	return strings.Join([]string{
		render(s.Minute),
		render(s.Hour),
		dom,
		render(s.MonthOfYear),
		render(s.DayOfWeek),
		render(s.Year),
	}, " ")
}

func render(v *int) string {
	if v == nil {
		return Wildcard
	}
	return strconv.Itoa(*v)
}

// Int is a convenience for building optional field values.
func Int(v int) *int {
	return &v
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
