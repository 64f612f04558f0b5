package dto

import (
	"fmt"
	"time"

	"github.com/sinclairt/schedulable/internal/entity"
)

// ScheduleFields carries the editable parts of a schedule. A nil field is left unchanged.
// Cron is applied first, then Category, then the individual fields.
type ScheduleFields struct {
	Cron             string     `json:"cron,omitempty" example:"@daily"`
	Category         string     `json:"category,omitempty" example:"daily"`
	Minute           *int       `json:"minute,omitempty"`
	Hour             *int       `json:"hour,omitempty"`
	DayOfWeek        *int       `json:"day_of_week,omitempty"`
	DayOfMonth       *int       `json:"day_of_month,omitempty"`
	MonthOfYear      *int       `json:"month_of_year,omitempty"`
	Year             *int       `json:"year,omitempty"`
	IsLastDayOfMonth *bool      `json:"is_last_day_of_month,omitempty"`
	FrequencyN       *int       `json:"frequency_n,omitempty"`
	StartsAt         *time.Time `json:"starts_at,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

// Values returns the calendar fields present in the request.
func (f ScheduleFields) Values() map[entity.Field]*int {
	out := make(map[entity.Field]*int)
	for field, v := range map[entity.Field]*int{
		entity.FieldMinute:      f.Minute,
		entity.FieldHour:        f.Hour,
		entity.FieldDayOfWeek:   f.DayOfWeek,
		entity.FieldDayOfMonth:  f.DayOfMonth,
		entity.FieldMonthOfYear: f.MonthOfYear,
		entity.FieldYear:        f.Year,
	} {
		if v != nil {
			out[field] = v
		}
	}
	return out
}

// CreateScheduleRequest defines the DTO for attaching a new schedule to an owner.
type CreateScheduleRequest struct {
	SchedulableType string `json:"schedulable_type" example:"report"`
	SchedulableID   uint   `json:"schedulable_id" example:"42"`
	ScheduleFields
}

// UpdateScheduleRequest defines the DTO for editing an existing schedule.
// Reset clears the staged schedule before the fields are applied.
type UpdateScheduleRequest struct {
	Reset bool `json:"reset"`
	ScheduleFields
}

// ScheduleResponse is the DTO for API responses containing schedule details.
type ScheduleResponse struct {
	ID               uint       `json:"id"`
	SchedulableType  string     `json:"schedulable_type"`
	SchedulableID    uint       `json:"schedulable_id"`
	Category         string     `json:"category"`
	Expression       string     `json:"expression" example:"0 9 * * * *"`
	Minute           *int       `json:"minute"`
	Hour             *int       `json:"hour"`
	DayOfWeek        *int       `json:"day_of_week"`
	DayOfMonth       *int       `json:"day_of_month"`
	MonthOfYear      *int       `json:"month_of_year"`
	Year             *int       `json:"year"`
	IsLastDayOfMonth bool       `json:"is_last_day_of_month"`
	FrequencyN       int        `json:"frequency_n"`
	StartsAt         *time.Time `json:"starts_at"`
	ExpiresAt        *time.Time `json:"expires_at"`
	LastRunAt        *time.Time `json:"last_run_at"`
	NextRunAt        *time.Time `json:"next_run_at"`
	Deleted          bool       `json:"deleted"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewScheduleResponse maps a schedule onto its API representation.
func NewScheduleResponse(s *entity.Schedule) *ScheduleResponse {
	return &ScheduleResponse{
		ID:               s.ID,
		SchedulableType:  s.SchedulableType,
		SchedulableID:    s.SchedulableID,
		Category:         s.Category.String(),
		Expression:       s.CompiledExpression(),
		Minute:           s.Minute,
		Hour:             s.Hour,
		DayOfWeek:        s.DayOfWeek,
		DayOfMonth:       s.DayOfMonth,
		MonthOfYear:      s.MonthOfYear,
		Year:             s.Year,
		IsLastDayOfMonth: s.IsLastDayOfMonth,
		FrequencyN:       s.FrequencyN,
		StartsAt:         s.StartsAt,
		ExpiresAt:        s.ExpiresAt,
		LastRunAt:        s.LastRunAt,
		NextRunAt:        s.NextRunAt,
		Deleted:          s.IsDeleted(),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// ListSchedulesRequest holds the query string of a schedule listing.
// Instants are RFC 3339.
type ListSchedulesRequest struct {
	Category       string `query:"category"`
	DueOn          string `query:"due_on"`
	From           string `query:"from"`
	To             string `query:"to"`
	Active         bool   `query:"active"`
	IncludeTrashed bool   `query:"include_trashed"`
}

// ScheduleFilter is a parsed ListSchedulesRequest.
type ScheduleFilter struct {
	Category       *entity.Category
	DueOn          *time.Time
	From           *time.Time
	To             *time.Time
	Active         bool
	IncludeTrashed bool
}

// Filter validates the request and parses its instants.
func (r ListSchedulesRequest) Filter() (*ScheduleFilter, error) {
	f := &ScheduleFilter{Active: r.Active, IncludeTrashed: r.IncludeTrashed}
	if r.Category != "" {
		c, err := entity.ParseCategory(r.Category)
		if err != nil {
			return nil, err
		}
		f.Category = &c
	}

	var err error
	if f.DueOn, err = parseInstant("due_on", r.DueOn); err != nil {
		return nil, err
	}
	if f.From, err = parseInstant("from", r.From); err != nil {
		return nil, err
	}
	if f.To, err = parseInstant("to", r.To); err != nil {
		return nil, err
	}
	if f.To != nil && f.From == nil {
		return nil, fmt.Errorf("to requires from")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, fmt.Errorf("to must not be before from")
	}
	if f.DueOn != nil && f.From != nil {
		return nil, fmt.Errorf("due_on cannot be combined with from/to")
	}
	return f, nil
}

func parseInstant(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return &t, nil
}
