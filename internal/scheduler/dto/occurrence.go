package dto

import (
	"encoding/json"
	"time"

	"github.com/sinclairt/schedulable/internal/entity"
)

// OccurrencesRequest holds the query string of an occurrence lookup.
type OccurrencesRequest struct {
	Direction string `query:"direction" example:"next"`
	Count     int    `query:"count" example:"5"`
	From      string `query:"from"`
	To        string `query:"to"`
}

// OccurrencesResponse lists computed occurrence instants of one schedule.
type OccurrencesResponse struct {
	ScheduleID  uint        `json:"schedule_id"`
	Expression  string      `json:"expression"`
	Occurrences []time.Time `json:"occurrences"`
}

// DueResponse answers whether a schedule fires at an instant.
type DueResponse struct {
	ScheduleID uint      `json:"schedule_id"`
	At         time.Time `json:"at"`
	Due        bool      `json:"due"`
}

// ScheduleRunResponse is the DTO for one recorded run.
type ScheduleRunResponse struct {
	ID         uint            `json:"id"`
	ScheduleID uint            `json:"schedule_id"`
	EventID    string          `json:"event_id"`
	RanAt      time.Time       `json:"ran_at"`
	NextRunAt  *time.Time      `json:"next_run_at"`
	Payload    json.RawMessage `json:"payload" swaggertype:"object"`
}

// NewScheduleRunResponse maps a run onto its API representation.
func NewScheduleRunResponse(r *entity.ScheduleRun) *ScheduleRunResponse {
	return &ScheduleRunResponse{
		ID:         r.ID,
		ScheduleID: r.ScheduleID,
		EventID:    r.EventID,
		RanAt:      r.RanAt,
		NextRunAt:  r.NextRunAt,
		Payload:    json.RawMessage(r.Payload),
	}
}
