package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ScheduleRun records one "mark as run" event issued for a schedule.
type ScheduleRun struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ScheduleID uint           `gorm:"not null;index" json:"schedule_id"`
	EventID    string         `gorm:"size:26;not null;uniqueIndex" json:"event_id"`
	RanAt      time.Time      `gorm:"not null" json:"ran_at"`
	NextRunAt  *time.Time     `json:"next_run_at,omitempty"`
	Payload    datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the ScheduleRun model.
func (ScheduleRun) TableName() string {
	return "schedule_runs"
}
