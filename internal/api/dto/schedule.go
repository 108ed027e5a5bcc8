package dto

import (
	"time"

	"github.com/safebase/safebase/internal/core/domain"
)

// CreateScheduleRequest represents the schedule creation request
type CreateScheduleRequest struct {
	DatabaseID     string `json:"databaseId" binding:"required"`
	CronExpression string `json:"cronExpression" binding:"required"`
	Enabled        *bool  `json:"enabled"` // defaults to true
}

// UpdateScheduleRequest represents a partial schedule update
type UpdateScheduleRequest struct {
	CronExpression *string `json:"cronExpression"`
	Enabled        *bool   `json:"enabled"`
}

// ScheduleResponse represents a schedule. NextRun is null while the
// schedule is disabled, regardless of the stored value.
type ScheduleResponse struct {
	ID             string     `json:"id"`
	DatabaseID     string     `json:"databaseId"`
	DatabaseName   string     `json:"databaseName"`
	CronExpression string     `json:"cronExpression"`
	Enabled        bool       `json:"enabled"`
	NextRun        *time.Time `json:"nextRun"`
	LastRun        *time.Time `json:"lastRun,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func ToScheduleResponse(schedule *domain.Schedule) ScheduleResponse {
	resp := ScheduleResponse{
		ID:             schedule.ID,
		DatabaseID:     schedule.DatabaseID,
		DatabaseName:   schedule.DatabaseName,
		CronExpression: schedule.CronExpression,
		Enabled:        schedule.Enabled,
		LastRun:        schedule.LastRun,
		CreatedAt:      schedule.CreatedAt,
		UpdatedAt:      schedule.UpdatedAt,
	}
	if schedule.Enabled {
		resp.NextRun = schedule.NextRun
	}
	return resp
}

func ToScheduleResponses(schedules []*domain.Schedule) []ScheduleResponse {
	out := make([]ScheduleResponse, len(schedules))
	for i, schedule := range schedules {
		out[i] = ToScheduleResponse(schedule)
	}
	return out
}
