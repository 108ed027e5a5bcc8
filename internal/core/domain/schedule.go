package domain

import (
	"time"

	"github.com/google/uuid"
)

// Schedule is a recurring backup rule expressed as a 5-field cron
// expression. NextRun is authoritative only while Enabled is true; a
// disabled schedule keeps its stored value but readers must treat it
// as unscheduled.
type Schedule struct {
	ID             string     `db:"id"`
	DatabaseID     string     `db:"database_id"`
	DatabaseName   string     `db:"database_name"`
	CronExpression string     `db:"cron_expression"`
	Enabled        bool       `db:"enabled"`
	NextRun        *time.Time `db:"next_run"`
	LastRun        *time.Time `db:"last_run"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func NewSchedule(db *Database, cronExpression string, enabled bool) *Schedule {
	now := time.Now().UTC()
	return &Schedule{
		ID:             uuid.New().String(),
		DatabaseID:     db.ID,
		DatabaseName:   db.Name,
		CronExpression: cronExpression,
		Enabled:        enabled,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Due reports whether the schedule should fire at the given instant.
func (s *Schedule) Due(now time.Time) bool {
	return s.Enabled && s.NextRun != nil && !s.NextRun.After(now)
}
