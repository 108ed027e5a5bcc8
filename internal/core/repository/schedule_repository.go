package repository

import (
	"context"
	"time"

	"github.com/safebase/safebase/internal/core/domain"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) error
	FindByID(ctx context.Context, id string) (*domain.Schedule, error)
	Update(ctx context.Context, schedule *domain.Schedule) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Schedule, error)
	FindByDatabase(ctx context.Context, databaseID string) ([]*domain.Schedule, error)

	// FindDue returns enabled schedules whose next run is at or before now.
	FindDue(ctx context.Context, now time.Time) ([]*domain.Schedule, error)

	// UpdateRunTimes persists lastRun/nextRun after a firing without
	// touching the rest of the row.
	UpdateRunTimes(ctx context.Context, id string, lastRun time.Time, nextRun *time.Time) error
}
