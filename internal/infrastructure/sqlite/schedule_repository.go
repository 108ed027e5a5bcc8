package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
)

type scheduleRepository struct {
	db *DB
}

func NewScheduleRepository(db *DB) repository.ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *domain.Schedule) error {
	query := `
		INSERT INTO schedule
			(id, database_id, database_name, cron_expression, enabled,
			 next_run, last_run, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		schedule.ID,
		schedule.DatabaseID,
		schedule.DatabaseName,
		schedule.CronExpression,
		schedule.Enabled,
		NullTime(schedule.NextRun),
		NullTime(schedule.LastRun),
		schedule.CreatedAt,
		schedule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepository) FindByID(ctx context.Context, id string) (*domain.Schedule, error) {
	query := `
		SELECT id, database_id, database_name, cron_expression, enabled,
		       next_run, last_run, created_at, updated_at
		FROM schedule
		WHERE id = ?
	`
	var schedule domain.Schedule
	err := r.db.GetContext(ctx, &schedule, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}
	return &schedule, nil
}

func (r *scheduleRepository) Update(ctx context.Context, schedule *domain.Schedule) error {
	query := `
		UPDATE schedule
		SET cron_expression = ?, enabled = ?, next_run = ?, last_run = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		schedule.CronExpression,
		schedule.Enabled,
		NullTime(schedule.NextRun),
		NullTime(schedule.LastRun),
		schedule.UpdatedAt,
		schedule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *scheduleRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM schedule WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *scheduleRepository) List(ctx context.Context) ([]*domain.Schedule, error) {
	query := `
		SELECT id, database_id, database_name, cron_expression, enabled,
		       next_run, last_run, created_at, updated_at
		FROM schedule
		ORDER BY created_at
	`
	var schedules []*domain.Schedule
	err := r.db.SelectContext(ctx, &schedules, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

func (r *scheduleRepository) FindByDatabase(ctx context.Context, databaseID string) ([]*domain.Schedule, error) {
	query := `
		SELECT id, database_id, database_name, cron_expression, enabled,
		       next_run, last_run, created_at, updated_at
		FROM schedule
		WHERE database_id = ?
		ORDER BY created_at
	`
	var schedules []*domain.Schedule
	err := r.db.SelectContext(ctx, &schedules, query, databaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find schedules by database: %w", err)
	}
	return schedules, nil
}

func (r *scheduleRepository) FindDue(ctx context.Context, now time.Time) ([]*domain.Schedule, error) {
	query := `
		SELECT id, database_id, database_name, cron_expression, enabled,
		       next_run, last_run, created_at, updated_at
		FROM schedule
		WHERE enabled = 1 AND next_run IS NOT NULL AND next_run <= ?
		ORDER BY next_run
	`
	var schedules []*domain.Schedule
	err := r.db.SelectContext(ctx, &schedules, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find due schedules: %w", err)
	}
	return schedules, nil
}

func (r *scheduleRepository) UpdateRunTimes(ctx context.Context, id string, lastRun time.Time, nextRun *time.Time) error {
	query := `
		UPDATE schedule
		SET last_run = ?, next_run = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		lastRun,
		NullTime(nextRun),
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule run times: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
