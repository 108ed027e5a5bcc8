package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
)

type alertRepository struct {
	db *DB
}

func NewAlertRepository(db *DB) repository.AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	query := `
		INSERT INTO alert (id, kind, title, message, database_name, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		alert.ID,
		alert.Kind,
		alert.Title,
		alert.Message,
		NullString(alert.DatabaseName),
		alert.Read,
		alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

func (r *alertRepository) FindByID(ctx context.Context, id string) (*domain.Alert, error) {
	query := `
		SELECT id, kind, title, message, database_name, read, created_at
		FROM alert
		WHERE id = ?
	`
	var alert domain.Alert
	err := r.db.GetContext(ctx, &alert, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find alert: %w", err)
	}
	return &alert, nil
}

func (r *alertRepository) List(ctx context.Context, limit int) ([]*domain.Alert, error) {
	query := `
		SELECT id, kind, title, message, database_name, read, created_at
		FROM alert
		ORDER BY created_at DESC, rowid DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var alerts []*domain.Alert
	err := r.db.SelectContext(ctx, &alerts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

func (r *alertRepository) MarkRead(ctx context.Context, id string) error {
	// Re-marking an already-read alert is a no-op, so rows affected is
	// checked against existence, not against the read flag changing.
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alert WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check alert: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	_, err = r.db.ExecContext(ctx, `UPDATE alert SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	return nil
}

func (r *alertRepository) MarkAllRead(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE alert SET read = 1 WHERE read = 0`)
	if err != nil {
		return fmt.Errorf("failed to mark all alerts read: %w", err)
	}
	return nil
}

func (r *alertRepository) UnreadCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM alert WHERE read = 0`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread alerts: %w", err)
	}
	return count, nil
}
