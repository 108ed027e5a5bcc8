package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
)

type backupRepository struct {
	db *DB
}

func NewBackupRepository(db *DB) repository.BackupRepository {
	return &backupRepository{db: db}
}

func (r *backupRepository) Create(ctx context.Context, backup *domain.Backup) error {
	query := `
		INSERT INTO backup
			(id, database_id, database_name, version, size_bytes, status,
			 file_path, origin, duration, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		backup.ID,
		backup.DatabaseID,
		backup.DatabaseName,
		backup.Version,
		backup.SizeBytes,
		backup.Status,
		backup.FilePath,
		backup.Origin,
		backup.Duration,
		NullString(backup.Error),
		backup.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	return nil
}

func (r *backupRepository) FindByID(ctx context.Context, id string) (*domain.Backup, error) {
	query := `
		SELECT id, database_id, database_name, version, size_bytes, status,
		       file_path, origin, duration, error, created_at
		FROM backup
		WHERE id = ?
	`
	var backup domain.Backup
	err := r.db.GetContext(ctx, &backup, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find backup: %w", err)
	}
	return &backup, nil
}

func (r *backupRepository) Update(ctx context.Context, backup *domain.Backup) error {
	query := `
		UPDATE backup
		SET size_bytes = ?, status = ?, file_path = ?, duration = ?, error = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		backup.SizeBytes,
		backup.Status,
		backup.FilePath,
		backup.Duration,
		NullString(backup.Error),
		backup.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update backup: %w", err)
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

func (r *backupRepository) List(ctx context.Context, filter repository.BackupFilter) ([]*domain.Backup, error) {
	query := `
		SELECT id, database_id, database_name, version, size_bytes, status,
		       file_path, origin, duration, error, created_at
		FROM backup
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.DatabaseID != nil {
		query += " AND database_id = ?"
		args = append(args, *filter.DatabaseID)
	}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, *filter.Status)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var backups []*domain.Backup
	err := r.db.SelectContext(ctx, &backups, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	return backups, nil
}

func (r *backupRepository) Count(ctx context.Context, filter repository.BackupFilter) (int, error) {
	query := `SELECT COUNT(*) FROM backup WHERE 1=1`
	args := []interface{}{}

	if filter.DatabaseID != nil {
		query += " AND database_id = ?"
		args = append(args, *filter.DatabaseID)
	}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, *filter.Status)
	}

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count backups: %w", err)
	}
	return count, nil
}

func (r *backupRepository) CountByStatus(ctx context.Context, status domain.BackupStatus) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM backup WHERE status = ?`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count backups by status: %w", err)
	}
	return count, nil
}

func (r *backupRepository) MarkStaleInProgressFailed(ctx context.Context, reason string) (int, error) {
	query := `
		UPDATE backup
		SET status = ?, error = ?
		WHERE status = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		domain.BackupStatusFailed,
		reason,
		domain.BackupStatusInProgress,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile stale backups: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}
