package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
)

type databaseRepository struct {
	db *DB
}

func NewDatabaseRepository(db *DB) repository.DatabaseRepository {
	return &databaseRepository{db: db}
}

func (r *databaseRepository) Create(ctx context.Context, conn *domain.Database) error {
	query := `
		INSERT INTO database_connection
			(id, name, type, host, port, username, password, db_name,
			 status, backup_count, size_bytes, last_backup, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		conn.ID,
		conn.Name,
		conn.Type,
		conn.Host,
		conn.Port,
		conn.Username,
		conn.Password,
		conn.Database,
		conn.Status,
		conn.BackupCount,
		conn.SizeBytes,
		NullTime(conn.LastBackup),
		conn.CreatedAt,
		conn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}
	return nil
}

func (r *databaseRepository) FindByID(ctx context.Context, id string) (*domain.Database, error) {
	query := `
		SELECT id, name, type, host, port, username, password, db_name,
		       status, backup_count, size_bytes, last_backup, created_at, updated_at
		FROM database_connection
		WHERE id = ?
	`
	var conn domain.Database
	err := r.db.GetContext(ctx, &conn, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find database connection: %w", err)
	}
	return &conn, nil
}

func (r *databaseRepository) Update(ctx context.Context, conn *domain.Database) error {
	query := `
		UPDATE database_connection
		SET name = ?, type = ?, host = ?, port = ?, username = ?, password = ?,
		    db_name = ?, status = ?, backup_count = ?, size_bytes = ?,
		    last_backup = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		conn.Name,
		conn.Type,
		conn.Host,
		conn.Port,
		conn.Username,
		conn.Password,
		conn.Database,
		conn.Status,
		conn.BackupCount,
		conn.SizeBytes,
		NullTime(conn.LastBackup),
		conn.UpdatedAt,
		conn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update database connection: %w", err)
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

func (r *databaseRepository) UpdateBackupState(ctx context.Context, conn *domain.Database) error {
	query := `
		UPDATE database_connection
		SET status = ?, backup_count = ?, size_bytes = ?, last_backup = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		conn.Status,
		conn.BackupCount,
		conn.SizeBytes,
		NullTime(conn.LastBackup),
		conn.UpdatedAt,
		conn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update database connection backup state: %w", err)
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

func (r *databaseRepository) Delete(ctx context.Context, id string) error {
	// Schedules cascade via the foreign key; backup rows stay as history.
	query := `DELETE FROM database_connection WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete database connection: %w", err)
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

func (r *databaseRepository) List(ctx context.Context) ([]*domain.Database, error) {
	query := `
		SELECT id, name, type, host, port, username, password, db_name,
		       status, backup_count, size_bytes, last_backup, created_at, updated_at
		FROM database_connection
		ORDER BY created_at
	`
	var conns []*domain.Database
	err := r.db.SelectContext(ctx, &conns, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list database connections: %w", err)
	}
	return conns, nil
}

func (r *databaseRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM database_connection`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count database connections: %w", err)
	}
	return count, nil
}
