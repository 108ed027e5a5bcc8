package repository

import (
	"context"

	"github.com/safebase/safebase/internal/core/domain"
)

type BackupFilter struct {
	DatabaseID *string
	Status     *domain.BackupStatus
	Limit      int
}

type BackupRepository interface {
	Create(ctx context.Context, backup *domain.Backup) error
	FindByID(ctx context.Context, id string) (*domain.Backup, error)
	Update(ctx context.Context, backup *domain.Backup) error
	List(ctx context.Context, filter BackupFilter) ([]*domain.Backup, error)
	Count(ctx context.Context, filter BackupFilter) (int, error)
	CountByStatus(ctx context.Context, status domain.BackupStatus) (int, error)

	// MarkStaleInProgressFailed resolves backups left in_progress by a
	// previous process run. Returns the number of rows reconciled.
	MarkStaleInProgressFailed(ctx context.Context, reason string) (int, error)
}
