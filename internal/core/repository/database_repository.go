package repository

import (
	"context"

	"github.com/safebase/safebase/internal/core/domain"
)

type DatabaseRepository interface {
	Create(ctx context.Context, db *domain.Database) error
	FindByID(ctx context.Context, id string) (*domain.Database, error)
	Update(ctx context.Context, db *domain.Database) error
	// UpdateBackupState writes only the status and backup bookkeeping
	// columns so a concurrent edit to the connection fields is not
	// clobbered by a finishing backup.
	UpdateBackupState(ctx context.Context, db *domain.Database) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Database, error)
	Count(ctx context.Context) (int, error)
}
