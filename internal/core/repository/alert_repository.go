package repository

import (
	"context"

	"github.com/safebase/safebase/internal/core/domain"
)

type AlertRepository interface {
	Create(ctx context.Context, alert *domain.Alert) error
	FindByID(ctx context.Context, id string) (*domain.Alert, error)

	// List returns alerts in creation order, newest first. A limit of 0
	// means no limit.
	List(ctx context.Context, limit int) ([]*domain.Alert, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	UnreadCount(ctx context.Context) (int, error)
}
