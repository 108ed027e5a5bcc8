package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
	"github.com/safebase/safebase/internal/infrastructure/sqlite"
	"go.uber.org/zap"
)

type AlertService struct {
	alertRepo repository.AlertRepository
	logger    *zap.Logger
}

func NewAlertService(alertRepo repository.AlertRepository, logger *zap.Logger) *AlertService {
	return &AlertService{
		alertRepo: alertRepo,
		logger:    logger,
	}
}

// Emit records a new unread alert. Emission failures are logged, never
// propagated: an alert must not fail the operation it describes.
func (s *AlertService) Emit(ctx context.Context, kind domain.AlertKind, title, message string, databaseName *string) {
	alert := domain.NewAlert(kind, title, message)
	if databaseName != nil {
		alert.WithDatabase(*databaseName)
	}

	if err := s.alertRepo.Create(ctx, alert); err != nil {
		s.logger.Error("failed to record alert",
			zap.String("kind", string(kind)),
			zap.String("title", title),
			zap.Error(err),
		)
	}
}

// List returns alerts newest first. A limit of 0 returns everything.
func (s *AlertService) List(ctx context.Context, limit int) ([]*domain.Alert, error) {
	return s.alertRepo.List(ctx, limit)
}

// MarkRead flips one alert to read. Re-marking a read alert is a no-op.
func (s *AlertService) MarkRead(ctx context.Context, id string) error {
	err := s.alertRepo.MarkRead(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return NotFoundf("alert not found: %s", id)
	}
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	return nil
}

// MarkAllRead flips every unread alert to read.
func (s *AlertService) MarkAllRead(ctx context.Context) error {
	if err := s.alertRepo.MarkAllRead(ctx); err != nil {
		return fmt.Errorf("failed to mark alerts read: %w", err)
	}
	return nil
}

// UnreadCount returns the live number of unread alerts.
func (s *AlertService) UnreadCount(ctx context.Context) (int, error) {
	return s.alertRepo.UnreadCount(ctx)
}
