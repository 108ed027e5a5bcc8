package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
	"github.com/safebase/safebase/internal/infrastructure/sqlite"
	"go.uber.org/zap"
)

// Prober checks whether a registered connection can reach its database.
type Prober interface {
	Probe(ctx context.Context, conn *domain.Database) error
}

// DatabaseSpec carries the user-provided connection fields.
type DatabaseSpec struct {
	Name     string
	Type     domain.DatabaseType
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

type DatabaseService struct {
	databaseRepo repository.DatabaseRepository
	scheduleRepo repository.ScheduleRepository
	prober       Prober
	logger       *zap.Logger
}

func NewDatabaseService(
	databaseRepo repository.DatabaseRepository,
	scheduleRepo repository.ScheduleRepository,
	prober Prober,
	logger *zap.Logger,
) *DatabaseService {
	return &DatabaseService{
		databaseRepo: databaseRepo,
		scheduleRepo: scheduleRepo,
		prober:       prober,
		logger:       logger,
	}
}

func (s *DatabaseService) validateSpec(spec DatabaseSpec) error {
	if spec.Name == "" {
		return Validationf("name is required")
	}
	if !spec.Type.Valid() {
		return Validationf("type must be %q or %q", domain.DatabaseTypeMySQL, domain.DatabaseTypePostgreSQL)
	}
	if spec.Host == "" {
		return Validationf("host is required")
	}
	if spec.Port < 0 || spec.Port > 65535 {
		return Validationf("port must be 0 for the engine default or between 1 and 65535")
	}
	if spec.Username == "" {
		return Validationf("username is required")
	}
	if spec.Password == "" {
		return Validationf("password is required")
	}
	if spec.Database == "" {
		return Validationf("database name is required")
	}
	return nil
}

// Create validates the spec, probes connectivity and persists the
// record. A failed probe does not reject the record: it is stored with
// status error so the user can correct credentials via update.
func (s *DatabaseService) Create(ctx context.Context, spec DatabaseSpec) (*domain.Database, error) {
	if err := s.validateSpec(spec); err != nil {
		return nil, err
	}

	conn := domain.NewDatabase(spec.Name, spec.Type, spec.Host, spec.Port,
		spec.Username, spec.Password, spec.Database)

	conn.Status = s.probeStatus(ctx, conn)

	if err := s.databaseRepo.Create(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	return conn, nil
}

func (s *DatabaseService) Get(ctx context.Context, id string) (*domain.Database, error) {
	conn, err := s.databaseRepo.FindByID(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, NotFoundf("database connection not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *DatabaseService) List(ctx context.Context) ([]*domain.Database, error) {
	return s.databaseRepo.List(ctx)
}

// Update replaces the connection fields and re-probes.
func (s *DatabaseService) Update(ctx context.Context, id string, spec DatabaseSpec) (*domain.Database, error) {
	if err := s.validateSpec(spec); err != nil {
		return nil, err
	}

	conn, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	conn.Name = spec.Name
	conn.Type = spec.Type
	conn.Host = spec.Host
	conn.Port = spec.Port
	if conn.Port == 0 {
		conn.Port = conn.Type.DefaultPort()
	}
	conn.Username = spec.Username
	conn.Password = spec.Password
	conn.Database = spec.Database
	conn.Status = s.probeStatus(ctx, conn)
	conn.UpdatedAt = time.Now().UTC()

	if err := s.databaseRepo.Update(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to update database connection: %w", err)
	}

	return conn, nil
}

// Delete removes the connection. Schedules cascade with it; backup
// history is retained as orphaned read-only records.
func (s *DatabaseService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	schedules, err := s.scheduleRepo.FindByDatabase(ctx, id)
	if err != nil {
		return err
	}

	if err := s.databaseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete database connection: %w", err)
	}

	if len(schedules) > 0 {
		s.logger.Info("removed schedules with connection",
			zap.String("database", id),
			zap.Int("schedules", len(schedules)),
		)
	}
	return nil
}

func (s *DatabaseService) probeStatus(ctx context.Context, conn *domain.Database) domain.ConnectionStatus {
	if err := s.prober.Probe(ctx, conn); err != nil {
		s.logger.Warn("connection probe failed",
			zap.String("database", conn.Name),
			zap.Error(err),
		)
		return domain.StatusError
	}
	return domain.StatusConnected
}
