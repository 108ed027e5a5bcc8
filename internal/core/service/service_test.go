package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/safebase/safebase/internal/adapter/dump"
	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
	"github.com/safebase/safebase/internal/infrastructure/sqlite"
	"go.uber.org/zap"
)

// stubEngine stands in for the dump executor so tests control outcomes.
type stubEngine struct {
	mu        sync.Mutex
	dumpErr   error
	dumpDelay time.Duration
	result    dump.Result
	probeErr  error
	dumps     int
	restores  int
}

func (e *stubEngine) Dump(ctx context.Context, conn *domain.Database) (*dump.Result, error) {
	e.mu.Lock()
	delay, err, result := e.dumpDelay, e.dumpErr, e.result
	e.dumps++
	e.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (e *stubEngine) Restore(ctx context.Context, conn *domain.Database, filePath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restores++
	return e.dumpErr
}

func (e *stubEngine) Probe(ctx context.Context, conn *domain.Database) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.probeErr
}

func (e *stubEngine) dumpCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dumps
}

// testEnv holds all test dependencies backed by an in-memory database
type testEnv struct {
	db     *sqlite.DB
	engine *stubEngine

	userRepo     repository.UserRepository
	databaseRepo repository.DatabaseRepository
	backupRepo   repository.BackupRepository
	scheduleRepo repository.ScheduleRepository
	alertRepo    repository.AlertRepository

	authService     *AuthService
	alertService    *AlertService
	databaseService *DatabaseService
	backupService   *BackupService
	scheduleService *ScheduleService
	statsService    *StatsService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := zap.NewNop()
	engine := &stubEngine{result: dump.Result{FilePath: "/backups/test.sql", SizeBytes: 2048}}

	userRepo := sqlite.NewUserRepository(db)
	databaseRepo := sqlite.NewDatabaseRepository(db)
	backupRepo := sqlite.NewBackupRepository(db)
	scheduleRepo := sqlite.NewScheduleRepository(db)
	alertRepo := sqlite.NewAlertRepository(db)

	authService := NewAuthService(userRepo, "test-secret", time.Hour)
	alertService := NewAlertService(alertRepo, log)
	databaseService := NewDatabaseService(databaseRepo, scheduleRepo, engine, log)
	backupService := NewBackupService(backupRepo, databaseRepo, alertService, engine, time.Minute, log)
	scheduleService := NewScheduleService(scheduleRepo, databaseRepo, backupService, log)
	statsService := NewStatsService(databaseRepo, backupRepo, alertRepo)

	return &testEnv{
		db:              db,
		engine:          engine,
		userRepo:        userRepo,
		databaseRepo:    databaseRepo,
		backupRepo:      backupRepo,
		scheduleRepo:    scheduleRepo,
		alertRepo:       alertRepo,
		authService:     authService,
		alertService:    alertService,
		databaseService: databaseService,
		backupService:   backupService,
		scheduleService: scheduleService,
		statsService:    statsService,
	}
}

// seedConnection persists a connection directly, bypassing the probe.
func (env *testEnv) seedConnection(t *testing.T, name string) *domain.Database {
	t.Helper()

	conn := domain.NewDatabase(name, domain.DatabaseTypeMySQL, "localhost", 0, "root", "secret", "appdb")
	conn.Status = domain.StatusConnected
	if err := env.databaseRepo.Create(context.Background(), conn); err != nil {
		t.Fatalf("failed to seed connection: %v", err)
	}
	return conn
}

// ptr is a helper to create a pointer to a value
func ptr[T any](v T) *T {
	return &v
}
