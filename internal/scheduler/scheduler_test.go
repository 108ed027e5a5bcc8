package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/safebase/safebase/internal/adapter/dump"
	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
	"github.com/safebase/safebase/internal/core/service"
	"github.com/safebase/safebase/internal/infrastructure/sqlite"
	"go.uber.org/zap"
)

type instantEngine struct{}

func (instantEngine) Dump(ctx context.Context, conn *domain.Database) (*dump.Result, error) {
	return &dump.Result{FilePath: "/backups/t.sql", SizeBytes: 1}, nil
}

func (instantEngine) Restore(ctx context.Context, conn *domain.Database, filePath string) error {
	return nil
}

func setup(t *testing.T) (*Scheduler, *service.BackupService, repository.ScheduleRepository, *domain.Database) {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := zap.NewNop()
	databaseRepo := sqlite.NewDatabaseRepository(db)
	backupRepo := sqlite.NewBackupRepository(db)
	scheduleRepo := sqlite.NewScheduleRepository(db)
	alertRepo := sqlite.NewAlertRepository(db)

	alertService := service.NewAlertService(alertRepo, log)
	backupService := service.NewBackupService(backupRepo, databaseRepo, alertService, instantEngine{}, time.Minute, log)
	scheduleService := service.NewScheduleService(scheduleRepo, databaseRepo, backupService, log)

	conn := domain.NewDatabase("prod_mysql", domain.DatabaseTypeMySQL, "localhost", 0, "root", "x", "appdb")
	if err := databaseRepo.Create(context.Background(), conn); err != nil {
		t.Fatalf("failed to seed connection: %v", err)
	}

	sched := New(scheduleService, alertService, time.Minute, t.TempDir(), log)
	return sched, backupService, scheduleRepo, conn
}

func TestTickFiresDueSchedules(t *testing.T) {
	sched, backupService, scheduleRepo, conn := setup(t)
	ctx := context.Background()

	schedule := domain.NewSchedule(conn, "0 2 * * *", true)
	due := time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC)
	schedule.NextRun = &due
	if err := scheduleRepo.Create(ctx, schedule); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	now := time.Date(2024, 1, 2, 2, 0, 30, 0, time.UTC)
	sched.Tick(ctx, now)
	backupService.Wait()

	after, err := scheduleRepo.FindByID(ctx, schedule.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if after.LastRun == nil || !after.LastRun.Equal(now) {
		t.Errorf("expected lastRun %s, got %v", now, after.LastRun)
	}
	if after.NextRun == nil || !after.NextRun.After(now) {
		t.Errorf("expected nextRun past %s, got %v", now, after.NextRun)
	}
}

func TestTickSkipsFutureSchedules(t *testing.T) {
	sched, backupService, scheduleRepo, conn := setup(t)
	ctx := context.Background()

	schedule := domain.NewSchedule(conn, "0 2 * * *", true)
	future := time.Now().UTC().Add(time.Hour)
	schedule.NextRun = &future
	if err := scheduleRepo.Create(ctx, schedule); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sched.Tick(ctx, time.Now().UTC())
	backupService.Wait()

	after, _ := scheduleRepo.FindByID(ctx, schedule.ID)
	if after.LastRun != nil {
		t.Error("future schedule must not fire")
	}
	if !after.NextRun.Equal(future) {
		t.Error("future nextRun must be untouched")
	}
}

func TestStartStop(t *testing.T) {
	sched, _, _, _ := setup(t)

	sched.Start()
	sched.Stop()
}
