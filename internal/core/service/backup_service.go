package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/safebase/safebase/internal/adapter/dump"
	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/repository"
	"github.com/safebase/safebase/internal/infrastructure/sqlite"
	"go.uber.org/zap"
)

// DumpEngine executes dumps and restores against a source database.
type DumpEngine interface {
	Dump(ctx context.Context, conn *domain.Database) (*dump.Result, error)
	Restore(ctx context.Context, conn *domain.Database, filePath string) error
}

type BackupService struct {
	backupRepo   repository.BackupRepository
	databaseRepo repository.DatabaseRepository
	alertServ    *AlertService
	engine       DumpEngine
	dumpTimeout  time.Duration
	logger       *zap.Logger

	// inflight is the per-connection exclusivity marker: at most one
	// backup or restore may run against a connection at a time.
	mu       sync.Mutex
	inflight map[string]bool

	wg sync.WaitGroup
}

func NewBackupService(
	backupRepo repository.BackupRepository,
	databaseRepo repository.DatabaseRepository,
	alertServ *AlertService,
	engine DumpEngine,
	dumpTimeout time.Duration,
	logger *zap.Logger,
) *BackupService {
	return &BackupService{
		backupRepo:   backupRepo,
		databaseRepo: databaseRepo,
		alertServ:    alertServ,
		engine:       engine,
		dumpTimeout:  dumpTimeout,
		logger:       logger,
		inflight:     make(map[string]bool),
	}
}

// tryAcquire atomically claims the in-flight marker for a connection.
func (s *BackupService) tryAcquire(databaseID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[databaseID] {
		return false
	}
	s.inflight[databaseID] = true
	return true
}

func (s *BackupService) release(databaseID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, databaseID)
}

// Run starts a backup for the connection and returns the in_progress
// record immediately; the dump completes in the background. A second
// trigger while one is in flight fails with a conflict and creates no
// record.
func (s *BackupService) Run(ctx context.Context, databaseID string, origin domain.BackupOrigin) (*domain.Backup, error) {
	conn, err := s.databaseRepo.FindByID(ctx, databaseID)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, NotFoundf("database connection not found: %s", databaseID)
	}
	if err != nil {
		return nil, err
	}

	if !s.tryAcquire(conn.ID) {
		return nil, Conflictf("a backup is already in progress for %s", conn.Name)
	}

	backup := domain.NewBackup(conn, origin)
	if err := s.backupRepo.Create(ctx, backup); err != nil {
		s.release(conn.ID)
		return nil, fmt.Errorf("failed to create backup record: %w", err)
	}

	s.wg.Add(1)
	go s.execute(backup, conn)

	return backup, nil
}

// execute runs the dump and records the outcome. The in-flight marker
// is released on every exit path.
func (s *BackupService) execute(backup *domain.Backup, conn *domain.Database) {
	defer s.wg.Done()
	defer s.release(conn.ID)

	ctx, cancel := context.WithTimeout(context.Background(), s.dumpTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.engine.Dump(ctx, conn)
	elapsed := time.Since(start)

	if err != nil {
		s.finishFailed(backup, conn, err, elapsed)
		return
	}

	backup.Complete(result.FilePath, result.SizeBytes, elapsed)
	if err := s.backupRepo.Update(context.Background(), backup); err != nil {
		s.logger.Error("failed to record backup completion", zap.String("backup", backup.ID), zap.Error(err))
	}

	now := time.Now().UTC()
	conn.RecordBackup(now, result.SizeBytes)
	conn.Status = domain.StatusConnected
	// Targeted write: an edit to the connection fields made while the
	// dump ran must survive completion.
	if err := s.databaseRepo.UpdateBackupState(context.Background(), conn); err != nil {
		s.logger.Error("failed to update connection after backup", zap.String("database", conn.ID), zap.Error(err))
	}

	s.alertServ.Emit(context.Background(), domain.AlertKindSuccess,
		"Backup completed",
		fmt.Sprintf("Backup %s of %s finished in %ds", backup.Version, conn.Name, backup.Duration),
		&conn.Name)

	s.logger.Info("backup completed",
		zap.String("backup", backup.ID),
		zap.String("database", conn.Name),
		zap.Int64("size_bytes", result.SizeBytes),
		zap.Duration("elapsed", elapsed),
	)
}

func (s *BackupService) finishFailed(backup *domain.Backup, conn *domain.Database, cause error, elapsed time.Duration) {
	backup.Fail(cause.Error(), elapsed)
	if err := s.backupRepo.Update(context.Background(), backup); err != nil {
		s.logger.Error("failed to record backup failure", zap.String("backup", backup.ID), zap.Error(err))
	}

	conn.Status = domain.StatusError
	conn.UpdatedAt = time.Now().UTC()
	if err := s.databaseRepo.UpdateBackupState(context.Background(), conn); err != nil {
		s.logger.Error("failed to update connection after backup failure", zap.String("database", conn.ID), zap.Error(err))
	}

	s.alertServ.Emit(context.Background(), domain.AlertKindError,
		"Backup failed",
		fmt.Sprintf("Backup of %s failed: %v", conn.Name, cause),
		&conn.Name)

	s.logger.Warn("backup failed",
		zap.String("backup", backup.ID),
		zap.String("database", conn.Name),
		zap.Error(cause),
	)
}

// Restore replays a stored backup into its owning connection. It holds
// the same in-flight marker as backups and runs synchronously.
func (s *BackupService) Restore(ctx context.Context, backupID string) error {
	backup, err := s.Get(ctx, backupID)
	if err != nil {
		return err
	}
	if backup.Status != domain.BackupStatusSuccess {
		return Validationf("only successful backups can be restored")
	}

	conn, err := s.databaseRepo.FindByID(ctx, backup.DatabaseID)
	if errors.Is(err, sqlite.ErrNotFound) {
		return NotFoundf("database connection no longer exists: %s", backup.DatabaseID)
	}
	if err != nil {
		return err
	}

	if !s.tryAcquire(conn.ID) {
		return Conflictf("a backup or restore is already in progress for %s", conn.Name)
	}
	defer s.release(conn.ID)

	if err := s.engine.Restore(ctx, conn, backup.FilePath); err != nil {
		s.alertServ.Emit(ctx, domain.AlertKindError,
			"Restore failed",
			fmt.Sprintf("Restore of %s from backup %s failed: %v", conn.Name, backup.Version, err),
			&conn.Name)
		return Connectionf("restore failed: %v", err)
	}

	s.alertServ.Emit(ctx, domain.AlertKindSuccess,
		"Restore completed",
		fmt.Sprintf("Restored %s from backup %s", conn.Name, backup.Version),
		&conn.Name)

	return nil
}

func (s *BackupService) Get(ctx context.Context, id string) (*domain.Backup, error) {
	backup, err := s.backupRepo.FindByID(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, NotFoundf("backup not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return backup, nil
}

func (s *BackupService) List(ctx context.Context, filter repository.BackupFilter) ([]*domain.Backup, error) {
	return s.backupRepo.List(ctx, filter)
}

// ReconcileStale marks backups left in_progress by a previous process
// run as failed. Called once at startup, before the scheduler starts.
func (s *BackupService) ReconcileStale(ctx context.Context) error {
	n, err := s.backupRepo.MarkStaleInProgressFailed(ctx, "interrupted by service restart")
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Warn("reconciled interrupted backups", zap.Int("count", n))
		s.alertServ.Emit(ctx, domain.AlertKindWarning,
			"Interrupted backups",
			fmt.Sprintf("%d backup(s) were interrupted by a service restart and marked failed", n),
			nil)
	}
	return nil
}

// Wait blocks until all in-flight backup goroutines finish.
func (s *BackupService) Wait() {
	s.wg.Wait()
}
