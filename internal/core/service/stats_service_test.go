package service

import (
	"context"
	"errors"
	"testing"

	"github.com/safebase/safebase/internal/core/domain"
)

func TestDashboardStats(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	conn := env.seedConnection(t, "prod_mysql")

	// One success, one failure.
	if _, err := env.backupService.Run(ctx, conn.ID, domain.BackupOriginManual); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	env.backupService.Wait()

	env.engine.dumpErr = errors.New("dump failed")
	if _, err := env.backupService.Run(ctx, conn.ID, domain.BackupOriginManual); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	env.backupService.Wait()

	stats, err := env.statsService.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}

	if stats.TotalDatabases != 1 {
		t.Errorf("expected 1 database, got %d", stats.TotalDatabases)
	}
	if stats.TotalBackups != 2 {
		t.Errorf("expected 2 backups, got %d", stats.TotalBackups)
	}
	if stats.SuccessRate != 50 {
		t.Errorf("expected 50%% success rate, got %v", stats.SuccessRate)
	}
	if stats.RunningBackups != 0 {
		t.Errorf("expected 0 running, got %d", stats.RunningBackups)
	}
	if stats.TotalSizeBytes != 2048 {
		t.Errorf("expected total size 2048, got %d", stats.TotalSizeBytes)
	}
	if stats.UnreadAlerts != 2 {
		t.Errorf("expected 2 unread alerts, got %d", stats.UnreadAlerts)
	}
	if len(stats.RecentBackups) != 2 {
		t.Errorf("expected 2 recent backups, got %d", len(stats.RecentBackups))
	}
	if len(stats.RecentAlerts) != 2 {
		t.Errorf("expected 2 recent alerts, got %d", len(stats.RecentAlerts))
	}
}

func TestDashboardStatsEmpty(t *testing.T) {
	env := setupTestEnv(t)

	stats, err := env.statsService.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if stats.SuccessRate != 0 {
		t.Errorf("success rate with no terminal backups must be 0, got %v", stats.SuccessRate)
	}
	if stats.TotalBackups != 0 || stats.TotalDatabases != 0 {
		t.Error("expected zero counts on empty store")
	}
}
