package domain

import (
	"testing"
	"time"
)

func TestBackupLifecycle(t *testing.T) {
	db := NewDatabase("prod", DatabaseTypeMySQL, "h", 0, "u", "p", "d")
	b := NewBackup(db, BackupOriginManual)

	if b.Status != BackupStatusInProgress {
		t.Errorf("new backup must start in_progress, got %s", b.Status)
	}
	if b.IsTerminal() {
		t.Error("in_progress is not terminal")
	}
	if b.DatabaseName != "prod" {
		t.Errorf("expected denormalized name, got %q", b.DatabaseName)
	}
	if b.Version == "" {
		t.Error("expected a version label")
	}

	b.Complete("/backups/x.sql", 512, 3*time.Second)
	if b.Status != BackupStatusSuccess || !b.IsTerminal() {
		t.Errorf("expected terminal success, got %s", b.Status)
	}
	if b.Duration != 3 {
		t.Errorf("expected duration 3s, got %d", b.Duration)
	}
}

func TestBackupFail(t *testing.T) {
	db := NewDatabase("prod", DatabaseTypeMySQL, "h", 0, "u", "p", "d")
	b := NewBackup(db, BackupOriginScheduled)

	b.Fail("exit status 2", 90*time.Second)
	if b.Status != BackupStatusFailed || !b.IsTerminal() {
		t.Errorf("expected terminal failed, got %s", b.Status)
	}
	if b.Error == nil || *b.Error != "exit status 2" {
		t.Error("expected error message recorded")
	}
	if b.Duration != 90 {
		t.Errorf("expected duration 90s, got %d", b.Duration)
	}
}

func TestDefaultPorts(t *testing.T) {
	if got := NewDatabase("a", DatabaseTypeMySQL, "h", 0, "u", "p", "d").Port; got != 3306 {
		t.Errorf("mysql default port: got %d", got)
	}
	if got := NewDatabase("b", DatabaseTypePostgreSQL, "h", 0, "u", "p", "d").Port; got != 5432 {
		t.Errorf("postgresql default port: got %d", got)
	}
	if got := NewDatabase("c", DatabaseTypePostgreSQL, "h", 6543, "u", "p", "d").Port; got != 6543 {
		t.Errorf("explicit port must win, got %d", got)
	}
}

func TestScheduleDue(t *testing.T) {
	db := NewDatabase("prod", DatabaseTypeMySQL, "h", 0, "u", "p", "d")
	now := time.Date(2024, 1, 2, 2, 0, 30, 0, time.UTC)

	s := NewSchedule(db, "0 2 * * *", true)
	if s.Due(now) {
		t.Error("schedule without nextRun is never due")
	}

	at := time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC)
	s.NextRun = &at
	if !s.Due(now) {
		t.Error("expected due when nextRun passed")
	}

	s.Enabled = false
	if s.Due(now) {
		t.Error("disabled schedule is never due")
	}

	s.Enabled = true
	future := now.Add(time.Hour)
	s.NextRun = &future
	if s.Due(now) {
		t.Error("future nextRun is not due")
	}
}
