package domain

import (
	"time"

	"github.com/google/uuid"
)

type BackupStatus string

const (
	BackupStatusInProgress BackupStatus = "in_progress"
	BackupStatusSuccess    BackupStatus = "success"
	BackupStatusFailed     BackupStatus = "failed"
)

type BackupOrigin string

const (
	BackupOriginManual    BackupOrigin = "manual"
	BackupOriginScheduled BackupOrigin = "scheduled"
)

// Backup is one attempted or completed dump of a database. DatabaseName
// is denormalized so the record stays presentable after the connection
// is deleted.
type Backup struct {
	ID           string       `db:"id"`
	DatabaseID   string       `db:"database_id"`
	DatabaseName string       `db:"database_name"`
	Version      string       `db:"version"`
	SizeBytes    int64        `db:"size_bytes"`
	Status       BackupStatus `db:"status"`
	FilePath     string       `db:"file_path"`
	Origin       BackupOrigin `db:"origin"`
	Duration     int          `db:"duration"` // seconds
	Error        *string      `db:"error"`
	CreatedAt    time.Time    `db:"created_at"`
}

func NewBackup(db *Database, origin BackupOrigin) *Backup {
	now := time.Now().UTC()
	return &Backup{
		ID:           uuid.New().String(),
		DatabaseID:   db.ID,
		DatabaseName: db.Name,
		Version:      now.Format("20060102-150405"),
		Status:       BackupStatusInProgress,
		Origin:       origin,
		CreatedAt:    now,
	}
}

// Complete transitions the backup into the success terminal state.
func (b *Backup) Complete(filePath string, sizeBytes int64, duration time.Duration) {
	b.Status = BackupStatusSuccess
	b.FilePath = filePath
	b.SizeBytes = sizeBytes
	b.Duration = int(duration.Seconds())
}

// Fail transitions the backup into the failed terminal state.
func (b *Backup) Fail(errMsg string, duration time.Duration) {
	b.Status = BackupStatusFailed
	b.Duration = int(duration.Seconds())
	if errMsg != "" {
		b.Error = &errMsg
	}
}

func (b *Backup) IsTerminal() bool {
	return b.Status == BackupStatusSuccess || b.Status == BackupStatusFailed
}
