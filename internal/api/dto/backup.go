package dto

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/safebase/safebase/internal/core/domain"
)

// ManualBackupRequest represents the manual backup trigger request
type ManualBackupRequest struct {
	DatabaseID string `json:"databaseId" binding:"required"`
}

// BackupResponse represents one backup attempt
type BackupResponse struct {
	ID           string    `json:"id"`
	DatabaseID   string    `json:"databaseId"`
	DatabaseName string    `json:"databaseName"`
	Version      string    `json:"version"`
	Size         string    `json:"size"`
	Status       string    `json:"status"`
	Type         string    `json:"type"`
	Duration     int       `json:"duration"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func ToBackupResponse(backup *domain.Backup) BackupResponse {
	resp := BackupResponse{
		ID:           backup.ID,
		DatabaseID:   backup.DatabaseID,
		DatabaseName: backup.DatabaseName,
		Version:      backup.Version,
		Size:         humanize.Bytes(uint64(backup.SizeBytes)),
		Status:       string(backup.Status),
		Type:         string(backup.Origin),
		Duration:     backup.Duration,
		CreatedAt:    backup.CreatedAt,
	}
	if backup.Error != nil {
		resp.Error = *backup.Error
	}
	return resp
}

func ToBackupResponses(backups []*domain.Backup) []BackupResponse {
	out := make([]BackupResponse, len(backups))
	for i, backup := range backups {
		out[i] = ToBackupResponse(backup)
	}
	return out
}
