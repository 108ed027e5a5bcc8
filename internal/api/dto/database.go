package dto

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/safebase/safebase/internal/core/domain"
)

// DatabaseRequest represents the connection create/update request
type DatabaseRequest struct {
	Name     string `json:"name" binding:"required"`
	Type     string `json:"type" binding:"required,oneof=mysql postgresql"`
	Host     string `json:"host" binding:"required"`
	Port     int    `json:"port"` // 0 selects the engine default
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Database string `json:"database" binding:"required"`
}

// DatabaseResponse represents a connection; the password never leaves
// the server
type DatabaseResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Host        string     `json:"host"`
	Port        int        `json:"port"`
	Username    string     `json:"username"`
	Database    string     `json:"database"`
	Status      string     `json:"status"`
	LastBackup  *time.Time `json:"lastBackup,omitempty"`
	BackupCount int        `json:"backupCount"`
	Size        string     `json:"size"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func ToDatabaseResponse(db *domain.Database) DatabaseResponse {
	return DatabaseResponse{
		ID:          db.ID,
		Name:        db.Name,
		Type:        string(db.Type),
		Host:        db.Host,
		Port:        db.Port,
		Username:    db.Username,
		Database:    db.Database,
		Status:      string(db.Status),
		LastBackup:  db.LastBackup,
		BackupCount: db.BackupCount,
		Size:        humanize.Bytes(uint64(db.SizeBytes)),
		CreatedAt:   db.CreatedAt,
		UpdatedAt:   db.UpdatedAt,
	}
}

func ToDatabaseResponses(dbs []*domain.Database) []DatabaseResponse {
	out := make([]DatabaseResponse, len(dbs))
	for i, db := range dbs {
		out[i] = ToDatabaseResponse(db)
	}
	return out
}
