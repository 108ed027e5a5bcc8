package domain

import (
	"time"

	"github.com/google/uuid"
)

type DatabaseType string

const (
	DatabaseTypeMySQL      DatabaseType = "mysql"
	DatabaseTypePostgreSQL DatabaseType = "postgresql"
)

// DefaultPort returns the conventional port for the engine.
func (t DatabaseType) DefaultPort() int {
	if t == DatabaseTypePostgreSQL {
		return 5432
	}
	return 3306
}

func (t DatabaseType) Valid() bool {
	return t == DatabaseTypeMySQL || t == DatabaseTypePostgreSQL
}

type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusError        ConnectionStatus = "error"
)

// Database is a registered connection to a source database the system
// can back up.
type Database struct {
	ID          string           `db:"id"`
	Name        string           `db:"name"`
	Type        DatabaseType     `db:"type"`
	Host        string           `db:"host"`
	Port        int              `db:"port"`
	Username    string           `db:"username"`
	Password    string           `db:"password"`
	Database    string           `db:"db_name"`
	Status      ConnectionStatus `db:"status"`
	BackupCount int              `db:"backup_count"`
	SizeBytes   int64            `db:"size_bytes"`
	LastBackup  *time.Time       `db:"last_backup"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

func NewDatabase(name string, dbType DatabaseType, host string, port int, username, password, dbName string) *Database {
	if port == 0 {
		port = dbType.DefaultPort()
	}
	now := time.Now().UTC()
	return &Database{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      dbType,
		Host:      host,
		Port:      port,
		Username:  username,
		Password:  password,
		Database:  dbName,
		Status:    StatusDisconnected,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RecordBackup bumps the cumulative counters after a successful backup.
func (d *Database) RecordBackup(at time.Time, sizeBytes int64) {
	d.LastBackup = &at
	d.BackupCount++
	d.SizeBytes += sizeBytes
	d.UpdatedAt = at
}
