// Package dump shells out to the native client tools (mysqldump, mysql,
// pg_dump, pg_restore) to move data in and out of source databases, and
// probes connectivity through the matching SQL drivers.
package dump

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/safebase/safebase/internal/core/domain"
)

// Result describes a finished dump.
type Result struct {
	FilePath  string
	SizeBytes int64
}

type Executor struct {
	backupDir    string
	probeTimeout time.Duration
}

func NewExecutor(backupDir string, probeTimeout time.Duration) *Executor {
	return &Executor{
		backupDir:    backupDir,
		probeTimeout: probeTimeout,
	}
}

// Dump writes a full dump of the connection's database into the backup
// directory and returns the file path and size.
func (e *Executor) Dump(ctx context.Context, conn *domain.Database) (*Result, error) {
	if err := os.MkdirAll(e.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	var filePath string
	var err error

	switch conn.Type {
	case domain.DatabaseTypeMySQL:
		filePath, err = e.dumpMySQL(ctx, conn)
	case domain.DatabaseTypePostgreSQL:
		filePath, err = e.dumpPostgreSQL(ctx, conn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", conn.Type)
	}
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat dump file: %w", err)
	}

	return &Result{FilePath: filePath, SizeBytes: info.Size()}, nil
}

// Restore replays a previously written dump file into the connection's
// database.
func (e *Executor) Restore(ctx context.Context, conn *domain.Database, filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("dump file unavailable: %w", err)
	}

	switch conn.Type {
	case domain.DatabaseTypeMySQL:
		return e.restoreMySQL(ctx, conn, filePath)
	case domain.DatabaseTypePostgreSQL:
		return e.restorePostgreSQL(ctx, conn, filePath)
	default:
		return fmt.Errorf("unsupported database type: %s", conn.Type)
	}
}

// Probe opens a short-lived driver connection and pings the server.
func (e *Executor) Probe(ctx context.Context, conn *domain.Database) error {
	ctx, cancel := context.WithTimeout(ctx, e.probeTimeout)
	defer cancel()

	switch conn.Type {
	case domain.DatabaseTypeMySQL:
		return probeMySQL(ctx, conn)
	case domain.DatabaseTypePostgreSQL:
		return probePostgreSQL(ctx, conn)
	default:
		return fmt.Errorf("unsupported database type: %s", conn.Type)
	}
}

func (e *Executor) dumpFilePath(conn *domain.Database, ext string) string {
	timestamp := time.Now().Format("20060102_150405")
	fileName := fmt.Sprintf("%s_%s.%s", conn.Name, timestamp, ext)
	return filepath.Join(e.backupDir, fileName)
}

// lookupTool resolves a client binary, preferring well-known install
// locations over PATH.
func lookupTool(name string) string {
	candidates := []string{
		"/usr/local/bin/" + name,
		"/usr/bin/" + name,
	}
	for _, candidate := range candidates {
		if _, err := exec.LookPath(candidate); err == nil {
			return candidate
		}
	}
	return name
}
