package dump

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"os/exec"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/safebase/safebase/internal/core/domain"
)

func (e *Executor) dumpPostgreSQL(ctx context.Context, conn *domain.Database) (string, error) {
	filePath := e.dumpFilePath(conn, "dump")

	// Custom format so pg_restore can replay it selectively.
	cmd := exec.CommandContext(ctx, lookupTool("pg_dump"),
		"-h", conn.Host,
		"-p", fmt.Sprintf("%d", conn.Port),
		"-U", conn.Username,
		"-d", conn.Database,
		"-F", "c",
		"-f", filePath,
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+conn.Password)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("pg_dump failed: %w: %s", err, stderr.String())
	}

	return filePath, nil
}

func (e *Executor) restorePostgreSQL(ctx context.Context, conn *domain.Database, filePath string) error {
	cmd := exec.CommandContext(ctx, lookupTool("pg_restore"),
		"-h", conn.Host,
		"-p", fmt.Sprintf("%d", conn.Port),
		"-U", conn.Username,
		"-d", conn.Database,
		"--clean",
		"--if-exists",
		filePath,
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+conn.Password)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pg_restore failed: %w: %s", err, stderr.String())
	}

	return nil
}

func probePostgreSQL(ctx context.Context, conn *domain.Database) error {
	dsn := (&url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(conn.Username, conn.Password),
		Host:   fmt.Sprintf("%s:%d", conn.Host, conn.Port),
		Path:   conn.Database,
	}).String()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}
