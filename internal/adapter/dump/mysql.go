package dump

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/exec"

	"github.com/go-sql-driver/mysql"
	"github.com/safebase/safebase/internal/core/domain"
)

func (e *Executor) dumpMySQL(ctx context.Context, conn *domain.Database) (string, error) {
	filePath := e.dumpFilePath(conn, "sql")

	cmd := exec.CommandContext(ctx, lookupTool("mysqldump"),
		"-h", conn.Host,
		"-P", fmt.Sprintf("%d", conn.Port),
		"-u", conn.Username,
		"--protocol=TCP",
		"--single-transaction",
		"--quick",
		"--lock-tables=false",
		conn.Database,
	)
	cmd.Env = append(os.Environ(), "MYSQL_PWD="+conn.Password)

	outputFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create dump file: %w", err)
	}
	defer outputFile.Close()

	cmd.Stdout = outputFile

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("mysqldump failed: %w: %s", err, stderr.String())
	}

	return filePath, nil
}

func (e *Executor) restoreMySQL(ctx context.Context, conn *domain.Database, filePath string) error {
	cmd := exec.CommandContext(ctx, lookupTool("mysql"),
		"-h", conn.Host,
		"-P", fmt.Sprintf("%d", conn.Port),
		"-u", conn.Username,
		"--protocol=TCP",
		conn.Database,
	)
	cmd.Env = append(os.Environ(), "MYSQL_PWD="+conn.Password)

	inputFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open dump file: %w", err)
	}
	defer inputFile.Close()

	cmd.Stdin = inputFile

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mysql restore failed: %w: %s", err, stderr.String())
	}

	return nil
}

func probeMySQL(ctx context.Context, conn *domain.Database) error {
	cfg := mysql.NewConfig()
	cfg.User = conn.Username
	cfg.Passwd = conn.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", conn.Host, conn.Port)
	cfg.DBName = conn.Database

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return fmt.Errorf("failed to open mysql connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("mysql ping failed: %w", err)
	}
	return nil
}
