package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	backupDir := t.TempDir()
	path := writeConfig(t, `
backup_dir: `+backupDir+`
jwt_secret_key: test-secret
api_port: 9000
log_level: debug
schedule_interval: 30s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BackupDir != backupDir {
		t.Errorf("backup_dir: got %s", cfg.BackupDir)
	}
	if cfg.APIPort != 9000 {
		t.Errorf("api_port: got %d", cfg.APIPort)
	}
	if cfg.ScheduleInterval != 30*time.Second {
		t.Errorf("schedule_interval: got %s", cfg.ScheduleInterval)
	}
	if cfg.ListenAddr() != "0.0.0.0:9000" {
		t.Errorf("listen addr: got %s", cfg.ListenAddr())
	}
}

func TestLoadDefaults(t *testing.T) {
	backupDir := t.TempDir()
	path := writeConfig(t, `
backup_dir: `+backupDir+`
jwt_secret_key: test-secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIPort != DefaultAPIPort {
		t.Errorf("expected default port, got %d", cfg.APIPort)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("expected default log level, got %s", cfg.LogLevel)
	}
	if cfg.JWTTokenTTL != DefaultJWTTokenTTL {
		t.Errorf("expected default token ttl, got %s", cfg.JWTTokenTTL)
	}
	if cfg.DumpTimeout != DefaultDumpTimeout {
		t.Errorf("expected default dump timeout, got %s", cfg.DumpTimeout)
	}
}

func TestLoadValidation(t *testing.T) {
	backupDir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"missing backup_dir", "jwt_secret_key: s\n"},
		{"missing jwt secret", "backup_dir: " + backupDir + "\n"},
		{"nonexistent backup_dir", "backup_dir: /no/such/dir\njwt_secret_key: s\n"},
		{"bad port", "backup_dir: " + backupDir + "\njwt_secret_key: s\napi_port: 99999\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
