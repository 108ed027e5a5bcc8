package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/safebase/safebase/internal/adapter/dump"
	"github.com/safebase/safebase/internal/api/dto"
	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/service"
	"github.com/safebase/safebase/internal/infrastructure/sqlite"
	"github.com/safebase/safebase/pkg/config"
	"go.uber.org/zap"
)

// stubEngine replaces the dump executor so requests never shell out.
type stubEngine struct {
	mu        sync.Mutex
	dumpErr   error
	dumpDelay time.Duration
	probeErr  error
}

func (e *stubEngine) Dump(ctx context.Context, conn *domain.Database) (*dump.Result, error) {
	e.mu.Lock()
	delay, err := e.dumpDelay, e.dumpErr
	e.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &dump.Result{FilePath: "/backups/test.sql", SizeBytes: 1024}, nil
}

func (e *stubEngine) Restore(ctx context.Context, conn *domain.Database, filePath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dumpErr
}

func (e *stubEngine) Probe(ctx context.Context, conn *domain.Database) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.probeErr
}

// testEnv holds the full stack behind an httptest-driven router
type testEnv struct {
	server  *Server
	engine  *stubEngine
	backups *service.BackupService
	token   string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := zap.NewNop()
	engine := &stubEngine{}

	userRepo := sqlite.NewUserRepository(db)
	databaseRepo := sqlite.NewDatabaseRepository(db)
	backupRepo := sqlite.NewBackupRepository(db)
	scheduleRepo := sqlite.NewScheduleRepository(db)
	alertRepo := sqlite.NewAlertRepository(db)

	authService := service.NewAuthService(userRepo, "test-secret", time.Hour)
	alertService := service.NewAlertService(alertRepo, log)
	databaseService := service.NewDatabaseService(databaseRepo, scheduleRepo, engine, log)
	backupService := service.NewBackupService(backupRepo, databaseRepo, alertService, engine, time.Minute, log)
	scheduleService := service.NewScheduleService(scheduleRepo, databaseRepo, backupService, log)
	statsService := service.NewStatsService(databaseRepo, backupRepo, alertRepo)

	cfg := &config.Config{APIHost: "127.0.0.1", APIPort: 8080}
	server := NewServer(cfg, authService, databaseService, backupService, scheduleService, alertService, statsService, log)

	env := &testEnv{server: server, engine: engine, backups: backupService}

	// Every protected route needs a session.
	resp := env.request(t, http.MethodPost, "/auth/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "secret1",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", resp.Code, resp.Body.String())
	}
	var session dto.SessionResponse
	decode(t, resp, &session)
	env.token = session.Token

	return env
}

func (env *testEnv) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if env.token != "" {
		req.Header.Set("Authorization", "Bearer "+env.token)
	}

	w := httptest.NewRecorder()
	env.server.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response: %v\nBody: %s", err, w.Body.String())
	}
}

func (env *testEnv) createConnection(t *testing.T, name string) dto.DatabaseResponse {
	t.Helper()

	resp := env.request(t, http.MethodPost, "/databases", map[string]interface{}{
		"name":     name,
		"type":     "mysql",
		"host":     "mysql",
		"port":     3306,
		"username": "testuser",
		"password": "x",
		"database": "testdb",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create connection failed: %d %s", resp.Code, resp.Body.String())
	}
	var conn dto.DatabaseResponse
	decode(t, resp, &conn)
	return conn
}

func TestAuthFlow(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.request(t, http.MethodGet, "/auth/me", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("me failed: %d", resp.Code)
	}
	var user dto.UserResponse
	decode(t, resp, &user)
	if user.Email != "test@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}

	// The same email cannot register twice.
	resp = env.request(t, http.MethodPost, "/auth/register", map[string]string{
		"name": "Again", "email": "test@example.com", "password": "secret1",
	})
	if resp.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", resp.Code)
	}

	resp = env.request(t, http.MethodPost, "/auth/login", map[string]string{
		"email": "test@example.com", "password": "wrong",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", resp.Code)
	}
	var errResp dto.ErrorResponse
	decode(t, resp, &errResp)
	if errResp.Error == "" {
		t.Error("error body must carry an error string")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupTestEnv(t)
	env.token = ""

	for _, path := range []string{"/databases", "/backups", "/schedules", "/alerts", "/stats"} {
		resp := env.request(t, http.MethodGet, path, nil)
		if resp.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401 without token, got %d", path, resp.Code)
		}
	}

	env.token = "not-a-valid-token"
	resp := env.request(t, http.MethodGet, "/databases", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with garbage token, got %d", resp.Code)
	}
}

func TestDatabaseEndpoints(t *testing.T) {
	env := setupTestEnv(t)

	conn := env.createConnection(t, "prod_mysql")
	if conn.Status != "connected" {
		t.Errorf("expected connected after probe, got %s", conn.Status)
	}
	if conn.Port != 3306 {
		t.Errorf("expected port 3306, got %d", conn.Port)
	}

	// The password must never appear on the wire.
	resp := env.request(t, http.MethodGet, "/databases", nil)
	if bytes.Contains(resp.Body.Bytes(), []byte(`"password"`)) {
		t.Error("password leaked in list response")
	}
	var list []dto.DatabaseResponse
	decode(t, resp, &list)
	if len(list) != 1 || list[0].Name != "prod_mysql" {
		t.Fatalf("unexpected list: %s", resp.Body.String())
	}

	resp = env.request(t, http.MethodPut, "/databases/"+conn.ID, map[string]interface{}{
		"name": "renamed", "type": "mysql", "host": "mysql",
		"username": "testuser", "password": "x", "database": "testdb",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", resp.Code, resp.Body.String())
	}
	var updated dto.DatabaseResponse
	decode(t, resp, &updated)
	if updated.Name != "renamed" {
		t.Errorf("expected renamed, got %s", updated.Name)
	}

	resp = env.request(t, http.MethodDelete, "/databases/"+conn.ID, nil)
	if resp.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.Code)
	}

	resp = env.request(t, http.MethodDelete, "/databases/"+conn.ID, nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", resp.Code)
	}
}

func TestDatabaseValidation(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.request(t, http.MethodPost, "/databases", map[string]interface{}{
		"name": "bad", "type": "oracle", "host": "h",
		"username": "u", "password": "p", "database": "d",
	})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported engine, got %d", resp.Code)
	}
}

func TestManualBackupConflict(t *testing.T) {
	env := setupTestEnv(t)
	conn := env.createConnection(t, "prod_mysql")
	env.engine.dumpDelay = 200 * time.Millisecond

	resp := env.request(t, http.MethodPost, "/backups/manual", map[string]string{"databaseId": conn.ID})
	if resp.Code != http.StatusCreated {
		t.Fatalf("manual backup failed: %d %s", resp.Code, resp.Body.String())
	}
	var backup dto.BackupResponse
	decode(t, resp, &backup)
	if backup.Status != "in_progress" {
		t.Errorf("expected in_progress, got %s", backup.Status)
	}
	if backup.Type != "manual" {
		t.Errorf("expected manual type, got %s", backup.Type)
	}

	resp = env.request(t, http.MethodPost, "/backups/manual", map[string]string{"databaseId": conn.ID})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 while in flight, got %d", resp.Code)
	}

	env.backups.Wait()

	resp = env.request(t, http.MethodGet, "/backups?databaseId="+conn.ID, nil)
	var backups []dto.BackupResponse
	decode(t, resp, &backups)
	if len(backups) != 1 {
		t.Fatalf("rejected trigger must not create a record, got %d", len(backups))
	}
	if backups[0].Status != "success" {
		t.Errorf("expected success after completion, got %s", backups[0].Status)
	}
}

func TestFailedBackupRaisesAlert(t *testing.T) {
	env := setupTestEnv(t)
	conn := env.createConnection(t, "prod_mysql")
	env.engine.dumpErr = context.DeadlineExceeded

	resp := env.request(t, http.MethodPost, "/backups/manual", map[string]string{"databaseId": conn.ID})
	if resp.Code != http.StatusCreated {
		t.Fatalf("manual backup failed: %d", resp.Code)
	}
	env.backups.Wait()

	resp = env.request(t, http.MethodGet, "/alerts", nil)
	var alerts []dto.AlertResponse
	decode(t, resp, &alerts)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Type != "error" {
		t.Errorf("expected error alert, got %s", alerts[0].Type)
	}
	if alerts[0].DatabaseName == nil || *alerts[0].DatabaseName != "prod_mysql" {
		t.Error("alert must reference the connection name")
	}
	if alerts[0].Read {
		t.Error("new alert must be unread")
	}

	resp = env.request(t, http.MethodGet, "/alerts/unread-count", nil)
	var count dto.UnreadCountResponse
	decode(t, resp, &count)
	if count.Count != 1 {
		t.Errorf("expected unread count 1, got %d", count.Count)
	}
}

func TestAlertReadEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	conn := env.createConnection(t, "prod_mysql")
	env.engine.dumpErr = context.DeadlineExceeded

	for i := 0; i < 2; i++ {
		env.request(t, http.MethodPost, "/backups/manual", map[string]string{"databaseId": conn.ID})
		env.backups.Wait()
	}

	resp := env.request(t, http.MethodGet, "/alerts", nil)
	var alerts []dto.AlertResponse
	decode(t, resp, &alerts)
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}

	resp = env.request(t, http.MethodPut, "/alerts/"+alerts[0].ID+"/read", nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("mark read failed: %d", resp.Code)
	}

	resp = env.request(t, http.MethodGet, "/alerts/unread-count", nil)
	var count dto.UnreadCountResponse
	decode(t, resp, &count)
	if count.Count != 1 {
		t.Errorf("expected 1 unread, got %d", count.Count)
	}

	resp = env.request(t, http.MethodPut, "/alerts/read-all", nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("mark all read failed: %d", resp.Code)
	}

	resp = env.request(t, http.MethodGet, "/alerts/unread-count", nil)
	decode(t, resp, &count)
	if count.Count != 0 {
		t.Errorf("expected 0 unread after read-all, got %d", count.Count)
	}
}

func TestScheduleEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	conn := env.createConnection(t, "prod_mysql")

	resp := env.request(t, http.MethodPost, "/schedules", map[string]interface{}{
		"databaseId":     conn.ID,
		"cronExpression": "0 2 * * *",
		"enabled":        true,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create schedule failed: %d %s", resp.Code, resp.Body.String())
	}
	var schedule dto.ScheduleResponse
	decode(t, resp, &schedule)
	if schedule.NextRun == nil {
		t.Fatal("enabled schedule must expose nextRun")
	}
	if schedule.DatabaseName != "prod_mysql" {
		t.Errorf("expected databaseName, got %q", schedule.DatabaseName)
	}

	// Disabling hides nextRun from readers.
	resp = env.request(t, http.MethodPut, "/schedules/"+schedule.ID, map[string]interface{}{"enabled": false})
	if resp.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", resp.Code, resp.Body.String())
	}
	decode(t, resp, &schedule)
	if schedule.NextRun != nil {
		t.Error("disabled schedule must surface nextRun as null")
	}

	// Execute-now triggers a manual backup regardless of enablement.
	resp = env.request(t, http.MethodPost, "/schedules/"+schedule.ID+"/execute", nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("execute failed: %d %s", resp.Code, resp.Body.String())
	}
	var backup dto.BackupResponse
	decode(t, resp, &backup)
	if backup.Type != "manual" {
		t.Errorf("execute-now must record manual origin, got %s", backup.Type)
	}
	env.backups.Wait()

	resp = env.request(t, http.MethodDelete, "/schedules/"+schedule.ID, nil)
	if resp.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.Code)
	}

	resp = env.request(t, http.MethodPost, "/schedules", map[string]interface{}{
		"databaseId":     conn.ID,
		"cronExpression": "every day at noon",
	})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid cron, got %d", resp.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	conn := env.createConnection(t, "prod_mysql")

	env.request(t, http.MethodPost, "/backups/manual", map[string]string{"databaseId": conn.ID})
	env.backups.Wait()

	resp := env.request(t, http.MethodGet, "/stats", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("stats failed: %d %s", resp.Code, resp.Body.String())
	}
	var stats dto.StatsResponse
	decode(t, resp, &stats)
	if stats.TotalDatabases != 1 || stats.TotalBackups != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.SuccessRate != 100 {
		t.Errorf("expected 100%% success rate, got %v", stats.SuccessRate)
	}
	if len(stats.RecentBackups) != 1 {
		t.Errorf("expected 1 recent backup, got %d", len(stats.RecentBackups))
	}
}

func TestRestoreEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	conn := env.createConnection(t, "prod_mysql")

	resp := env.request(t, http.MethodPost, "/backups/manual", map[string]string{"databaseId": conn.ID})
	var backup dto.BackupResponse
	decode(t, resp, &backup)
	env.backups.Wait()

	resp = env.request(t, http.MethodPost, "/backups/"+backup.ID+"/restore", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("restore failed: %d %s", resp.Code, resp.Body.String())
	}

	resp = env.request(t, http.MethodPost, "/backups/missing/restore", nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown backup, got %d", resp.Code)
	}
}
