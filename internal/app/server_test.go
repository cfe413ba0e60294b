package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bizflow/apps/orchestrator/internal/config"
	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/domain"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{Host: "127.0.0.1", Port: "0", DataDir: t.TempDir()}
	cfg.Executor.PollInterval = time.Hour
	cfg.Executor.ExecuteTimeout = time.Minute
	srv := newServer(cfg, docstore.NewMemStore())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestVersion(t *testing.T) {
	srv := newTestServer(t)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["version"] == "" {
		t.Fatalf("version must be set")
	}
}

func TestProcessLeadAcknowledgesPending(t *testing.T) {
	srv := newTestServer(t)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/workflows/leads/lead-1/process", nil))
	if w.Code != http.StatusAccepted {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["status"] != "pending" {
		t.Fatalf("expected pending ack, got %+v", body)
	}
}

func TestProcessSaleAcknowledgesPending(t *testing.T) {
	srv := newTestServer(t)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/workflows/sales/sale-1/process", nil))
	if w.Code != http.StatusAccepted {
		t.Fatalf("unexpected status: %d", w.Code)
	}
}

func TestProcessFollowUpValidatesBody(t *testing.T) {
	srv := newTestServer(t)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/workflows/leads/lead-1/follow-up",
		strings.NewReader(`{"follow_up_number":0}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", w.Code)
	}
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	createBody := `{
		"task_type": "lead_followup",
		"params": {"lead_id": "lead-1"},
		"execute_at": "2099-01-01T09:00:00Z",
		"company_id": "company-1"
	}`
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, httptest.NewRequest(http.MethodPost, "/tasks/", strings.NewReader(createBody)))
	if w1.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", w1.Code, w1.Body.String())
	}
	var created domain.ScheduledTask
	if err := json.Unmarshal(w1.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if created.ID == "" || created.Status != domain.TaskStatusScheduled {
		t.Fatalf("unexpected created task: %+v", created)
	}

	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/tasks/"+created.ID, nil))
	if w2.Code != http.StatusOK {
		t.Fatalf("get status=%d", w2.Code)
	}

	w3 := httptest.NewRecorder()
	handler.ServeHTTP(w3, httptest.NewRequest(http.MethodDelete, "/tasks/"+created.ID, nil))
	if w3.Code != http.StatusOK {
		t.Fatalf("cancel status=%d", w3.Code)
	}
	var cancelled domain.TaskStatusResult
	if err := json.Unmarshal(w3.Body.Bytes(), &cancelled); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if cancelled.Status != domain.TaskStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	w4 := httptest.NewRecorder()
	handler.ServeHTTP(w4, httptest.NewRequest(http.MethodDelete, "/tasks/missing", nil))
	if w4.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown task, got %d", w4.Code)
	}
}

func TestCreateRecurringTaskOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	w := httptest.NewRecorder()
	body := `{
		"task_type": "content_generation",
		"schedule": {"frequency": "daily", "start_at": "2026-01-01T07:00:00Z"},
		"company_id": "company-1"
	}`
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tasks/recurring", strings.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	var created domain.RecurringTask
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if created.NextExecutionAt == "" {
		t.Fatalf("recurring task must have next_execution_at: %+v", created)
	}
}

func TestCreateRecurringTaskInvalidSchedule(t *testing.T) {
	srv := newTestServer(t)
	w := httptest.NewRecorder()
	body := `{
		"task_type": "content_generation",
		"schedule": {"frequency": "cron", "expr": "bad"},
		"company_id": "company-1"
	}`
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/tasks/recurring", strings.NewReader(body)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid schedule, got %d body=%s", w.Code, w.Body.String())
	}
	var errBody domain.APIErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &errBody); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if errBody.Error.Code != "invalid_schedule" {
		t.Fatalf("unexpected error code: %s", errBody.Error.Code)
	}
}

func TestGetRunNotFound(t *testing.T) {
	srv := newTestServer(t)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/workflows/runs/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestInboundStateDisabledByDefault(t *testing.T) {
	srv := newTestServer(t)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/inbound/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	var state inboundRuntimeState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if state.Enabled || state.Connected {
		t.Fatalf("inbound listener must be off without a configured url: %+v", state)
	}
}
