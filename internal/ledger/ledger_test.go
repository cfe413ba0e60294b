package ledger

import (
	"errors"
	"testing"
	"time"

	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/domain"
)

func fixedClock(value string) func() time.Time {
	parsed, _ := time.Parse(time.RFC3339, value)
	return func() time.Time { return parsed }
}

func TestOpenCreatesRunningRun(t *testing.T) {
	t.Parallel()

	l := NewWithClock(docstore.NewMemStore(), fixedClock("2026-03-10T09:00:00Z"))
	run, err := l.Open("company-1", "config-1", domain.TriggerTypeNewLead, "lead-1")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if run.ID == "" {
		t.Fatalf("run id should be assigned")
	}
	if run.Status != domain.RunStatusRunning {
		t.Fatalf("expected running, got %s", run.Status)
	}
	if run.StartedAt != "2026-03-10T09:00:00Z" {
		t.Fatalf("unexpected started_at: %s", run.StartedAt)
	}
	if len(run.ActionsPerformed) != 0 {
		t.Fatalf("new run must have an empty action log")
	}
	if run.CompletedAt != nil {
		t.Fatalf("new run must not have completed_at")
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	t.Parallel()

	l := NewWithClock(docstore.NewMemStore(), fixedClock("2026-03-10T09:00:00Z"))
	run, err := l.Open("company-1", "config-1", domain.TriggerTypeNewLead, "lead-1")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	for _, actionType := range []string{"send_email", "schedule_follow_up", "schedule_follow_up"} {
		if err := l.Append(run.ID, domain.ActionRecord{Type: actionType}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	got, err := l.Get(run.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.ActionsPerformed) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(got.ActionsPerformed))
	}
	if got.ActionsPerformed[0].Type != "send_email" ||
		got.ActionsPerformed[1].Type != "schedule_follow_up" ||
		got.ActionsPerformed[2].Type != "schedule_follow_up" {
		t.Fatalf("unexpected action order: %+v", got.ActionsPerformed)
	}
	if got.ActionsPerformed[0].Timestamp == "" {
		t.Fatalf("append must stamp the action")
	}
}

func TestSetResultsLastWriteWins(t *testing.T) {
	t.Parallel()

	l := NewWithClock(docstore.NewMemStore(), fixedClock("2026-03-10T09:00:00Z"))
	run, err := l.Open("company-1", "config-1", domain.TriggerTypeNewLead, "lead-1")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if err := l.SetResults(run.ID, map[string]interface{}{"message_sent": true, "follow_ups_scheduled": 2}); err != nil {
		t.Fatalf("set results failed: %v", err)
	}
	if err := l.SetResults(run.ID, map[string]interface{}{"reply_sent": true}); err != nil {
		t.Fatalf("set results failed: %v", err)
	}

	got, err := l.Get(run.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if _, stale := got.Results["message_sent"]; stale {
		t.Fatalf("results must be overwritten, not merged: %+v", got.Results)
	}
	if got.Results["reply_sent"] != true {
		t.Fatalf("expected reply_sent=true, got %+v", got.Results)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	t.Parallel()

	l := NewWithClock(docstore.NewMemStore(), fixedClock("2026-03-10T09:00:00Z"))
	run, err := l.Open("company-1", "config-1", domain.TriggerTypeNewLead, "lead-1")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if err := l.Close(run.ID, domain.RunStatusCompleted, map[string]interface{}{"ok": true}); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	got, err := l.Get(run.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != domain.RunStatusCompleted {
		t.Fatalf("expected completed, got %s", got.Status)
	}
	if got.CompletedAt == nil || *got.CompletedAt == "" {
		t.Fatalf("completed_at must be set")
	}

	err = l.Close(run.ID, domain.RunStatusFailed, nil)
	if !errors.Is(err, ErrRunClosed) {
		t.Fatalf("expected ErrRunClosed on second close, got %v", err)
	}
}

func TestCloseRejectsNonTerminalStatus(t *testing.T) {
	t.Parallel()

	l := NewWithClock(docstore.NewMemStore(), fixedClock("2026-03-10T09:00:00Z"))
	run, err := l.Open("company-1", "config-1", domain.TriggerTypeNewLead, "lead-1")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := l.Close(run.ID, domain.RunStatusRunning, nil); err == nil {
		t.Fatalf("expected error for non-terminal close status")
	}
}

func TestGetUnknownRun(t *testing.T) {
	t.Parallel()

	l := New(docstore.NewMemStore())
	if _, err := l.Get("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}
