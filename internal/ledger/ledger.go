// Package ledger owns the WorkflowRun records: one audit trail per trigger
// instance. The action log is append-only; replaying it reconstructs the
// exact sequence of dispatcher calls the run made.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/domain"
	"bizflow/apps/orchestrator/internal/service/ports"
)

var ErrRunNotFound = errors.New("workflow_run_not_found")
var ErrRunClosed = errors.New("workflow_run_closed")

type Ledger struct {
	mu    sync.Mutex
	store ports.DocumentStore
	now   func() time.Time
}

func New(store ports.DocumentStore) *Ledger {
	return &Ledger{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// NewWithClock is the test constructor.
func NewWithClock(store ports.DocumentStore, now func() time.Time) *Ledger {
	return &Ledger{store: store, now: now}
}

// Open creates a run in status running with an empty action log.
func (l *Ledger) Open(companyID, configID, triggerType, triggerID string) (domain.WorkflowRun, error) {
	run := domain.WorkflowRun{
		CompanyID:        companyID,
		WorkflowConfigID: configID,
		Status:           domain.RunStatusRunning,
		StartedAt:        l.now().Format(time.RFC3339),
		TriggerType:      triggerType,
		TriggerID:        triggerID,
		ActionsPerformed: []domain.ActionRecord{},
		Results:          map[string]interface{}{},
	}
	doc, err := docstore.Encode(run)
	if err != nil {
		return domain.WorkflowRun{}, err
	}
	created, err := l.store.Create(domain.CollectionWorkflowRuns, doc, "")
	if err != nil {
		return domain.WorkflowRun{}, err
	}
	if err := docstore.Decode(created, &run); err != nil {
		return domain.WorkflowRun{}, err
	}
	return run, nil
}

func (l *Ledger) Get(runID string) (domain.WorkflowRun, error) {
	doc, ok := l.store.Get(domain.CollectionWorkflowRuns, runID)
	if !ok {
		return domain.WorkflowRun{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	var run domain.WorkflowRun
	if err := docstore.Decode(doc, &run); err != nil {
		return domain.WorkflowRun{}, err
	}
	return run, nil
}

// Append adds one action record to the run's log. This is the only mutation
// the log permits; existing entries are never rewritten or reordered.
func (l *Ledger) Append(runID string, action domain.ActionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	run, err := l.Get(runID)
	if err != nil {
		return err
	}
	if action.Timestamp == "" {
		action.Timestamp = l.now().Format(time.RFC3339)
	}
	actions := append(run.ActionsPerformed, action)
	return l.store.Update(domain.CollectionWorkflowRuns, runID, map[string]interface{}{
		"actions_performed": encodeActions(actions),
	})
}

// SetResults overwrites the run's results summary. Last write wins; results
// are never merged across updates.
func (l *Ledger) SetResults(runID string, results map[string]interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.Get(runID); err != nil {
		return err
	}
	return l.store.Update(domain.CollectionWorkflowRuns, runID, map[string]interface{}{
		"results": results,
	})
}

// Close moves the run to completed or failed. Terminal states are final:
// closing an already-closed run is an error.
func (l *Ledger) Close(runID, status string, results map[string]interface{}) error {
	if status != domain.RunStatusCompleted && status != domain.RunStatusFailed {
		return fmt.Errorf("invalid terminal status %q", status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	run, err := l.Get(runID)
	if err != nil {
		return err
	}
	if run.Status == domain.RunStatusCompleted || run.Status == domain.RunStatusFailed {
		return fmt.Errorf("%w: %s is already %s", ErrRunClosed, runID, run.Status)
	}

	partial := map[string]interface{}{
		"status":       status,
		"completed_at": l.now().Format(time.RFC3339),
	}
	if results != nil {
		partial["results"] = results
	}
	return l.store.Update(domain.CollectionWorkflowRuns, runID, partial)
}

func encodeActions(actions []domain.ActionRecord) []interface{} {
	out := make([]interface{}, 0, len(actions))
	for _, a := range actions {
		doc, err := docstore.Encode(a)
		if err != nil {
			continue
		}
		out = append(out, doc)
	}
	return out
}
