package scheduler

import (
	"errors"
	"testing"
	"time"

	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/domain"
)

func newTestService(now string) *Service {
	parsed, _ := time.Parse(time.RFC3339, now)
	return NewService(Dependencies{
		Store: docstore.NewMemStore(),
		Now:   func() time.Time { return parsed },
	})
}

func TestScheduleTaskPersistsScheduled(t *testing.T) {
	t.Parallel()

	svc := newTestService("2026-03-10T09:00:00Z")
	executeAt, _ := time.Parse(time.RFC3339, "2026-03-11T09:00:00Z")
	task, err := svc.ScheduleTask(domain.TaskTypeLeadFollowUp, map[string]interface{}{
		"lead_id": "lead-1",
	}, executeAt, "company-1")
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if task.ID == "" {
		t.Fatalf("task id should be assigned")
	}
	if task.Status != domain.TaskStatusScheduled {
		t.Fatalf("expected scheduled, got %s", task.Status)
	}
	if task.ExecuteAt != "2026-03-11T09:00:00Z" {
		t.Fatalf("unexpected execute_at: %s", task.ExecuteAt)
	}

	view, ok := svc.GetTask(task.ID)
	if !ok || view.Scheduled == nil {
		t.Fatalf("task should be readable as one-shot")
	}
}

func TestScheduleTaskRequiresType(t *testing.T) {
	t.Parallel()

	svc := newTestService("2026-03-10T09:00:00Z")
	_, err := svc.ScheduleTask("  ", nil, time.Now(), "company-1")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if validation.Code != "invalid_task_type" {
		t.Fatalf("unexpected code: %s", validation.Code)
	}
}

func TestScheduleTaskPastTimeAccepted(t *testing.T) {
	t.Parallel()

	svc := newTestService("2026-03-10T09:00:00Z")
	past, _ := time.Parse(time.RFC3339, "2026-03-09T09:00:00Z")
	task, err := svc.ScheduleTask(domain.TaskTypeLeadFollowUp, nil, past, "company-1")
	if err != nil {
		t.Fatalf("past execute_at must be accepted: %v", err)
	}

	due := svc.DueTasks(mustParse(t, "2026-03-10T09:00:00Z"))
	if len(due) != 1 || due[0].ID != task.ID {
		t.Fatalf("past task should come due immediately, got %+v", due)
	}
}

func TestCancelTaskIdempotent(t *testing.T) {
	t.Parallel()

	svc := newTestService("2026-03-10T09:00:00Z")
	task, err := svc.ScheduleTask(domain.TaskTypeLeadFollowUp, nil, mustParse(t, "2026-03-11T09:00:00Z"), "company-1")
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	first := svc.CancelTask(task.ID)
	if first.Status != domain.TaskStatusCancelled {
		t.Fatalf("expected cancelled, got %s", first.Status)
	}
	second := svc.CancelTask(task.ID)
	if second.Status != domain.TaskStatusCancelled {
		t.Fatalf("second cancel must also report cancelled, got %s", second.Status)
	}

	if got := svc.CancelTask("missing"); got.Status != domain.TaskStatusNotFound {
		t.Fatalf("unknown id must report not_found, got %s", got.Status)
	}
}

func TestCancelledTaskNeverComesDue(t *testing.T) {
	t.Parallel()

	svc := newTestService("2026-03-10T09:00:00Z")
	task, err := svc.ScheduleTask(domain.TaskTypeLeadFollowUp, nil, mustParse(t, "2026-03-09T09:00:00Z"), "company-1")
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	svc.CancelTask(task.ID)

	if due := svc.DueTasks(mustParse(t, "2026-03-10T09:00:00Z")); len(due) != 0 {
		t.Fatalf("cancelled task must not be due, got %+v", due)
	}
}

func TestExecuteOneShotTaskConsumed(t *testing.T) {
	t.Parallel()

	svc := newTestService("2026-03-10T09:00:00Z")
	task, err := svc.ScheduleTask(domain.TaskTypeLeadFollowUp, nil, mustParse(t, "2026-03-09T09:00:00Z"), "company-1")
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	result := svc.ExecuteTask(task.ID)
	if result.Status != domain.TaskStatusExecuted {
		t.Fatalf("expected executed, got %s", result.Status)
	}
	if result.ExecutedAt == nil || *result.ExecutedAt != "2026-03-10T09:00:00Z" {
		t.Fatalf("unexpected executed_at: %v", result.ExecutedAt)
	}

	if due := svc.DueTasks(mustParse(t, "2026-03-10T10:00:00Z")); len(due) != 0 {
		t.Fatalf("executed one-shot must not come due again, got %+v", due)
	}
}

func TestExecuteRecurringTaskAdvances(t *testing.T) {
	t.Parallel()

	svc := newTestService("2026-03-10T09:30:00Z")
	task, err := svc.ScheduleRecurringTask(domain.TaskTypeContentGeneration, nil, domain.ScheduleSpec{
		Frequency: domain.FrequencyHourly,
	}, "company-1")
	if err != nil {
		t.Fatalf("schedule recurring failed: %v", err)
	}
	if task.NextExecutionAt != "2026-03-10T10:00:00Z" {
		t.Fatalf("unexpected initial next_execution_at: %s", task.NextExecutionAt)
	}

	result := svc.ExecuteTask(task.ID)
	if result.Status != domain.TaskStatusExecuted {
		t.Fatalf("expected executed result, got %s", result.Status)
	}
	if result.NextExecutionAt == nil || *result.NextExecutionAt != "2026-03-10T10:00:00Z" {
		t.Fatalf("unexpected recomputed next: %v", result.NextExecutionAt)
	}

	view, ok := svc.GetTask(task.ID)
	if !ok || view.Recurring == nil {
		t.Fatalf("recurring task must survive execution")
	}
	if view.Recurring.Status != domain.TaskStatusScheduled {
		t.Fatalf("recurring task must stay scheduled, got %s", view.Recurring.Status)
	}
	if view.Recurring.LastExecutedAt == nil || *view.Recurring.LastExecutedAt != "2026-03-10T09:30:00Z" {
		t.Fatalf("unexpected last_executed_at: %v", view.Recurring.LastExecutedAt)
	}
}

func TestScheduleRecurringInvalidSchedule(t *testing.T) {
	t.Parallel()

	svc := newTestService("2026-03-10T09:00:00Z")
	_, err := svc.ScheduleRecurringTask(domain.TaskTypeContentGeneration, nil, domain.ScheduleSpec{
		Frequency: domain.FrequencyCron,
		Expr:      "bad expr",
	}, "company-1")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if validation.Code != "invalid_schedule" {
		t.Fatalf("unexpected code: %s", validation.Code)
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	t.Parallel()

	svc := newTestService("2026-03-10T09:00:00Z")
	task, err := svc.ScheduleTask(domain.TaskTypeLeadFollowUp, map[string]interface{}{"n": 1}, mustParse(t, "2026-03-11T09:00:00Z"), "company-1")
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}

	newAt := mustParse(t, "2026-03-12T09:00:00Z")
	updated, err := svc.UpdateTask(task.ID, nil, &newAt, "")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ExecuteAt != "2026-03-12T09:00:00Z" {
		t.Fatalf("unexpected execute_at: %s", updated.ExecuteAt)
	}
	if updated.Status != domain.TaskStatusScheduled {
		t.Fatalf("untouched status must survive, got %s", updated.Status)
	}

	if _, err := svc.UpdateTask("missing", nil, nil, ""); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestUpdateRecurringTaskNewScheduleRecomputesNext(t *testing.T) {
	t.Parallel()

	svc := newTestService("2026-03-10T09:30:00Z")
	task, err := svc.ScheduleRecurringTask(domain.TaskTypeContentGeneration, nil, domain.ScheduleSpec{
		Frequency: domain.FrequencyHourly,
	}, "company-1")
	if err != nil {
		t.Fatalf("schedule recurring failed: %v", err)
	}

	updated, err := svc.UpdateRecurringTask(task.ID, nil, &domain.ScheduleSpec{
		Frequency: domain.FrequencyDaily,
		StartAt:   "2026-01-01T07:00:00Z",
	}, "")
	if err != nil {
		t.Fatalf("update recurring failed: %v", err)
	}
	if updated.NextExecutionAt != "2026-03-11T07:00:00Z" {
		t.Fatalf("expected recomputed next, got %s", updated.NextExecutionAt)
	}
	if updated.Schedule.Frequency != domain.FrequencyDaily {
		t.Fatalf("schedule spec must be replaced, got %+v", updated.Schedule)
	}
}

func TestListTasksFilters(t *testing.T) {
	t.Parallel()

	svc := newTestService("2026-03-10T09:00:00Z")
	if _, err := svc.ScheduleTask(domain.TaskTypeLeadFollowUp, nil, mustParse(t, "2026-03-11T09:00:00Z"), "company-1"); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if _, err := svc.ScheduleTask(domain.TaskTypeReviewRequest, nil, mustParse(t, "2026-03-11T09:00:00Z"), "company-1"); err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if _, err := svc.ScheduleRecurringTask(domain.TaskTypeContentGeneration, nil, domain.ScheduleSpec{
		Frequency: domain.FrequencyDaily,
	}, "company-2"); err != nil {
		t.Fatalf("schedule recurring failed: %v", err)
	}

	all := svc.ListTasks("", "", "")
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}
	followUps := svc.ListScheduledTasks("company-1", domain.TaskTypeLeadFollowUp, "")
	if len(followUps) != 1 {
		t.Fatalf("expected 1 follow-up task, got %d", len(followUps))
	}
	company2 := svc.ListTasks("company-2", "", "")
	if len(company2) != 1 || company2[0].Recurring == nil {
		t.Fatalf("expected company-2's recurring task, got %+v", company2)
	}
}

func TestDueTasksIncludesRecurring(t *testing.T) {
	t.Parallel()

	svc := newTestService("2026-03-10T09:30:00Z")
	recurring, err := svc.ScheduleRecurringTask(domain.TaskTypeContentGeneration, nil, domain.ScheduleSpec{
		Frequency: domain.FrequencyHourly,
	}, "company-1")
	if err != nil {
		t.Fatalf("schedule recurring failed: %v", err)
	}

	if due := svc.DueTasks(mustParse(t, "2026-03-10T09:45:00Z")); len(due) != 0 {
		t.Fatalf("task must not be due before next_execution_at, got %+v", due)
	}

	due := svc.DueTasks(mustParse(t, "2026-03-10T10:00:00Z"))
	if len(due) != 1 {
		t.Fatalf("expected 1 due task, got %d", len(due))
	}
	if due[0].ID != recurring.ID || !due[0].Recurring {
		t.Fatalf("unexpected due task: %+v", due[0])
	}
}

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q failed: %v", value, err)
	}
	return parsed
}
