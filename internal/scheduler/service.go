// Package scheduler keeps the registry of one-shot and recurring tasks.
// The registry lives in the document store rather than a process-global
// map, so a restart keeps pending work and every mutation goes through one
// lock. A poll loop (internal/app) calls DueTasks/ExecuteTask; this package
// itself never runs task payloads.
package scheduler

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/domain"
	"bizflow/apps/orchestrator/internal/schedule"
	"bizflow/apps/orchestrator/internal/service/ports"
)

var ErrTaskNotFound = errors.New("task_not_found")

type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

type Dependencies struct {
	Store ports.DocumentStore
	Now   func() time.Time
}

type Service struct {
	// mu serializes read-modify-write sequences on task documents so a
	// concurrent cancel and execute of the same task cannot lose an update.
	mu   sync.Mutex
	deps Dependencies
}

func NewService(deps Dependencies) *Service {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{deps: deps}
}

// ScheduleTask registers a one-shot task. A past executeAt is accepted and
// simply comes due on the next poll; callers that want rejection must check
// before scheduling.
func (s *Service) ScheduleTask(taskType string, params map[string]interface{}, executeAt time.Time, companyID string) (domain.ScheduledTask, error) {
	taskType = strings.TrimSpace(taskType)
	if taskType == "" {
		return domain.ScheduledTask{}, &ValidationError{Code: "invalid_task_type", Message: "task type is required"}
	}

	task := domain.ScheduledTask{
		Type:      taskType,
		Params:    params,
		ExecuteAt: executeAt.UTC().Format(time.RFC3339),
		CompanyID: companyID,
		Status:    domain.TaskStatusScheduled,
		CreatedAt: s.deps.Now().Format(time.RFC3339),
	}
	doc, err := docstore.Encode(task)
	if err != nil {
		return domain.ScheduledTask{}, err
	}
	created, err := s.deps.Store.Create(domain.CollectionScheduledTasks, doc, "")
	if err != nil {
		return domain.ScheduledTask{}, err
	}
	if err := docstore.Decode(created, &task); err != nil {
		return domain.ScheduledTask{}, err
	}
	log.Printf("scheduled task %s type=%s execute_at=%s", task.ID, task.Type, task.ExecuteAt)
	return task, nil
}

// ScheduleRecurringTask registers a recurring task with its first
// next_execution_at computed from the schedule.
func (s *Service) ScheduleRecurringTask(taskType string, params map[string]interface{}, spec domain.ScheduleSpec, companyID string) (domain.RecurringTask, error) {
	taskType = strings.TrimSpace(taskType)
	if taskType == "" {
		return domain.RecurringTask{}, &ValidationError{Code: "invalid_task_type", Message: "task type is required"}
	}
	next, err := schedule.Next(spec, s.deps.Now())
	if err != nil {
		return domain.RecurringTask{}, &ValidationError{Code: "invalid_schedule", Message: err.Error()}
	}

	task := domain.RecurringTask{
		Type:            taskType,
		Params:          params,
		Schedule:        spec,
		CompanyID:       companyID,
		Status:          domain.TaskStatusScheduled,
		CreatedAt:       s.deps.Now().Format(time.RFC3339),
		NextExecutionAt: next.Format(time.RFC3339),
	}
	doc, err := docstore.Encode(task)
	if err != nil {
		return domain.RecurringTask{}, err
	}
	created, err := s.deps.Store.Create(domain.CollectionRecurringTasks, doc, "")
	if err != nil {
		return domain.RecurringTask{}, err
	}
	if err := docstore.Decode(created, &task); err != nil {
		return domain.RecurringTask{}, err
	}
	log.Printf("scheduled recurring task %s type=%s frequency=%s next=%s", task.ID, task.Type, spec.Frequency, task.NextExecutionAt)
	return task, nil
}

// CancelTask cancels a task in either registry. Cancelling twice is safe;
// an unknown id reports not_found rather than erroring.
func (s *Service) CancelTask(taskID string) domain.TaskStatusResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deps.Store.Get(domain.CollectionScheduledTasks, taskID); ok {
		if err := s.deps.Store.Update(domain.CollectionScheduledTasks, taskID, map[string]interface{}{
			"status": domain.TaskStatusCancelled,
		}); err != nil {
			log.Printf("cancel task %s failed: %v", taskID, err)
		}
		return domain.TaskStatusResult{TaskID: taskID, Status: domain.TaskStatusCancelled}
	}
	if _, ok := s.deps.Store.Get(domain.CollectionRecurringTasks, taskID); ok {
		if err := s.deps.Store.Update(domain.CollectionRecurringTasks, taskID, map[string]interface{}{
			"status": domain.TaskStatusCancelled,
		}); err != nil {
			log.Printf("cancel recurring task %s failed: %v", taskID, err)
		}
		return domain.TaskStatusResult{TaskID: taskID, Status: domain.TaskStatusCancelled}
	}
	return domain.TaskStatusResult{TaskID: taskID, Status: domain.TaskStatusNotFound}
}

// ExecuteTask marks a task executed. One-shot tasks are consumed; recurring
// tasks stamp last_executed_at and move next_execution_at forward, so the
// registry entry survives the firing.
func (s *Service) ExecuteTask(taskID string) domain.TaskStatusResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.deps.Now()
	nowText := now.Format(time.RFC3339)

	if _, ok := s.deps.Store.Get(domain.CollectionScheduledTasks, taskID); ok {
		if err := s.deps.Store.Update(domain.CollectionScheduledTasks, taskID, map[string]interface{}{
			"status":      domain.TaskStatusExecuted,
			"executed_at": nowText,
		}); err != nil {
			log.Printf("execute task %s failed: %v", taskID, err)
		}
		return domain.TaskStatusResult{TaskID: taskID, Status: domain.TaskStatusExecuted, ExecutedAt: &nowText}
	}

	if doc, ok := s.deps.Store.Get(domain.CollectionRecurringTasks, taskID); ok {
		var task domain.RecurringTask
		if err := docstore.Decode(doc, &task); err != nil {
			log.Printf("decode recurring task %s failed: %v", taskID, err)
			return domain.TaskStatusResult{TaskID: taskID, Status: domain.TaskStatusNotFound}
		}
		partial := map[string]interface{}{
			"last_executed_at": nowText,
			"status":           domain.TaskStatusScheduled,
		}
		result := domain.TaskStatusResult{TaskID: taskID, Status: domain.TaskStatusExecuted, ExecutedAt: &nowText}
		if next, err := schedule.Next(task.Schedule, now); err != nil {
			log.Printf("recompute next execution for task %s failed: %v", taskID, err)
		} else {
			nextText := next.Format(time.RFC3339)
			partial["next_execution_at"] = nextText
			result.NextExecutionAt = &nextText
		}
		if err := s.deps.Store.Update(domain.CollectionRecurringTasks, taskID, partial); err != nil {
			log.Printf("execute recurring task %s failed: %v", taskID, err)
		}
		return result
	}

	return domain.TaskStatusResult{TaskID: taskID, Status: domain.TaskStatusNotFound}
}

// UpdateTask partially updates a one-shot task.
func (s *Service) UpdateTask(taskID string, params map[string]interface{}, executeAt *time.Time, status string) (domain.ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.deps.Store.Get(domain.CollectionScheduledTasks, taskID)
	if !ok {
		return domain.ScheduledTask{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	partial := map[string]interface{}{}
	if params != nil {
		partial["params"] = params
	}
	if executeAt != nil {
		partial["execute_at"] = executeAt.UTC().Format(time.RFC3339)
	}
	if status != "" {
		partial["status"] = status
	}
	if len(partial) > 0 {
		if err := s.deps.Store.Update(domain.CollectionScheduledTasks, taskID, partial); err != nil {
			return domain.ScheduledTask{}, err
		}
		doc, _ = s.deps.Store.Get(domain.CollectionScheduledTasks, taskID)
	}
	var task domain.ScheduledTask
	if err := docstore.Decode(doc, &task); err != nil {
		return domain.ScheduledTask{}, err
	}
	return task, nil
}

// UpdateRecurringTask partially updates a recurring task. A new schedule
// forces next_execution_at to be recomputed.
func (s *Service) UpdateRecurringTask(taskID string, params map[string]interface{}, spec *domain.ScheduleSpec, status string) (domain.RecurringTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.deps.Store.Get(domain.CollectionRecurringTasks, taskID)
	if !ok {
		return domain.RecurringTask{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	partial := map[string]interface{}{}
	if params != nil {
		partial["params"] = params
	}
	if spec != nil {
		next, err := schedule.Next(*spec, s.deps.Now())
		if err != nil {
			return domain.RecurringTask{}, &ValidationError{Code: "invalid_schedule", Message: err.Error()}
		}
		specDoc, err := docstore.Encode(*spec)
		if err != nil {
			return domain.RecurringTask{}, err
		}
		partial["schedule"] = specDoc
		partial["next_execution_at"] = next.Format(time.RFC3339)
	}
	if status != "" {
		partial["status"] = status
	}
	if len(partial) > 0 {
		if err := s.deps.Store.Update(domain.CollectionRecurringTasks, taskID, partial); err != nil {
			return domain.RecurringTask{}, err
		}
		doc, _ = s.deps.Store.Get(domain.CollectionRecurringTasks, taskID)
	}
	var task domain.RecurringTask
	if err := docstore.Decode(doc, &task); err != nil {
		return domain.RecurringTask{}, err
	}
	return task, nil
}

// TaskView is the union the combined registry queries return: exactly one
// of the two fields is set.
type TaskView struct {
	Scheduled *domain.ScheduledTask `json:"scheduled,omitempty"`
	Recurring *domain.RecurringTask `json:"recurring,omitempty"`
}

func (s *Service) GetTask(taskID string) (TaskView, bool) {
	if doc, ok := s.deps.Store.Get(domain.CollectionScheduledTasks, taskID); ok {
		var task domain.ScheduledTask
		if err := docstore.Decode(doc, &task); err == nil {
			return TaskView{Scheduled: &task}, true
		}
	}
	if doc, ok := s.deps.Store.Get(domain.CollectionRecurringTasks, taskID); ok {
		var task domain.RecurringTask
		if err := docstore.Decode(doc, &task); err == nil {
			return TaskView{Recurring: &task}, true
		}
	}
	return TaskView{}, false
}

// ListTasks filters the combined registries. Empty filter values match
// everything.
func (s *Service) ListTasks(companyID, taskType, status string) []TaskView {
	out := make([]TaskView, 0)
	for _, task := range s.ListScheduledTasks(companyID, taskType, status) {
		t := task
		out = append(out, TaskView{Scheduled: &t})
	}
	for _, task := range s.listRecurring(companyID, taskType, status) {
		t := task
		out = append(out, TaskView{Recurring: &t})
	}
	return out
}

func (s *Service) ListScheduledTasks(companyID, taskType, status string) []domain.ScheduledTask {
	docs := s.deps.Store.Query(domain.CollectionScheduledTasks, docstore.Query{
		Filters: taskFilters(companyID, taskType, status),
		OrderBy: "created_at",
	})
	out := make([]domain.ScheduledTask, 0, len(docs))
	for _, doc := range docs {
		var task domain.ScheduledTask
		if err := docstore.Decode(doc, &task); err == nil {
			out = append(out, task)
		}
	}
	return out
}

func (s *Service) listRecurring(companyID, taskType, status string) []domain.RecurringTask {
	docs := s.deps.Store.Query(domain.CollectionRecurringTasks, docstore.Query{
		Filters: taskFilters(companyID, taskType, status),
		OrderBy: "created_at",
	})
	out := make([]domain.RecurringTask, 0, len(docs))
	for _, doc := range docs {
		var task domain.RecurringTask
		if err := docstore.Decode(doc, &task); err == nil {
			out = append(out, task)
		}
	}
	return out
}

func taskFilters(companyID, taskType, status string) []docstore.Filter {
	filters := make([]docstore.Filter, 0, 3)
	if companyID != "" {
		filters = append(filters, docstore.Filter{Field: "company_id", Op: docstore.OpEq, Value: companyID})
	}
	if taskType != "" {
		filters = append(filters, docstore.Filter{Field: "type", Op: docstore.OpEq, Value: taskType})
	}
	if status != "" {
		filters = append(filters, docstore.Filter{Field: "status", Op: docstore.OpEq, Value: status})
	}
	return filters
}

// DueTask is one firing the poll loop owes the pipeline.
type DueTask struct {
	ID        string
	Type      string
	Params    map[string]interface{}
	CompanyID string
	Recurring bool
}

// DueTasks returns every task whose execution instant has passed and whose
// status is still scheduled, in firing order.
func (s *Service) DueTasks(now time.Time) []DueTask {
	nowText := now.UTC().Format(time.RFC3339)
	out := make([]DueTask, 0)

	docs := s.deps.Store.Query(domain.CollectionScheduledTasks, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "status", Op: docstore.OpEq, Value: domain.TaskStatusScheduled},
			{Field: "execute_at", Op: docstore.OpLte, Value: nowText},
		},
		OrderBy: "execute_at",
	})
	for _, doc := range docs {
		var task domain.ScheduledTask
		if err := docstore.Decode(doc, &task); err == nil {
			out = append(out, DueTask{ID: task.ID, Type: task.Type, Params: task.Params, CompanyID: task.CompanyID})
		}
	}

	docs = s.deps.Store.Query(domain.CollectionRecurringTasks, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "status", Op: docstore.OpEq, Value: domain.TaskStatusScheduled},
			{Field: "next_execution_at", Op: docstore.OpLte, Value: nowText},
		},
		OrderBy: "next_execution_at",
	})
	for _, doc := range docs {
		var task domain.RecurringTask
		if err := docstore.Decode(doc, &task); err == nil {
			out = append(out, DueTask{ID: task.ID, Type: task.Type, Params: task.Params, CompanyID: task.CompanyID, Recurring: true})
		}
	}
	return out
}
