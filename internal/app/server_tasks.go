package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bizflow/apps/orchestrator/internal/domain"
	"bizflow/apps/orchestrator/internal/scheduler"
)

type scheduleTaskRequest struct {
	TaskType  string                 `json:"task_type"`
	Params    map[string]interface{} `json:"params"`
	ExecuteAt string                 `json:"execute_at"`
	CompanyID string                 `json:"company_id"`
}

type recurringTaskRequest struct {
	TaskType  string                 `json:"task_type"`
	Params    map[string]interface{} `json:"params"`
	Schedule  domain.ScheduleSpec    `json:"schedule"`
	CompanyID string                 `json:"company_id"`
}

type updateTaskRequest struct {
	Params    map[string]interface{} `json:"params"`
	ExecuteAt string                 `json:"execute_at"`
	Schedule  *domain.ScheduleSpec   `json:"schedule"`
	Status    string                 `json:"status"`
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req scheduleTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", "invalid request body", nil)
		return
	}
	executeAt, err := time.Parse(time.RFC3339, req.ExecuteAt)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_request", "execute_at must be RFC3339", nil)
		return
	}
	task, err := s.scheduler.ScheduleTask(req.TaskType, req.Params, executeAt, req.CompanyID)
	if err != nil {
		writeSchedulerErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) createRecurringTask(w http.ResponseWriter, r *http.Request) {
	var req recurringTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", "invalid request body", nil)
		return
	}
	task, err := s.scheduler.ScheduleRecurringTask(req.TaskType, req.Params, req.Schedule, req.CompanyID)
	if err != nil {
		writeSchedulerErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks := s.scheduler.ListTasks(q.Get("company_id"), q.Get("task_type"), q.Get("status"))
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.scheduler.GetTask(chi.URLParam(r, "task_id"))
	if !ok {
		writeErr(w, http.StatusNotFound, "task_not_found", "task not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", "invalid request body", nil)
		return
	}

	if req.Schedule != nil {
		task, err := s.scheduler.UpdateRecurringTask(taskID, req.Params, req.Schedule, req.Status)
		if err != nil {
			writeSchedulerErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
		return
	}

	var executeAt *time.Time
	if req.ExecuteAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExecuteAt)
		if err != nil {
			writeErr(w, http.StatusBadRequest, "invalid_request", "execute_at must be RFC3339", nil)
			return
		}
		executeAt = &parsed
	}
	task, err := s.scheduler.UpdateTask(taskID, req.Params, executeAt, req.Status)
	if err != nil {
		if errors.Is(err, scheduler.ErrTaskNotFound) {
			// The id may name a recurring task updated without a new spec.
			recurring, recErr := s.scheduler.UpdateRecurringTask(taskID, req.Params, nil, req.Status)
			if recErr == nil {
				writeJSON(w, http.StatusOK, recurring)
				return
			}
		}
		writeSchedulerErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) cancelTask(w http.ResponseWriter, r *http.Request) {
	result := s.scheduler.CancelTask(chi.URLParam(r, "task_id"))
	if result.Status == domain.TaskStatusNotFound {
		writeErr(w, http.StatusNotFound, "task_not_found", "task not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) executeTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")
	view, ok := s.scheduler.GetTask(taskID)
	if !ok {
		writeErr(w, http.StatusNotFound, "task_not_found", "task not found", nil)
		return
	}
	result := s.scheduler.ExecuteTask(taskID)
	if result.Status == domain.TaskStatusNotFound {
		writeErr(w, http.StatusNotFound, "task_not_found", "task not found", nil)
		return
	}
	s.dispatchTask(dueTaskFromView(taskID, view))
	writeJSON(w, http.StatusOK, result)
}

func dueTaskFromView(taskID string, view scheduler.TaskView) scheduler.DueTask {
	if view.Recurring != nil {
		return scheduler.DueTask{
			ID:        taskID,
			Type:      view.Recurring.Type,
			Params:    view.Recurring.Params,
			CompanyID: view.Recurring.CompanyID,
			Recurring: true,
		}
	}
	return scheduler.DueTask{
		ID:        taskID,
		Type:      view.Scheduled.Type,
		Params:    view.Scheduled.Params,
		CompanyID: view.Scheduled.CompanyID,
	}
}

func writeSchedulerErr(w http.ResponseWriter, err error) {
	var validation *scheduler.ValidationError
	if errors.As(err, &validation) {
		writeErr(w, http.StatusBadRequest, validation.Code, validation.Message, nil)
		return
	}
	if errors.Is(err, scheduler.ErrTaskNotFound) {
		writeErr(w, http.StatusNotFound, "task_not_found", "task not found", nil)
		return
	}
	writeErr(w, http.StatusInternalServerError, "internal_error", err.Error(), nil)
}
