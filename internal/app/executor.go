package app

import (
	"context"
	"log"
	"time"

	"bizflow/apps/orchestrator/internal/domain"
	"bizflow/apps/orchestrator/internal/scheduler"
)

// startExecutor runs the poll loop: every poll interval, due tasks are
// claimed through ExecuteTask and handed to the matching workflow
// operation. Claiming happens before the handler runs so a slow handler
// cannot cause the next tick to fire the same task twice.
func (s *Server) startExecutor() {
	go func() {
		defer close(s.executorDone)
		s.executorTick()

		ticker := time.NewTicker(s.cfg.Executor.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.executorTick()
			case <-s.executorStop:
				return
			}
		}
	}()
}

func (s *Server) executorTick() {
	due := s.scheduler.DueTasks(time.Now().UTC())
	for _, task := range due {
		result := s.scheduler.ExecuteTask(task.ID)
		if result.Status != domain.TaskStatusExecuted && result.Status != domain.TaskStatusScheduled {
			continue
		}
		s.executorWG.Add(1)
		go func(task scheduler.DueTask) {
			defer s.executorWG.Done()
			s.dispatchTask(task)
		}(task)
	}
}

// dispatchTask routes a claimed task to its workflow operation. Unknown
// task types are logged and dropped; a malformed task must not wedge the
// poll loop.
func (s *Server) dispatchTask(task scheduler.DueTask) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Executor.ExecuteTimeout)
	defer cancel()

	var result domain.WorkflowResult
	switch task.Type {
	case domain.TaskTypeLeadFollowUp:
		leadID, _ := task.Params["lead_id"].(string)
		runID, _ := task.Params["workflow_run_id"].(string)
		result = s.nurturing.ProcessFollowUp(ctx, leadID, paramInt(task.Params, "follow_up_number"), runID)
	case domain.TaskTypeReviewRequest:
		saleID, _ := task.Params["sale_id"].(string)
		runID, _ := task.Params["workflow_run_id"].(string)
		result = s.review.SendReviewRequest(ctx, saleID, runID)
	case domain.TaskTypeContentGeneration:
		companyID := task.CompanyID
		if companyID == "" {
			companyID, _ = task.Params["company_id"].(string)
		}
		result = s.content.GenerateContent(ctx, companyID)
	default:
		log.Printf("task %s has unknown type %q, dropping", task.ID, task.Type)
		return
	}

	if !result.Success {
		log.Printf("task %s (%s) failed: %s", task.ID, task.Type, result.Message)
		return
	}
	log.Printf("task %s (%s) executed: %s", task.ID, task.Type, result.Message)
}

// paramInt tolerates the float64 that JSON decoding produces for numbers.
func paramInt(params map[string]interface{}, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
