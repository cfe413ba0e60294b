package app

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/domain"
)

// Workflow endpoints acknowledge immediately with {"status":"pending"} and
// run the workflow in the background; results land in the run ledger, not
// the HTTP response.

func (s *Server) processLead(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "lead_id")
	if leadID == "" {
		writeErr(w, http.StatusBadRequest, "invalid_request", "lead_id is required", nil)
		return
	}
	s.runInBackground("process_new_lead", func(ctx context.Context) domain.WorkflowResult {
		return s.nurturing.ProcessNewLead(ctx, leadID)
	})
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "pending",
		"message": "Lead processing started",
	})
}

func (s *Server) processFollowUp(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "lead_id")
	var req struct {
		FollowUpNumber int    `json:"follow_up_number"`
		WorkflowRunID  string `json:"workflow_run_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_json", "invalid request body", nil)
		return
	}
	if req.WorkflowRunID == "" || req.FollowUpNumber < 1 {
		writeErr(w, http.StatusBadRequest, "invalid_request", "workflow_run_id and follow_up_number are required", nil)
		return
	}
	s.runInBackground("process_follow_up", func(ctx context.Context) domain.WorkflowResult {
		return s.nurturing.ProcessFollowUp(ctx, leadID, req.FollowUpNumber, req.WorkflowRunID)
	})
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "pending",
		"message": "Follow-up processing started",
	})
}

func (s *Server) processReply(w http.ResponseWriter, r *http.Request) {
	interactionID := chi.URLParam(r, "interaction_id")
	if interactionID == "" {
		writeErr(w, http.StatusBadRequest, "invalid_request", "interaction_id is required", nil)
		return
	}
	s.runInBackground("process_lead_reply", func(ctx context.Context) domain.WorkflowResult {
		return s.nurturing.ProcessLeadReply(ctx, interactionID)
	})
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "pending",
		"message": "Reply processing started",
	})
}

func (s *Server) processSale(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "sale_id")
	if saleID == "" {
		writeErr(w, http.StatusBadRequest, "invalid_request", "sale_id is required", nil)
		return
	}
	s.runInBackground("process_completed_sale", func(ctx context.Context) domain.WorkflowResult {
		return s.review.ProcessCompletedSale(ctx, saleID)
	})
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "pending",
		"message": "Sale processing started",
	})
}

func (s *Server) generateContent(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "company_id")
	if companyID == "" {
		writeErr(w, http.StatusBadRequest, "invalid_request", "company_id is required", nil)
		return
	}
	s.runInBackground("generate_content", func(ctx context.Context) domain.WorkflowResult {
		return s.content.GenerateContent(ctx, companyID)
	})
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "pending",
		"message": "Content generation started",
	})
}

func (s *Server) runInBackground(operation string, fn func(context.Context) domain.WorkflowResult) {
	s.executorWG.Add(1)
	go func() {
		defer s.executorWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Executor.ExecuteTimeout)
		defer cancel()
		result := fn(ctx)
		if !result.Success {
			log.Printf("workflow %s failed: %s", operation, result.Message)
		}
	}()
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	filters := make([]docstore.Filter, 0, 2)
	if companyID := r.URL.Query().Get("company_id"); companyID != "" {
		filters = append(filters, docstore.Filter{Field: "company_id", Op: docstore.OpEq, Value: companyID})
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filters = append(filters, docstore.Filter{Field: "status", Op: docstore.OpEq, Value: status})
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	docs := s.store.Query(domain.CollectionWorkflowRuns, docstore.Query{
		Filters: filters,
		OrderBy: "started_at",
		Desc:    true,
		Limit:   limit,
	})
	out := make([]domain.WorkflowRun, 0, len(docs))
	for _, doc := range docs {
		var run domain.WorkflowRun
		if err := docstore.Decode(doc, &run); err == nil {
			out = append(out, run)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runs.Get(chi.URLParam(r, "run_id"))
	if err != nil {
		writeErr(w, http.StatusNotFound, "run_not_found", "workflow run not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErr(w http.ResponseWriter, code int, errCode, message string, details interface{}) {
	writeJSON(w, code, domain.APIErrorBody{Error: domain.APIError{Code: errCode, Message: message, Details: details}})
}
