// Package review implements the review-referral workflow: when a sale
// completes, a review request is scheduled after the configured delay and
// sent out on the config's channel when the task fires.
package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bizflow/apps/orchestrator/internal/dispatch"
	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/domain"
	"bizflow/apps/orchestrator/internal/ledger"
	"bizflow/apps/orchestrator/internal/service/ports"
	"bizflow/apps/orchestrator/internal/trigger"
)

const (
	actionScheduleReviewRequest = "schedule_review_request"
	actionSendReviewEmail       = "send_review_email"
	actionSendReviewSMS         = "send_review_sms"

	defaultReviewDelayDays = 3
)

type Dependencies struct {
	Store      ports.DocumentStore
	Runs       *ledger.Ledger
	Dispatcher ports.Dispatcher
	TextGen    ports.TextGenerator
	Scheduler  ports.TaskScheduler
	Now        func() time.Time
}

type Service struct {
	deps Dependencies
}

func NewService(deps Dependencies) *Service {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{deps: deps}
}

// ProcessCompletedSale opens a run for the sale and schedules the review
// request task delay_days out (default three days).
func (s *Service) ProcessCompletedSale(ctx context.Context, saleID string) domain.WorkflowResult {
	sale, err := s.getSale(saleID)
	if err != nil {
		return failure(err)
	}

	configs, err := trigger.FindActive(s.deps.Store, sale.CompanyID, domain.WorkflowTypeReviewReferral)
	if err != nil {
		return failure(err)
	}
	if len(configs) == 0 {
		log.Printf("no active review referral workflow for company %s", sale.CompanyID)
		return domain.WorkflowResult{Success: false, Message: "No active workflow found"}
	}
	cfg, ok := trigger.Select(configs, trigger.Event{Type: domain.TriggerTypeSaleCompleted})
	if !ok {
		return domain.WorkflowResult{Success: false, Message: "Sale does not match workflow triggers"}
	}

	run, err := s.deps.Runs.Open(sale.CompanyID, cfg.ID, domain.TriggerTypeSaleCompleted, saleID)
	if err != nil {
		return failure(err)
	}

	delayDays := cfg.Actions.DelayDays
	if delayDays <= 0 {
		delayDays = defaultReviewDelayDays
	}
	executeAt := s.deps.Now().Add(time.Duration(delayDays) * 24 * time.Hour)

	task, err := s.deps.Scheduler.ScheduleTask(domain.TaskTypeReviewRequest, map[string]interface{}{
		"sale_id":         saleID,
		"company_id":      sale.CompanyID,
		"workflow_run_id": run.ID,
	}, executeAt, sale.CompanyID)
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	if err := s.deps.Runs.Append(run.ID, domain.ActionRecord{
		Type: actionScheduleReviewRequest,
		Details: map[string]interface{}{
			"scheduled_for": executeAt.Format(time.RFC3339),
			"delay_days":    delayDays,
			"task_id":       task.ID,
		},
	}); err != nil {
		return s.abortRun(run.ID, err)
	}
	if err := s.deps.Runs.SetResults(run.ID, map[string]interface{}{
		"review_request_scheduled": true,
	}); err != nil {
		return s.abortRun(run.ID, err)
	}

	return domain.WorkflowResult{
		Success:       true,
		Message:       fmt.Sprintf("Review request scheduled for %s", executeAt.Format(time.RFC3339)),
		WorkflowRunID: run.ID,
	}
}

// SendReviewRequest is the deferred half: the scheduled task calls it when
// the delay elapses. It generates the request text, dispatches it to the
// customer, records the interaction, and completes the run.
func (s *Service) SendReviewRequest(ctx context.Context, saleID, workflowRunID string) domain.WorkflowResult {
	sale, err := s.getSale(saleID)
	if err != nil {
		return failure(err)
	}
	company, err := s.getCompany(sale.CompanyID)
	if err != nil {
		return failure(err)
	}
	run, err := s.deps.Runs.Get(workflowRunID)
	if err != nil {
		return failure(err)
	}
	cfg, err := s.getConfig(run.WorkflowConfigID)
	if err != nil {
		return failure(err)
	}

	message, err := s.deps.TextGen.Generate(ctx, renderTemplate(reviewRequestPrompt, map[string]string{
		"business_name": company.Name,
		"customer_name": sale.CustomerName,
	}))
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	channel := cfg.Actions.Channel
	if channel == "" {
		channel = domain.InteractionTypeEmail
	}
	subject := ""
	if channel == domain.InteractionTypeEmail {
		subject = fmt.Sprintf("How was your experience with %s?", company.Name)
	}

	outcome, err := s.deps.Dispatcher.Send(ctx, channel, dispatch.Recipient{
		Name:  sale.CustomerName,
		Email: sale.CustomerEmail,
		Phone: sale.CustomerPhone,
	}, dispatch.Message{Subject: subject, Body: message, FromName: company.Name})
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	status := domain.InteractionStatusDelivered
	if !outcome.Success {
		status = domain.InteractionStatusFailed
	}
	interaction := domain.Interaction{
		CompanyID: sale.CompanyID,
		Type:      channel,
		Direction: domain.DirectionOutbound,
		Content:   message,
		Channel:   domain.ChannelAutomatedWorkflow,
		Status:    status,
		CreatedAt: s.deps.Now().Format(time.RFC3339),
		Metadata: map[string]interface{}{
			"workflow_run_id": workflowRunID,
			"sale_id":         saleID,
		},
	}
	doc, err := docstore.Encode(interaction)
	if err != nil {
		return s.abortRun(run.ID, err)
	}
	created, err := s.deps.Store.Create(domain.CollectionInteractions, doc, "")
	if err != nil {
		return s.abortRun(run.ID, err)
	}
	interactionID, _ := created["id"].(string)

	actionType := actionSendReviewEmail
	if channel == domain.InteractionTypeSMS {
		actionType = actionSendReviewSMS
	}
	if err := s.deps.Runs.Append(run.ID, domain.ActionRecord{
		Type: actionType,
		Details: map[string]interface{}{
			"to":             recipientAddress(sale, channel),
			"status":         status,
			"interaction_id": interactionID,
		},
	}); err != nil {
		return s.abortRun(run.ID, err)
	}

	if err := s.deps.Runs.Close(run.ID, domain.RunStatusCompleted, map[string]interface{}{
		"review_request_sent": outcome.Success,
	}); err != nil && !errors.Is(err, ledger.ErrRunClosed) {
		log.Printf("close run %s failed: %v", run.ID, err)
	}

	noun := "email"
	if channel == domain.InteractionTypeSMS {
		noun = "SMS"
	}
	return domain.WorkflowResult{
		Success:       true,
		Message:       fmt.Sprintf("Review request %s sent", noun),
		WorkflowRunID: run.ID,
		InteractionID: interactionID,
	}
}

func (s *Service) getSale(id string) (domain.Sale, error) {
	doc, ok := s.deps.Store.Get(domain.CollectionSales, id)
	if !ok {
		return domain.Sale{}, fmt.Errorf("sale not found: %s", id)
	}
	var sale domain.Sale
	if err := docstore.Decode(doc, &sale); err != nil {
		return domain.Sale{}, err
	}
	return sale, nil
}

func (s *Service) getCompany(id string) (domain.Company, error) {
	doc, ok := s.deps.Store.Get(domain.CollectionCompanies, id)
	if !ok {
		return domain.Company{}, fmt.Errorf("company not found: %s", id)
	}
	var company domain.Company
	if err := docstore.Decode(doc, &company); err != nil {
		return domain.Company{}, err
	}
	return company, nil
}

func (s *Service) getConfig(id string) (domain.WorkflowConfig, error) {
	doc, ok := s.deps.Store.Get(domain.CollectionWorkflowConfigs, id)
	if !ok {
		return domain.WorkflowConfig{}, fmt.Errorf("workflow config not found: %s", id)
	}
	var cfg domain.WorkflowConfig
	if err := docstore.Decode(doc, &cfg); err != nil {
		return domain.WorkflowConfig{}, err
	}
	return cfg, nil
}

func (s *Service) abortRun(runID string, err error) domain.WorkflowResult {
	log.Printf("workflow run %s aborted: %v", runID, err)
	if closeErr := s.deps.Runs.Close(runID, domain.RunStatusFailed, map[string]interface{}{
		"error": err.Error(),
	}); closeErr != nil && !errors.Is(closeErr, ledger.ErrRunClosed) {
		log.Printf("close run %s failed: %v", runID, closeErr)
	}
	return failure(err)
}

func recipientAddress(sale domain.Sale, channel string) string {
	if channel == domain.InteractionTypeSMS {
		return sale.CustomerPhone
	}
	return sale.CustomerEmail
}

func renderTemplate(tpl string, vars map[string]string) string {
	out := tpl
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}

func failure(err error) domain.WorkflowResult {
	return domain.WorkflowResult{Success: false, Message: err.Error()}
}
