// Package nurturing implements the lead-nurturing workflow: initial contact
// on trigger, scheduled follow-ups with stale-work detection, and reply
// handling. Every public operation folds internal failures into a
// structured WorkflowResult; the background executor never sees a panic or
// a raw error from here.
package nurturing

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
	actionSendEmail         = "send_email"
	actionSendSMS           = "send_sms"
	actionScheduleFollowUp  = "schedule_follow_up"
	actionSendFollowUpEmail = "send_follow_up_email"
	actionSendFollowUpSMS   = "send_follow_up_sms"
	actionSendReplyEmail    = "send_reply_email"
	actionSendReplySMS      = "send_reply_sms"
	actionCancelFollowUps   = "cancel_follow_ups"
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

// ProcessNewLead runs the initial-contact step: match a config, open a run,
// send the first message, record the interaction, and register every
// configured follow-up with the task scheduler.
func (s *Service) ProcessNewLead(ctx context.Context, leadID string) domain.WorkflowResult {
	lead, err := s.getLead(leadID)
	if err != nil {
		return failure(err)
	}
	company, err := s.getCompany(lead.CompanyID)
	if err != nil {
		return failure(err)
	}

	configs, err := trigger.FindActive(s.deps.Store, lead.CompanyID, domain.WorkflowTypeLeadNurturing)
	if err != nil {
		return failure(err)
	}
	if len(configs) == 0 {
		log.Printf("no active lead nurturing workflow for company %s", lead.CompanyID)
		return domain.WorkflowResult{Success: false, Message: "No active workflow found"}
	}
	cfg, ok := trigger.Select(configs, trigger.Event{Type: domain.TriggerTypeNewLead, LeadSource: lead.Source})
	if !ok {
		log.Printf("lead source %q does not match workflow triggers", lead.Source)
		return domain.WorkflowResult{Success: false, Message: fmt.Sprintf("Lead source %q does not match workflow triggers", lead.Source)}
	}

	run, err := s.deps.Runs.Open(lead.CompanyID, cfg.ID, domain.TriggerTypeNewLead, leadID)
	if err != nil {
		return failure(err)
	}

	message, subject, err := s.generateInitialContact(ctx, lead, company, cfg)
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	channel := configChannel(cfg)
	outcome, err := s.deps.Dispatcher.Send(ctx, channel, dispatch.LeadRecipient(lead), dispatch.Message{
		Subject:  subject,
		Body:     message,
		FromName: company.Name,
	})
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	interaction, err := s.recordOutbound(lead, channel, message, outcome, map[string]interface{}{
		"workflow_run_id": run.ID,
	}, subject)
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	if err := s.deps.Runs.Append(run.ID, domain.ActionRecord{
		Type: sendActionType(channel),
		Details: map[string]interface{}{
			"to":             recipientAddress(lead, channel),
			"subject":        subject,
			"status":         interaction.Status,
			"interaction_id": interaction.ID,
		},
	}); err != nil {
		return s.abortRun(run.ID, err)
	}

	for i, followUp := range cfg.Actions.FollowUp {
		delay := followUp.DelayHours
		if delay <= 0 {
			delay = 24
		}
		executeAt := s.deps.Now().Add(time.Duration(delay) * time.Hour)
		task, err := s.deps.Scheduler.ScheduleTask(domain.TaskTypeLeadFollowUp, map[string]interface{}{
			"lead_id":          leadID,
			"company_id":       lead.CompanyID,
			"workflow_run_id":  run.ID,
			"follow_up_number": i + 1,
		}, executeAt, lead.CompanyID)
		if err != nil {
			return s.abortRun(run.ID, err)
		}
		if err := s.deps.Runs.Append(run.ID, domain.ActionRecord{
			Type: actionScheduleFollowUp,
			Details: map[string]interface{}{
				"scheduled_for":    executeAt.Format(time.RFC3339),
				"template":         followUp.MessageTemplate,
				"follow_up_number": i + 1,
				"task_id":          task.ID,
			},
		}); err != nil {
			return s.abortRun(run.ID, err)
		}
	}

	if err := s.deps.Runs.SetResults(run.ID, map[string]interface{}{
		"message_sent":         outcome.Success,
		"follow_ups_scheduled": len(cfg.Actions.FollowUp),
	}); err != nil {
		return s.abortRun(run.ID, err)
	}

	if err := s.updateLeadStatus(leadID, domain.LeadStatusContacted); err != nil {
		return s.abortRun(run.ID, err)
	}

	return domain.WorkflowResult{
		Success:       true,
		Message:       fmt.Sprintf("Initial contact %s sent", channelNoun(channel)),
		WorkflowRunID: run.ID,
		InteractionID: interaction.ID,
	}
}

// ProcessFollowUp fires one scheduled follow-up. A reply received after the
// run started supersedes the follow-up: nothing is sent and the call
// reports success, however many times it is repeated.
func (s *Service) ProcessFollowUp(ctx context.Context, leadID string, followUpNumber int, workflowRunID string) domain.WorkflowResult {
	lead, err := s.getLead(leadID)
	if err != nil {
		return failure(err)
	}
	company, err := s.getCompany(lead.CompanyID)
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

	if s.leadRepliedSince(leadID, run.StartedAt) {
		log.Printf("lead %s has already replied, skipping follow-up %d", leadID, followUpNumber)
		return domain.WorkflowResult{Success: true, Message: "Lead has already replied, follow-up skipped"}
	}

	previous := s.queryInteractions(leadID, domain.DirectionOutbound)
	isFinal := followUpNumber >= len(cfg.Actions.FollowUp)

	message, subject, err := s.generateFollowUp(ctx, lead, company, cfg, previous, isFinal)
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	channel := configChannel(cfg)
	outcome, err := s.deps.Dispatcher.Send(ctx, channel, dispatch.LeadRecipient(lead), dispatch.Message{
		Subject:  subject,
		Body:     message,
		FromName: company.Name,
	})
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	interaction, err := s.recordOutbound(lead, channel, message, outcome, map[string]interface{}{
		"workflow_run_id":  workflowRunID,
		"follow_up_number": followUpNumber,
	}, subject)
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	if err := s.deps.Runs.Append(run.ID, domain.ActionRecord{
		Type: followUpActionType(channel),
		Details: map[string]interface{}{
			"to":               recipientAddress(lead, channel),
			"subject":          subject,
			"status":           interaction.Status,
			"interaction_id":   interaction.ID,
			"follow_up_number": followUpNumber,
		},
	}); err != nil {
		return s.abortRun(run.ID, err)
	}
	if err := s.deps.Runs.SetResults(run.ID, map[string]interface{}{
		"follow_up_sent":   outcome.Success,
		"follow_up_number": followUpNumber,
	}); err != nil {
		return s.abortRun(run.ID, err)
	}

	// The final follow-up ends the nurturing sequence for this run.
	if isFinal {
		s.closeRun(run.ID, map[string]interface{}{
			"follow_up_sent":   outcome.Success,
			"follow_up_number": followUpNumber,
			"final":            true,
		})
	}

	return domain.WorkflowResult{
		Success:       true,
		Message:       fmt.Sprintf("Follow-up %d %s sent", followUpNumber, channelNoun(channel)),
		InteractionID: interaction.ID,
	}
}

// ProcessLeadReply answers an inbound interaction on the same channel it
// arrived on, withdraws any still-pending follow-ups for the run, and marks
// the lead engaged.
func (s *Service) ProcessLeadReply(ctx context.Context, interactionID string) domain.WorkflowResult {
	inbound, err := s.getInteraction(interactionID)
	if err != nil {
		return failure(err)
	}
	if inbound.Direction != domain.DirectionInbound {
		return failure(fmt.Errorf("interaction %s is not an inbound interaction", interactionID))
	}

	lead, err := s.getLead(inbound.LeadID)
	if err != nil {
		return failure(err)
	}
	company, err := s.getCompany(lead.CompanyID)
	if err != nil {
		return failure(err)
	}

	runID, _ := inbound.Metadata["workflow_run_id"].(string)
	if runID == "" {
		runID = s.latestRunID(lead.ID)
		if runID == "" {
			log.Printf("no workflow run found for lead %s", lead.ID)
			return domain.WorkflowResult{Success: false, Message: "No workflow run found"}
		}
	}
	run, err := s.deps.Runs.Get(runID)
	if err != nil {
		return failure(err)
	}
	if _, err := s.getConfig(run.WorkflowConfigID); err != nil {
		return failure(err)
	}

	previous := s.queryInteractions(lead.ID, "")

	message, subject, err := s.generateReply(ctx, lead, company, previous, inbound)
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	// Mirror the inbound channel, not the config's default.
	channel := inbound.Type
	outcome, err := s.deps.Dispatcher.Send(ctx, channel, dispatch.LeadRecipient(lead), dispatch.Message{
		Subject:  subject,
		Body:     message,
		FromName: company.Name,
	})
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	interaction, err := s.recordOutbound(lead, channel, message, outcome, map[string]interface{}{
		"workflow_run_id": runID,
		"in_response_to":  interactionID,
	}, subject)
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	if err := s.deps.Runs.Append(run.ID, domain.ActionRecord{
		Type: replyActionType(channel),
		Details: map[string]interface{}{
			"to":             recipientAddress(lead, channel),
			"subject":        subject,
			"status":         interaction.Status,
			"interaction_id": interaction.ID,
			"in_response_to": interactionID,
		},
	}); err != nil {
		return s.abortRun(run.ID, err)
	}
	if err := s.deps.Runs.SetResults(run.ID, map[string]interface{}{
		"reply_sent": outcome.Success,
	}); err != nil {
		return s.abortRun(run.ID, err)
	}

	if cancelled := s.cancelPendingFollowUps(lead.CompanyID, run.ID); cancelled > 0 {
		if err := s.deps.Runs.Append(run.ID, domain.ActionRecord{
			Type:    actionCancelFollowUps,
			Details: map[string]interface{}{"cancelled": cancelled},
		}); err != nil {
			return s.abortRun(run.ID, err)
		}
	}

	s.closeRun(run.ID, map[string]interface{}{"reply_sent": outcome.Success})

	if err := s.updateLeadStatus(lead.ID, domain.LeadStatusEngaged); err != nil {
		return failure(err)
	}

	return domain.WorkflowResult{
		Success:       true,
		Message:       fmt.Sprintf("Reply %s sent", channelNoun(channel)),
		InteractionID: interaction.ID,
	}
}

// --- lookups ---

func (s *Service) getLead(id string) (domain.Lead, error) {
	doc, ok := s.deps.Store.Get(domain.CollectionLeads, id)
	if !ok {
		return domain.Lead{}, fmt.Errorf("lead not found: %s", id)
	}
	var lead domain.Lead
	if err := docstore.Decode(doc, &lead); err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
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

func (s *Service) getInteraction(id string) (domain.Interaction, error) {
	doc, ok := s.deps.Store.Get(domain.CollectionInteractions, id)
	if !ok {
		return domain.Interaction{}, fmt.Errorf("interaction not found: %s", id)
	}
	var interaction domain.Interaction
	if err := docstore.Decode(doc, &interaction); err != nil {
		return domain.Interaction{}, err
	}
	return interaction, nil
}

func (s *Service) leadRepliedSince(leadID, startedAt string) bool {
	docs := s.deps.Store.Query(domain.CollectionInteractions, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "lead_id", Op: docstore.OpEq, Value: leadID},
			{Field: "direction", Op: docstore.OpEq, Value: domain.DirectionInbound},
			{Field: "created_at", Op: docstore.OpGt, Value: startedAt},
		},
	})
	return len(docs) > 0
}

func (s *Service) queryInteractions(leadID, direction string) []domain.Interaction {
	filters := []docstore.Filter{
		{Field: "lead_id", Op: docstore.OpEq, Value: leadID},
	}
	if direction != "" {
		filters = append(filters, docstore.Filter{Field: "direction", Op: docstore.OpEq, Value: direction})
	}
	docs := s.deps.Store.Query(domain.CollectionInteractions, docstore.Query{
		Filters: filters,
		OrderBy: "created_at",
	})
	out := make([]domain.Interaction, 0, len(docs))
	for _, doc := range docs {
		var interaction domain.Interaction
		if err := docstore.Decode(doc, &interaction); err == nil {
			out = append(out, interaction)
		}
	}
	return out
}

func (s *Service) latestRunID(leadID string) string {
	docs := s.deps.Store.Query(domain.CollectionWorkflowRuns, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "trigger_type", Op: docstore.OpEq, Value: domain.TriggerTypeNewLead},
			{Field: "trigger_id", Op: docstore.OpEq, Value: leadID},
		},
		OrderBy: "started_at",
		Desc:    true,
		Limit:   1,
	})
	if len(docs) == 0 {
		return ""
	}
	id, _ := docs[0]["id"].(string)
	return id
}

// --- mutations ---

func (s *Service) recordOutbound(lead domain.Lead, channel, content string, outcome dispatch.Outcome, metadata map[string]interface{}, subject string) (domain.Interaction, error) {
	status := domain.InteractionStatusDelivered
	if !outcome.Success {
		status = domain.InteractionStatusFailed
	}
	if channel == domain.InteractionTypeEmail && subject != "" {
		metadata["subject"] = subject
	}
	if outcome.MessageID != "" {
		metadata["message_id"] = outcome.MessageID
	}
	interaction := domain.Interaction{
		CompanyID: lead.CompanyID,
		LeadID:    lead.ID,
		Type:      channel,
		Direction: domain.DirectionOutbound,
		Content:   content,
		Channel:   domain.ChannelAutomatedWorkflow,
		Status:    status,
		CreatedAt: s.deps.Now().Format(time.RFC3339),
		Metadata:  metadata,
	}
	doc, err := docstore.Encode(interaction)
	if err != nil {
		return domain.Interaction{}, err
	}
	created, err := s.deps.Store.Create(domain.CollectionInteractions, doc, "")
	if err != nil {
		return domain.Interaction{}, err
	}
	if err := docstore.Decode(created, &interaction); err != nil {
		return domain.Interaction{}, err
	}
	return interaction, nil
}

func (s *Service) updateLeadStatus(leadID, status string) error {
	return s.deps.Store.Update(domain.CollectionLeads, leadID, map[string]interface{}{
		"status":     status,
		"updated_at": s.deps.Now().Format(time.RFC3339),
	})
}

func (s *Service) cancelPendingFollowUps(companyID, runID string) int {
	cancelled := 0
	for _, task := range s.deps.Scheduler.ListScheduledTasks(companyID, domain.TaskTypeLeadFollowUp, domain.TaskStatusScheduled) {
		taskRunID, _ := task.Params["workflow_run_id"].(string)
		if taskRunID != runID {
			continue
		}
		result := s.deps.Scheduler.CancelTask(task.ID)
		if result.Status == domain.TaskStatusCancelled {
			cancelled++
		}
	}
	return cancelled
}

// abortRun converts an unexpected mid-flow error into the structured
// failure result and closes the run as failed, so no run is left running
// after an error the executor cannot act on.
func (s *Service) abortRun(runID string, err error) domain.WorkflowResult {
	log.Printf("workflow run %s aborted: %v", runID, err)
	if closeErr := s.deps.Runs.Close(runID, domain.RunStatusFailed, map[string]interface{}{
		"error": err.Error(),
	}); closeErr != nil && !errors.Is(closeErr, ledger.ErrRunClosed) {
		log.Printf("close run %s failed: %v", runID, closeErr)
	}
	return failure(err)
}

func (s *Service) closeRun(runID string, results map[string]interface{}) {
	if err := s.deps.Runs.Close(runID, domain.RunStatusCompleted, results); err != nil && !errors.Is(err, ledger.ErrRunClosed) {
		log.Printf("close run %s failed: %v", runID, err)
	}
}

// --- content generation ---

func (s *Service) generateInitialContact(ctx context.Context, lead domain.Lead, company domain.Company, cfg domain.WorkflowConfig) (string, string, error) {
	vars := promptVars(lead, company)

	var message string
	if custom := cfg.Templates[cfg.Actions.MessageTemplate]; custom != "" {
		message = renderTemplate(custom, vars)
	} else {
		generated, err := s.deps.TextGen.Generate(ctx, renderTemplate(initialContactPrompt, vars))
		if err != nil {
			return "", "", err
		}
		message = generated
	}

	subject, err := s.generateSubject(ctx, cfg, map[string]string{
		"email_type":    "initial contact",
		"lead_name":     lead.Name,
		"business_name": company.Name,
		"lead_message":  lead.Notes,
		"email_purpose": "introduce the business and respond to the lead's inquiry",
	})
	if err != nil {
		return "", "", err
	}
	return message, subject, nil
}

func (s *Service) generateFollowUp(ctx context.Context, lead domain.Lead, company domain.Company, cfg domain.WorkflowConfig, previous []domain.Interaction, isFinal bool) (string, string, error) {
	vars := promptVars(lead, company)
	vars["previous_communications"] = renderOutboundHistory(previous)
	vars["days_since_contact"] = fmt.Sprintf("%d", daysSinceFirstContact(previous, s.deps.Now()))

	templateKey := ""
	if followUps := cfg.Actions.FollowUp; len(followUps) > 0 {
		if isFinal && len(followUps) > 1 {
			templateKey = followUps[len(followUps)-1].MessageTemplate
		} else {
			templateKey = followUps[0].MessageTemplate
		}
	}

	var message string
	if custom := cfg.Templates[templateKey]; custom != "" {
		message = renderTemplate(custom, vars)
	} else {
		prompt := followUpPrompt
		if isFinal {
			prompt = finalFollowUpPrompt
		}
		generated, err := s.deps.TextGen.Generate(ctx, renderTemplate(prompt, vars))
		if err != nil {
			return "", "", err
		}
		message = generated
	}

	subject, err := s.generateSubject(ctx, cfg, map[string]string{
		"email_type":    "follow-up",
		"lead_name":     lead.Name,
		"business_name": company.Name,
		"lead_message":  lead.Notes,
		"email_purpose": "follow up on the initial inquiry and provide additional value",
	})
	if err != nil {
		return "", "", err
	}
	return message, subject, nil
}

func (s *Service) generateReply(ctx context.Context, lead domain.Lead, company domain.Company, previous []domain.Interaction, inbound domain.Interaction) (string, string, error) {
	vars := promptVars(lead, company)
	vars["previous_communications"] = renderConversation(previous, inbound.ID)
	vars["lead_reply"] = inbound.Content

	message, err := s.deps.TextGen.Generate(ctx, renderTemplate(leadReplyPrompt, vars))
	if err != nil {
		return "", "", err
	}

	// Reuse the thread's original subject when one exists.
	if original := originalSubject(previous); original != "" {
		if strings.HasPrefix(original, "Re:") {
			return message, original, nil
		}
		return message, "Re: " + original, nil
	}

	subject, err := s.deps.TextGen.Generate(ctx, renderTemplate(subjectLinePrompt, map[string]string{
		"email_type":    "response",
		"lead_name":     lead.Name,
		"business_name": company.Name,
		"lead_message":  inbound.Content,
		"email_purpose": "respond to the lead's specific questions or comments",
	}))
	if err != nil {
		return "", "", err
	}
	return message, subject, nil
}

func (s *Service) generateSubject(ctx context.Context, cfg domain.WorkflowConfig, vars map[string]string) (string, error) {
	if configChannel(cfg) != domain.InteractionTypeEmail {
		return "", nil
	}
	return s.deps.TextGen.Generate(ctx, renderTemplate(subjectLinePrompt, vars))
}

// --- helpers ---

func promptVars(lead domain.Lead, company domain.Company) map[string]string {
	return map[string]string{
		"business_name":      company.Name,
		"industry":           company.Industry,
		"products_services":  settingString(company, "products_services"),
		"value_proposition":  settingString(company, "value_proposition"),
		"lead_name":          lead.Name,
		"lead_email":         lead.Email,
		"lead_source":        lead.Source,
		"lead_message":       lead.Notes,
		"additional_context": "",
	}
}

func settingString(company domain.Company, key string) string {
	v, _ := company.Settings[key].(string)
	return v
}

func renderTemplate(tpl string, vars map[string]string) string {
	out := tpl
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}

func renderOutboundHistory(previous []domain.Interaction) string {
	parts := make([]string, 0, len(previous))
	for i, interaction := range previous {
		if interaction.Direction != domain.DirectionOutbound {
			continue
		}
		parts = append(parts, fmt.Sprintf("Message %d:\n%s", i+1, interaction.Content))
	}
	return strings.Join(parts, "\n\n")
}

func renderConversation(previous []domain.Interaction, excludeID string) string {
	parts := make([]string, 0, len(previous))
	for _, interaction := range previous {
		if interaction.ID == excludeID {
			continue
		}
		marker := "<-"
		if interaction.Direction == domain.DirectionOutbound {
			marker = "->"
		}
		parts = append(parts, fmt.Sprintf("%s %s", marker, interaction.Content))
	}
	return strings.Join(parts, "\n")
}

func originalSubject(previous []domain.Interaction) string {
	for _, interaction := range previous {
		if interaction.Direction != domain.DirectionOutbound || interaction.Type != domain.InteractionTypeEmail {
			continue
		}
		if subject, _ := interaction.Metadata["subject"].(string); subject != "" {
			return subject
		}
	}
	return ""
}

func daysSinceFirstContact(previous []domain.Interaction, now time.Time) int {
	for _, interaction := range previous {
		if interaction.Direction != domain.DirectionOutbound {
			continue
		}
		first, err := time.Parse(time.RFC3339, interaction.CreatedAt)
		if err != nil {
			return 0
		}
		return int(now.Sub(first).Hours() / 24)
	}
	return 0
}

func configChannel(cfg domain.WorkflowConfig) string {
	channel := strings.TrimSpace(cfg.Actions.Channel)
	if channel == "" {
		return domain.InteractionTypeEmail
	}
	return channel
}

func channelNoun(channel string) string {
	if channel == domain.InteractionTypeSMS {
		return "SMS"
	}
	return "email"
}

func recipientAddress(lead domain.Lead, channel string) string {
	if channel == domain.InteractionTypeSMS {
		return lead.Phone
	}
	return lead.Email
}

func sendActionType(channel string) string {
	if channel == domain.InteractionTypeSMS {
		return actionSendSMS
	}
	return actionSendEmail
}

func followUpActionType(channel string) string {
	if channel == domain.InteractionTypeSMS {
		return actionSendFollowUpSMS
	}
	return actionSendFollowUpEmail
}

func replyActionType(channel string) string {
	if channel == domain.InteractionTypeSMS {
		return actionSendReplySMS
	}
	return actionSendReplyEmail
}

func failure(err error) domain.WorkflowResult {
	return domain.WorkflowResult{Success: false, Message: err.Error()}
}
