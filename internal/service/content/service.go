// Package content implements the scheduled content-generation workflow:
// a recurring task fires on the config's schedule, a draft is generated
// from the company profile, and the draft lands in the content collection
// for human review.
package content

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/domain"
	"bizflow/apps/orchestrator/internal/ledger"
	"bizflow/apps/orchestrator/internal/service/ports"
	"bizflow/apps/orchestrator/internal/trigger"
)

const actionGenerateContent = "generate_content"

const blogDraftPrompt = `Write a blog post draft for {{business_name}}, a company in the {{industry}} industry. Products and services: {{products_services}}. The post should be informative, useful to potential customers, and end with a light call to action. Return the post body only.`

type Dependencies struct {
	Store   ports.DocumentStore
	Runs    *ledger.Ledger
	TextGen ports.TextGenerator
	Now     func() time.Time
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

// GenerateContent runs one content-generation cycle for a company. It is
// invoked by the recurring content_generation task; each cycle gets its own
// workflow run and produces one draft content item.
func (s *Service) GenerateContent(ctx context.Context, companyID string) domain.WorkflowResult {
	company, err := s.getCompany(companyID)
	if err != nil {
		return failure(err)
	}

	configs, err := trigger.FindActive(s.deps.Store, companyID, domain.WorkflowTypeContentGeneration)
	if err != nil {
		return failure(err)
	}
	if len(configs) == 0 {
		log.Printf("no active content generation workflow for company %s", companyID)
		return domain.WorkflowResult{Success: false, Message: "No active workflow found"}
	}
	cfg, _ := trigger.Select(configs, trigger.Event{Type: domain.TriggerTypeSchedule})

	run, err := s.deps.Runs.Open(companyID, cfg.ID, domain.TriggerTypeSchedule, companyID)
	if err != nil {
		return failure(err)
	}

	body, err := s.deps.TextGen.Generate(ctx, renderTemplate(blogDraftPrompt, map[string]string{
		"business_name":     company.Name,
		"industry":          company.Industry,
		"products_services": settingString(company, "products_services"),
	}))
	if err != nil {
		return s.abortRun(run.ID, err)
	}

	item := domain.ContentItem{
		CompanyID:   companyID,
		ContentType: "blog_post",
		Topic:       draftTopic(body),
		Body:        body,
		Status:      domain.ContentStatusDraft,
		CreatedAt:   s.deps.Now().Format(time.RFC3339),
		Metadata: map[string]interface{}{
			"workflow_run_id": run.ID,
		},
	}
	doc, err := docstore.Encode(item)
	if err != nil {
		return s.abortRun(run.ID, err)
	}
	created, err := s.deps.Store.Create(domain.CollectionContent, doc, "")
	if err != nil {
		return s.abortRun(run.ID, err)
	}
	contentID, _ := created["id"].(string)

	if err := s.deps.Runs.Append(run.ID, domain.ActionRecord{
		Type: actionGenerateContent,
		Details: map[string]interface{}{
			"content_id":   contentID,
			"content_type": item.ContentType,
		},
	}); err != nil {
		return s.abortRun(run.ID, err)
	}

	if err := s.deps.Runs.Close(run.ID, domain.RunStatusCompleted, map[string]interface{}{
		"content_generated": true,
		"content_id":        contentID,
	}); err != nil && !errors.Is(err, ledger.ErrRunClosed) {
		log.Printf("close run %s failed: %v", run.ID, err)
	}

	return domain.WorkflowResult{
		Success:       true,
		Message:       "Content draft generated",
		WorkflowRunID: run.ID,
	}
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

func (s *Service) abortRun(runID string, err error) domain.WorkflowResult {
	log.Printf("workflow run %s aborted: %v", runID, err)
	if closeErr := s.deps.Runs.Close(runID, domain.RunStatusFailed, map[string]interface{}{
		"error": err.Error(),
	}); closeErr != nil && !errors.Is(closeErr, ledger.ErrRunClosed) {
		log.Printf("close run %s failed: %v", runID, closeErr)
	}
	return failure(err)
}

// draftTopic takes the first non-empty line as a provisional topic, since
// drafts are reviewed by a human before publication anyway.
func draftTopic(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			if len(line) > 80 {
				return line[:80]
			}
			return line
		}
	}
	return "Untitled"
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

func failure(err error) domain.WorkflowResult {
	return domain.WorkflowResult{Success: false, Message: err.Error()}
}
