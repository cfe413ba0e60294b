// Package seed loads a YAML fixture file of companies, leads, and workflow
// configs into the document store at startup. Existing documents with the
// same id are left alone, so re-running against a populated data dir is
// safe.
package seed

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/domain"
	"bizflow/apps/orchestrator/internal/service/ports"
)

type File struct {
	Companies       []Company        `yaml:"companies"`
	Leads           []Lead           `yaml:"leads"`
	WorkflowConfigs []WorkflowConfig `yaml:"workflow_configs"`
}

type Company struct {
	ID       string                 `yaml:"id"`
	Name     string                 `yaml:"name"`
	Industry string                 `yaml:"industry"`
	Settings map[string]interface{} `yaml:"settings"`
}

type Lead struct {
	ID        string   `yaml:"id"`
	CompanyID string   `yaml:"company_id"`
	Name      string   `yaml:"name"`
	Email     string   `yaml:"email"`
	Phone     string   `yaml:"phone"`
	Source    string   `yaml:"source"`
	Status    string   `yaml:"status"`
	Notes     string   `yaml:"notes"`
	Tags      []string `yaml:"tags"`
}

type FollowUp struct {
	DelayHours      int    `yaml:"delay_hours"`
	MessageTemplate string `yaml:"message_template"`
}

type WorkflowConfig struct {
	ID           string            `yaml:"id"`
	CompanyID    string            `yaml:"company_id"`
	Name         string            `yaml:"name"`
	WorkflowType string            `yaml:"workflow_type"`
	Active       bool              `yaml:"active"`
	Triggers     struct {
		LeadSource []string `yaml:"lead_source"`
	} `yaml:"triggers"`
	Actions struct {
		Channel         string     `yaml:"channel"`
		MessageTemplate string     `yaml:"message_template"`
		FollowUp        []FollowUp `yaml:"follow_up"`
		DelayDays       int        `yaml:"delay_days"`
	} `yaml:"actions"`
	Templates map[string]string `yaml:"templates"`
}

// Summary reports what Load created, for the startup log line.
type Summary struct {
	Companies       int
	Leads           int
	WorkflowConfigs int
}

// Load reads the seed file and creates any documents not already present.
func Load(store ports.DocumentStore, path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, err
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Summary{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	summary := Summary{}

	for _, company := range file.Companies {
		created, err := create(store, domain.CollectionCompanies, company.ID, domain.Company{
			ID:        company.ID,
			Name:      company.Name,
			Industry:  company.Industry,
			Settings:  company.Settings,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return summary, err
		}
		if created {
			summary.Companies++
		}
	}

	for _, lead := range file.Leads {
		status := lead.Status
		if status == "" {
			status = domain.LeadStatusNew
		}
		created, err := create(store, domain.CollectionLeads, lead.ID, domain.Lead{
			ID:        lead.ID,
			CompanyID: lead.CompanyID,
			Name:      lead.Name,
			Email:     lead.Email,
			Phone:     lead.Phone,
			Source:    lead.Source,
			Status:    status,
			Notes:     lead.Notes,
			Tags:      lead.Tags,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return summary, err
		}
		if created {
			summary.Leads++
		}
	}

	for _, cfg := range file.WorkflowConfigs {
		followUps := make([]domain.FollowUpSpec, 0, len(cfg.Actions.FollowUp))
		for _, f := range cfg.Actions.FollowUp {
			followUps = append(followUps, domain.FollowUpSpec{
				DelayHours:      f.DelayHours,
				MessageTemplate: f.MessageTemplate,
			})
		}
		created, err := create(store, domain.CollectionWorkflowConfigs, cfg.ID, domain.WorkflowConfig{
			ID:           cfg.ID,
			CompanyID:    cfg.CompanyID,
			Name:         cfg.Name,
			WorkflowType: cfg.WorkflowType,
			Active:       cfg.Active,
			Triggers:     domain.WorkflowTriggers{LeadSource: cfg.Triggers.LeadSource},
			Actions: domain.WorkflowActions{
				Channel:         cfg.Actions.Channel,
				MessageTemplate: cfg.Actions.MessageTemplate,
				FollowUp:        followUps,
				DelayDays:       cfg.Actions.DelayDays,
			},
			Templates: cfg.Templates,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return summary, err
		}
		if created {
			summary.WorkflowConfigs++
		}
	}

	return summary, nil
}

func create(store ports.DocumentStore, collection, id string, v interface{}) (bool, error) {
	if id != "" {
		if _, exists := store.Get(collection, id); exists {
			return false, nil
		}
	}
	doc, err := docstore.Encode(v)
	if err != nil {
		return false, err
	}
	if _, err := store.Create(collection, doc, id); err != nil {
		return false, err
	}
	return true, nil
}
