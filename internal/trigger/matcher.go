// Package trigger decides whether an incoming event starts a workflow, and
// which config handles it when several qualify.
package trigger

import (
	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/domain"
	"bizflow/apps/orchestrator/internal/service/ports"
)

type Event struct {
	Type       string
	LeadSource string
}

// Matches reports whether the event satisfies the config's trigger
// predicate. An absent lead_source filter matches every lead; a filter
// limits matches to the listed sources.
func Matches(cfg domain.WorkflowConfig, ev Event) bool {
	if !cfg.Active {
		return false
	}
	if ev.Type == domain.TriggerTypeNewLead && cfg.Triggers.LeadSource != nil {
		for _, source := range cfg.Triggers.LeadSource {
			if source == ev.LeadSource {
				return true
			}
		}
		return false
	}
	return true
}

// Select picks the authoritative config among the matching ones: the most
// recently updated wins, with id as the tie-break. This replaces the
// order-dependent "first result wins" rule with a deterministic one.
func Select(configs []domain.WorkflowConfig, ev Event) (domain.WorkflowConfig, bool) {
	var best domain.WorkflowConfig
	found := false
	for _, cfg := range configs {
		if !Matches(cfg, ev) {
			continue
		}
		if !found || laterConfig(cfg, best) {
			best = cfg
			found = true
		}
	}
	return best, found
}

func laterConfig(a, b domain.WorkflowConfig) bool {
	if a.UpdatedAt != b.UpdatedAt {
		return a.UpdatedAt > b.UpdatedAt
	}
	return a.ID > b.ID
}

// FindActive loads every active config of the given type for a company.
func FindActive(store ports.DocumentStore, companyID, workflowType string) ([]domain.WorkflowConfig, error) {
	docs := store.Query(domain.CollectionWorkflowConfigs, docstore.Query{
		Filters: []docstore.Filter{
			{Field: "company_id", Op: docstore.OpEq, Value: companyID},
			{Field: "workflow_type", Op: docstore.OpEq, Value: workflowType},
			{Field: "active", Op: docstore.OpEq, Value: true},
		},
	})
	out := make([]domain.WorkflowConfig, 0, len(docs))
	for _, doc := range docs {
		var cfg domain.WorkflowConfig
		if err := docstore.Decode(doc, &cfg); err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}
