package review

import (
	"context"
	"strings"
	"testing"
	"time"

	"bizflow/apps/orchestrator/internal/dispatch"
	"bizflow/apps/orchestrator/internal/docstore"
	"bizflow/apps/orchestrator/internal/domain"
	"bizflow/apps/orchestrator/internal/ledger"
	"bizflow/apps/orchestrator/internal/service/adapters"
)

func seedSale(t *testing.T, store *docstore.Store) {
	t.Helper()
	for _, fixture := range []struct {
		collection string
		id         string
		doc        interface{}
	}{
		{domain.CollectionCompanies, "company-1", domain.Company{Name: "Acme Plumbing", Industry: "plumbing"}},
		{domain.CollectionSales, "sale-1", domain.Sale{
			CompanyID:     "company-1",
			CustomerName:  "Ben",
			CustomerEmail: "ben@example.com",
			CustomerPhone: "+15550111",
			Amount:        420,
		}},
		{domain.CollectionWorkflowConfigs, "cfg-1", domain.WorkflowConfig{
			ID:           "cfg-1",
			CompanyID:    "company-1",
			WorkflowType: domain.WorkflowTypeReviewReferral,
			Active:       true,
			Actions:      domain.WorkflowActions{Channel: domain.InteractionTypeEmail, DelayDays: 2},
		}},
	} {
		doc, err := docstore.Encode(fixture.doc)
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		if _, err := store.Create(fixture.collection, doc, fixture.id); err != nil {
			t.Fatalf("create %s failed: %v", fixture.collection, err)
		}
	}
}

func TestProcessCompletedSaleSchedulesReviewRequest(t *testing.T) {
	t.Parallel()

	now, _ := time.Parse(time.RFC3339, "2026-03-10T09:00:00Z")
	store := docstore.NewMemStore()
	seedSale(t, store)
	runs := ledger.NewWithClock(store, func() time.Time { return now })

	var scheduledAt time.Time
	var scheduledParams map[string]interface{}
	svc := NewService(Dependencies{
		Store: store,
		Runs:  runs,
		Scheduler: adapters.TaskScheduler{
			ScheduleTaskFunc: func(taskType string, params map[string]interface{}, executeAt time.Time, companyID string) (domain.ScheduledTask, error) {
				if taskType != domain.TaskTypeReviewRequest {
					t.Fatalf("unexpected task type: %s", taskType)
				}
				scheduledAt = executeAt
				scheduledParams = params
				return domain.ScheduledTask{ID: "task-1", Type: taskType}, nil
			},
		},
		Now: func() time.Time { return now },
	})

	result := svc.ProcessCompletedSale(context.Background(), "sale-1")
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if want := now.Add(2 * 24 * time.Hour); !scheduledAt.Equal(want) {
		t.Fatalf("review request at %s, want %s", scheduledAt, want)
	}
	if scheduledParams["sale_id"] != "sale-1" || scheduledParams["workflow_run_id"] != result.WorkflowRunID {
		t.Fatalf("unexpected task params: %+v", scheduledParams)
	}

	run, err := runs.Get(result.WorkflowRunID)
	if err != nil {
		t.Fatalf("run lookup failed: %v", err)
	}
	if run.Status != domain.RunStatusRunning {
		t.Fatalf("run must stay running until the request is sent, got %s", run.Status)
	}
	if len(run.ActionsPerformed) != 1 || run.ActionsPerformed[0].Type != "schedule_review_request" {
		t.Fatalf("unexpected actions: %+v", run.ActionsPerformed)
	}
}

func TestProcessCompletedSaleNoActiveWorkflow(t *testing.T) {
	t.Parallel()

	store := docstore.NewMemStore()
	doc, _ := docstore.Encode(domain.Sale{CompanyID: "company-1", CustomerName: "Ben"})
	if _, err := store.Create(domain.CollectionSales, doc, "sale-1"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	svc := NewService(Dependencies{Store: store, Runs: ledger.New(store)})
	result := svc.ProcessCompletedSale(context.Background(), "sale-1")
	if result.Success {
		t.Fatalf("expected failure without a config")
	}
	if result.Message != "No active workflow found" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestSendReviewRequestCompletesRun(t *testing.T) {
	t.Parallel()

	now, _ := time.Parse(time.RFC3339, "2026-03-12T09:00:00Z")
	store := docstore.NewMemStore()
	seedSale(t, store)
	runs := ledger.NewWithClock(store, func() time.Time { return now })
	run, err := runs.Open("company-1", "cfg-1", domain.TriggerTypeSaleCompleted, "sale-1")
	if err != nil {
		t.Fatalf("open run failed: %v", err)
	}

	var sent dispatch.Message
	svc := NewService(Dependencies{
		Store: store,
		Runs:  runs,
		Dispatcher: adapters.Dispatcher{
			SendFunc: func(_ context.Context, channel string, to dispatch.Recipient, msg dispatch.Message) (dispatch.Outcome, error) {
				if channel != domain.InteractionTypeEmail {
					t.Fatalf("expected email channel, got %s", channel)
				}
				if to.Email != "ben@example.com" {
					t.Fatalf("unexpected recipient: %+v", to)
				}
				sent = msg
				return dispatch.Outcome{Success: true, MessageID: "msg-1"}, nil
			},
		},
		TextGen: adapters.TextGenerator{
			GenerateFunc: func(_ context.Context, prompt string) (string, error) {
				if !strings.Contains(prompt, "review") {
					t.Fatalf("unexpected prompt: %q", prompt)
				}
				return "Please leave us a review!", nil
			},
		},
		Now: func() time.Time { return now },
	})

	result := svc.SendReviewRequest(context.Background(), "sale-1", run.ID)
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Message != "Review request email sent" {
		t.Fatalf("unexpected message: %q", result.Message)
	}
	if !strings.Contains(sent.Subject, "Acme Plumbing") {
		t.Fatalf("subject should name the business, got %q", sent.Subject)
	}

	got, _ := runs.Get(run.ID)
	if got.Status != domain.RunStatusCompleted {
		t.Fatalf("run must complete after the request is sent, got %s", got.Status)
	}

	interactions := store.Query(domain.CollectionInteractions, docstore.Query{})
	if len(interactions) != 1 {
		t.Fatalf("expected 1 recorded interaction, got %d", len(interactions))
	}
	if interactions[0]["direction"] != domain.DirectionOutbound {
		t.Fatalf("unexpected interaction: %+v", interactions[0])
	}
}

func TestProcessCompletedSaleDefaultDelay(t *testing.T) {
	t.Parallel()

	now, _ := time.Parse(time.RFC3339, "2026-03-10T09:00:00Z")
	store := docstore.NewMemStore()
	for _, fixture := range []struct {
		collection string
		id         string
		doc        interface{}
	}{
		{domain.CollectionSales, "sale-1", domain.Sale{CompanyID: "company-1", CustomerName: "Ben", CustomerEmail: "ben@example.com"}},
		{domain.CollectionWorkflowConfigs, "cfg-1", domain.WorkflowConfig{
			ID: "cfg-1", CompanyID: "company-1",
			WorkflowType: domain.WorkflowTypeReviewReferral, Active: true,
		}},
	} {
		doc, _ := docstore.Encode(fixture.doc)
		if _, err := store.Create(fixture.collection, doc, fixture.id); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	var scheduledAt time.Time
	svc := NewService(Dependencies{
		Store: store,
		Runs:  ledger.NewWithClock(store, func() time.Time { return now }),
		Scheduler: adapters.TaskScheduler{
			ScheduleTaskFunc: func(_ string, _ map[string]interface{}, executeAt time.Time, _ string) (domain.ScheduledTask, error) {
				scheduledAt = executeAt
				return domain.ScheduledTask{ID: "task-1"}, nil
			},
		},
		Now: func() time.Time { return now },
	})

	if result := svc.ProcessCompletedSale(context.Background(), "sale-1"); !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if want := now.Add(3 * 24 * time.Hour); !scheduledAt.Equal(want) {
		t.Fatalf("expected default 3-day delay, got %s", scheduledAt)
	}
}
