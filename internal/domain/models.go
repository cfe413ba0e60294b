package domain

const (
	WorkflowTypeLeadNurturing     = "lead_nurturing"
	WorkflowTypeReviewReferral    = "review_referral"
	WorkflowTypeContentGeneration = "content_generation"

	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"

	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusEngaged   = "engaged"

	InteractionTypeEmail   = "email"
	InteractionTypeSMS     = "sms"
	InteractionTypeCall    = "call"
	InteractionTypeMeeting = "meeting"
	InteractionTypeNote    = "note"

	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"

	ChannelManual            = "manual"
	ChannelAutomatedWorkflow = "automated_workflow"
	ChannelAPI               = "api"

	InteractionStatusDelivered = "delivered"
	InteractionStatusFailed    = "failed"
	InteractionStatusReceived  = "received"

	ContentStatusDraft     = "draft"
	ContentStatusPublished = "published"

	TriggerTypeNewLead       = "new_lead"
	TriggerTypeSaleCompleted = "sale_completed"
	TriggerTypeSchedule      = "schedule"

	TaskStatusScheduled = "scheduled"
	TaskStatusCancelled = "cancelled"
	TaskStatusExecuted  = "executed"
	TaskStatusNotFound  = "not_found"

	TaskTypeLeadFollowUp      = "lead_followup"
	TaskTypeReviewRequest     = "review_request"
	TaskTypeContentGeneration = "content_generation"

	FrequencyHourly  = "hourly"
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyCron    = "cron"
)

// Collection names in the document store.
const (
	CollectionCompanies       = "companies"
	CollectionLeads           = "leads"
	CollectionSales           = "sales"
	CollectionWorkflowConfigs = "workflow_configs"
	CollectionWorkflowRuns    = "workflow_runs"
	CollectionInteractions    = "interactions"
	CollectionScheduledTasks  = "scheduled_tasks"
	CollectionRecurringTasks  = "recurring_tasks"
	CollectionContent         = "content"
)

type APIErrorBody struct {
	Error APIError `json:"error"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Company struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Industry  string                 `json:"industry,omitempty"`
	Settings  map[string]interface{} `json:"settings,omitempty"`
	CreatedAt string                 `json:"created_at,omitempty"`
	UpdatedAt string                 `json:"updated_at,omitempty"`
}

type Lead struct {
	ID        string   `json:"id"`
	CompanyID string   `json:"company_id"`
	Name      string   `json:"name"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Source    string   `json:"source"`
	Status    string   `json:"status"`
	Notes     string   `json:"notes,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

type Sale struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"company_id"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email,omitempty"`
	CustomerPhone string  `json:"customer_phone,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	CompletedAt   string  `json:"completed_at,omitempty"`
}

// WorkflowTriggers describes the predicate attached to a workflow config.
// A nil LeadSource means the config matches every lead regardless of source.
type WorkflowTriggers struct {
	LeadSource []string `json:"lead_source,omitempty"`
}

type FollowUpSpec struct {
	DelayHours      int    `json:"delay_hours"`
	MessageTemplate string `json:"message_template,omitempty"`
}

type WorkflowActions struct {
	Channel         string         `json:"channel,omitempty"`
	MessageTemplate string         `json:"message_template,omitempty"`
	FollowUp        []FollowUpSpec `json:"follow_up,omitempty"`
	DelayDays       int            `json:"delay_days,omitempty"`
}

type WorkflowConfig struct {
	ID           string            `json:"id"`
	CompanyID    string            `json:"company_id"`
	Name         string            `json:"name,omitempty"`
	WorkflowType string            `json:"workflow_type"`
	Active       bool              `json:"active"`
	Triggers     WorkflowTriggers  `json:"triggers"`
	Actions      WorkflowActions   `json:"actions"`
	Templates    map[string]string `json:"templates,omitempty"`
	CreatedAt    string            `json:"created_at,omitempty"`
	UpdatedAt    string            `json:"updated_at,omitempty"`
}

// ActionRecord is one entry in a run's append-only action log.
type ActionRecord struct {
	Type      string                 `json:"type"`
	Timestamp string                 `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

type WorkflowRun struct {
	ID               string                 `json:"id"`
	CompanyID        string                 `json:"company_id"`
	WorkflowConfigID string                 `json:"workflow_config_id"`
	Status           string                 `json:"status"`
	StartedAt        string                 `json:"started_at"`
	CompletedAt      *string                `json:"completed_at,omitempty"`
	TriggerType      string                 `json:"trigger_type"`
	TriggerID        string                 `json:"trigger_id"`
	ActionsPerformed []ActionRecord         `json:"actions_performed"`
	Results          map[string]interface{} `json:"results,omitempty"`
}

type Interaction struct {
	ID         string                 `json:"id"`
	CompanyID  string                 `json:"company_id"`
	LeadID     string                 `json:"lead_id,omitempty"`
	CustomerID string                 `json:"customer_id,omitempty"`
	Type       string                 `json:"type"`
	Direction  string                 `json:"direction"`
	Content    string                 `json:"content"`
	Channel    string                 `json:"channel"`
	Status     string                 `json:"status"`
	CreatedAt  string                 `json:"created_at"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// ScheduleSpec describes when a recurring task fires. StartAt anchors the
// hour/minute (and weekday/day defaults); DayOfWeek and DayOfMonth override
// the anchor for weekly and monthly schedules. Frequency "cron" uses Expr
// instead, parsed as a cron expression in Timezone (UTC when empty).
type ScheduleSpec struct {
	Frequency  string `json:"frequency"`
	StartAt    string `json:"start_at,omitempty"`
	DayOfWeek  *int   `json:"day_of_week,omitempty"`
	DayOfMonth *int   `json:"day_of_month,omitempty"`
	Expr       string `json:"expr,omitempty"`
	Timezone   string `json:"timezone,omitempty"`
}

type ScheduledTask struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Params     map[string]interface{} `json:"params,omitempty"`
	ExecuteAt  string                 `json:"execute_at"`
	CompanyID  string                 `json:"company_id,omitempty"`
	Status     string                 `json:"status"`
	CreatedAt  string                 `json:"created_at"`
	ExecutedAt *string                `json:"executed_at,omitempty"`
}

type RecurringTask struct {
	ID              string                 `json:"id"`
	Type            string                 `json:"type"`
	Params          map[string]interface{} `json:"params,omitempty"`
	Schedule        ScheduleSpec           `json:"schedule"`
	CompanyID       string                 `json:"company_id,omitempty"`
	Status          string                 `json:"status"`
	CreatedAt       string                 `json:"created_at"`
	LastExecutedAt  *string                `json:"last_executed_at,omitempty"`
	NextExecutionAt string                 `json:"next_execution_at"`
}

type ContentItem struct {
	ID          string                 `json:"id"`
	CompanyID   string                 `json:"company_id"`
	ContentType string                 `json:"content_type"`
	Topic       string                 `json:"topic,omitempty"`
	Body        string                 `json:"body"`
	Status      string                 `json:"status"`
	CreatedAt   string                 `json:"created_at"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// WorkflowResult is the structured outcome every workflow operation returns.
// Operations never panic through to the background executor; failures are
// folded into Success=false with a human-readable message.
type WorkflowResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	WorkflowRunID string `json:"workflow_run_id,omitempty"`
	InteractionID string `json:"interaction_id,omitempty"`
}

type TaskStatusResult struct {
	TaskID          string  `json:"task_id"`
	Status          string  `json:"status"`
	ExecutedAt      *string `json:"executed_at,omitempty"`
	NextExecutionAt *string `json:"next_execution_at,omitempty"`
}
