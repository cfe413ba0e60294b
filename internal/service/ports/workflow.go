package ports

import (
	"context"
	"time"

	"bizflow/apps/orchestrator/internal/dispatch"
	"bizflow/apps/orchestrator/internal/domain"
)

type Dispatcher interface {
	Send(ctx context.Context, channel string, to dispatch.Recipient, msg dispatch.Message) (dispatch.Outcome, error)
}

// TaskScheduler is the slice of the scheduler the workflow services need:
// registering follow-up work and withdrawing it when a reply lands.
type TaskScheduler interface {
	ScheduleTask(taskType string, params map[string]interface{}, executeAt time.Time, companyID string) (domain.ScheduledTask, error)
	CancelTask(taskID string) domain.TaskStatusResult
	ListScheduledTasks(companyID, taskType, status string) []domain.ScheduledTask
}
