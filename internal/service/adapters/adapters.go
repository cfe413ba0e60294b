// Package adapters holds func-field implementations of the service ports.
// They are the seam the tests use and the glue the server wires real
// components through.
package adapters

import (
	"context"
	"errors"
	"time"

	"bizflow/apps/orchestrator/internal/dispatch"
	"bizflow/apps/orchestrator/internal/domain"
	"bizflow/apps/orchestrator/internal/service/ports"
)

type Dispatcher struct {
	SendFunc func(ctx context.Context, channel string, to dispatch.Recipient, msg dispatch.Message) (dispatch.Outcome, error)
}

func (d Dispatcher) Send(ctx context.Context, channel string, to dispatch.Recipient, msg dispatch.Message) (dispatch.Outcome, error) {
	if d.SendFunc == nil {
		return dispatch.Outcome{}, errors.New("dispatcher is unavailable")
	}
	return d.SendFunc(ctx, channel, to, msg)
}

type TextGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
}

func (g TextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.GenerateFunc == nil {
		return "", errors.New("text generator is unavailable")
	}
	return g.GenerateFunc(ctx, prompt)
}

type EmailTransport struct {
	SendEmailFunc func(ctx context.Context, to, toName, subject, body, fromName string) (ports.SendReceipt, error)
}

func (t EmailTransport) SendEmail(ctx context.Context, to, toName, subject, body, fromName string) (ports.SendReceipt, error) {
	if t.SendEmailFunc == nil {
		return ports.SendReceipt{}, errors.New("email transport is unavailable")
	}
	return t.SendEmailFunc(ctx, to, toName, subject, body, fromName)
}

type SmsTransport struct {
	SendSMSFunc func(ctx context.Context, to, body string) (ports.SendReceipt, error)
}

func (t SmsTransport) SendSMS(ctx context.Context, to, body string) (ports.SendReceipt, error) {
	if t.SendSMSFunc == nil {
		return ports.SendReceipt{}, errors.New("sms transport is unavailable")
	}
	return t.SendSMSFunc(ctx, to, body)
}

type TaskScheduler struct {
	ScheduleTaskFunc       func(taskType string, params map[string]interface{}, executeAt time.Time, companyID string) (domain.ScheduledTask, error)
	CancelTaskFunc         func(taskID string) domain.TaskStatusResult
	ListScheduledTasksFunc func(companyID, taskType, status string) []domain.ScheduledTask
}

func (s TaskScheduler) ScheduleTask(taskType string, params map[string]interface{}, executeAt time.Time, companyID string) (domain.ScheduledTask, error) {
	if s.ScheduleTaskFunc == nil {
		return domain.ScheduledTask{}, errors.New("task scheduler is unavailable")
	}
	return s.ScheduleTaskFunc(taskType, params, executeAt, companyID)
}

func (s TaskScheduler) CancelTask(taskID string) domain.TaskStatusResult {
	if s.CancelTaskFunc == nil {
		return domain.TaskStatusResult{TaskID: taskID, Status: domain.TaskStatusNotFound}
	}
	return s.CancelTaskFunc(taskID)
}

func (s TaskScheduler) ListScheduledTasks(companyID, taskType, status string) []domain.ScheduledTask {
	if s.ListScheduledTasksFunc == nil {
		return nil
	}
	return s.ListScheduledTasksFunc(companyID, taskType, status)
}
