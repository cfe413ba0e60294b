// Package channel holds the message transports. The providers are mocked:
// sends are logged and acknowledged with a generated message id, the same
// contract a real SendGrid or Twilio client would fulfil.
package channel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"bizflow/apps/orchestrator/internal/service/ports"
)

type EmailSender struct {
	provider  string
	fromEmail string
}

func NewEmailSender() *EmailSender {
	provider := strings.TrimSpace(os.Getenv("EMAIL_PROVIDER"))
	if provider == "" {
		provider = "sendgrid"
	}
	fromEmail := strings.TrimSpace(os.Getenv("EMAIL_FROM_ADDRESS"))
	if fromEmail == "" {
		fromEmail = "noreply@example.com"
	}
	return &EmailSender{provider: provider, fromEmail: fromEmail}
}

func (e *EmailSender) SendEmail(ctx context.Context, to, toName, subject, body, fromName string) (ports.SendReceipt, error) {
	if strings.TrimSpace(to) == "" {
		return ports.SendReceipt{Provider: e.provider}, errors.New("email recipient is required")
	}
	select {
	case <-ctx.Done():
		return ports.SendReceipt{Provider: e.provider}, ctx.Err()
	default:
	}

	log.Printf("[email:%s] to=%s from=%s <%s> subject=%q bytes=%d", e.provider, to, fromName, e.fromEmail, subject, len(body))
	return ports.SendReceipt{
		Success:   true,
		MessageID: fmt.Sprintf("mock-email-%d-%s", time.Now().UTC().Unix(), uuid.NewString()[:8]),
		Provider:  e.provider,
	}, nil
}
