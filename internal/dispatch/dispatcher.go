// Package dispatch sends one outbound message on a chosen channel and
// normalizes the transport's answer into a DeliveryOutcome. It persists
// nothing and never retries; recording the interaction is the caller's job.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"bizflow/apps/orchestrator/internal/domain"
)

var ErrMissingContactInfo = errors.New("missing_contact_info")

type UnsupportedChannelError struct {
	Channel string
}

func (e *UnsupportedChannelError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("unsupported channel: %s", e.Channel)
}

type Recipient struct {
	Name  string
	Email string
	Phone string
}

func LeadRecipient(lead domain.Lead) Recipient {
	return Recipient{Name: lead.Name, Email: lead.Email, Phone: lead.Phone}
}

type Message struct {
	Subject  string
	Body     string
	FromName string
}

type Outcome struct {
	Success   bool   `json:"success"`
	Provider  string `json:"provider,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

type Dependencies struct {
	Email EmailTransport
	Sms   SmsTransport
}

type Dispatcher struct {
	deps Dependencies
}

func New(deps Dependencies) *Dispatcher {
	return &Dispatcher{deps: deps}
}

// Send dispatches msg to the recipient on the given channel. The recipient's
// contact field for that channel must be non-empty; otherwise the dispatch
// fails before any transport call. A transport-level delivery failure comes
// back as Outcome.Success=false with a nil error.
func (d *Dispatcher) Send(ctx context.Context, channel string, to Recipient, msg Message) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(channel)) {
	case domain.InteractionTypeEmail:
		if strings.TrimSpace(to.Email) == "" {
			return Outcome{}, fmt.Errorf("%w: recipient %q has no email address", ErrMissingContactInfo, to.Name)
		}
		if d.deps.Email == nil {
			return Outcome{}, errors.New("email transport is unavailable")
		}
		receipt, err := d.deps.Email.SendEmail(ctx, to.Email, to.Name, msg.Subject, msg.Body, msg.FromName)
		return outcomeFrom(receipt, err, "email", to.Email), nil
	case domain.InteractionTypeSMS:
		if strings.TrimSpace(to.Phone) == "" {
			return Outcome{}, fmt.Errorf("%w: recipient %q has no phone number", ErrMissingContactInfo, to.Name)
		}
		if d.deps.Sms == nil {
			return Outcome{}, errors.New("sms transport is unavailable")
		}
		receipt, err := d.deps.Sms.SendSMS(ctx, to.Phone, msg.Body)
		return outcomeFrom(receipt, err, "sms", to.Phone), nil
	default:
		return Outcome{}, &UnsupportedChannelError{Channel: channel}
	}
}

func outcomeFrom(receipt SendReceipt, err error, channel, address string) Outcome {
	if err != nil {
		log.Printf("dispatch %s to %s failed: %v", channel, address, err)
		return Outcome{Success: false, Provider: receipt.Provider, Timestamp: nowISO()}
	}
	return Outcome{
		Success:   receipt.Success,
		Provider:  receipt.Provider,
		MessageID: receipt.MessageID,
		Timestamp: nowISO(),
	}
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
