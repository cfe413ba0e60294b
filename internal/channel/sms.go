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

// SMS bodies beyond this length would be split into segments by a real
// carrier; the mock only warns.
const smsSegmentLength = 160

type SmsSender struct {
	provider   string
	fromNumber string
}

func NewSmsSender() *SmsSender {
	provider := strings.TrimSpace(os.Getenv("SMS_PROVIDER"))
	if provider == "" {
		provider = "twilio"
	}
	return &SmsSender{
		provider:   provider,
		fromNumber: strings.TrimSpace(os.Getenv("SMS_FROM_NUMBER")),
	}
}

func (s *SmsSender) SendSMS(ctx context.Context, to, body string) (ports.SendReceipt, error) {
	if strings.TrimSpace(to) == "" {
		return ports.SendReceipt{Provider: s.provider}, errors.New("sms recipient is required")
	}
	select {
	case <-ctx.Done():
		return ports.SendReceipt{Provider: s.provider}, ctx.Err()
	default:
	}

	if len(body) > smsSegmentLength {
		log.Printf("[sms:%s] body exceeds %d chars, would be sent as %d segments", s.provider, smsSegmentLength, (len(body)+smsSegmentLength-1)/smsSegmentLength)
	}
	log.Printf("[sms:%s] to=%s from=%s bytes=%d", s.provider, to, s.fromNumber, len(body))
	return ports.SendReceipt{
		Success:   true,
		MessageID: fmt.Sprintf("mock-sms-%d-%s", time.Now().UTC().Unix(), uuid.NewString()[:8]),
		Provider:  s.provider,
	}, nil
}
