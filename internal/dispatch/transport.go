package dispatch

import "context"

// SendReceipt is what a transport reports back for one message. Success is
// delivery data, not an error: a false receipt still means the transport
// call itself went through.
type SendReceipt struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Provider  string `json:"provider,omitempty"`
}

type EmailTransport interface {
	SendEmail(ctx context.Context, to, toName, subject, body, fromName string) (SendReceipt, error)
}

type SmsTransport interface {
	SendSMS(ctx context.Context, to, body string) (SendReceipt, error)
}
