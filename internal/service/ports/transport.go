package ports

import (
	"context"

	"bizflow/apps/orchestrator/internal/dispatch"
)

// The transport types are declared in the dispatch package (which consumes
// them) and aliased here, so that dispatch does not have to import ports,
// which would form an import cycle with workflow.go's dispatch import.

// SendReceipt is what a transport reports back for one message. Success is
// delivery data, not an error: a false receipt still means the transport
// call itself went through.
type SendReceipt = dispatch.SendReceipt

type EmailTransport = dispatch.EmailTransport

type SmsTransport = dispatch.SmsTransport

type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
