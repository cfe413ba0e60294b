// Package textgen is the text-generation capability. The model call is
// mocked: responses are canned per prompt family, which keeps workflow
// behavior deterministic while preserving the asynchronous, cancellable
// contract a real provider client has.
package textgen

import (
	"context"
	"os"
	"strings"
)

type Generator struct {
	model string
}

func New() *Generator {
	model := strings.TrimSpace(os.Getenv("TEXTGEN_MODEL"))
	if model == "" {
		model = "gpt-4"
	}
	return &Generator{model: model}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "subject line"):
		return "Following up on your inquiry", nil
	case strings.Contains(lower, "final follow-up"):
		return "Hi, this will be my last note on this. If the timing isn't right, no problem at all. The door stays open whenever you'd like to pick this back up.", nil
	case strings.Contains(lower, "follow-up"):
		return "Hi, just checking in on my earlier note. Happy to answer any questions or find a time to talk this week if that's easier.", nil
	case strings.Contains(lower, "replied"):
		return "Thanks for getting back to me! I'd be glad to walk you through the details. Does a short call later this week work for you?", nil
	case strings.Contains(lower, "review"):
		return "Thank you for choosing us! If you have a moment, we'd really appreciate a quick review. Your feedback helps others find us.", nil
	case strings.Contains(lower, "blog"):
		return "# Getting More From Your Business\n\nGrowth rarely comes from one big move. It comes from consistent follow-through on the small ones. Here are the habits that compound.", nil
	default:
		return "Hello, thank you for your interest in our services. I'd love to learn more about your needs and how we can help. Would you be available for a quick call this week?", nil
	}
}
