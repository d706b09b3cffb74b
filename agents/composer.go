package agents

import (
	"context"
	"strings"
)

// Fixed replies of the grounding contract. They are produced verbatim so
// callers and tests can match on them.
const (
	// RefusalReply answers queries outside farming.
	RefusalReply = "This query is not related to farming."
	// InsufficientDataReply answers turns with no verified data.
	InsufficientDataReply = "I don't have enough verified data to answer."

	templateHeader = "Verified information:"
	templateFooter = "Ask a follow-up to refine location or crop if needed."
)

// Composer rewrites a grounded answer as prose. Implementations receive
// the grounding payload and nothing else; in particular they never see
// the user's question, so they cannot answer from anything but tool
// output. A Composer is optional: without one, or when one errors, the
// orchestrator falls back to ComposeTemplate.
type Composer interface {
	Compose(ctx context.Context, answer *GroundedAnswer) (string, error)
}

// ComposerFunc adapts a function to the Composer interface.
type ComposerFunc func(ctx context.Context, answer *GroundedAnswer) (string, error)

// Compose implements Composer.
func (f ComposerFunc) Compose(ctx context.Context, answer *GroundedAnswer) (string, error) {
	return f(ctx, answer)
}

// ComposeTemplate is the deterministic reply path: the tool messages
// stitched together in selection order. Every fact in the reply is a
// tool message verbatim, so changing a result changes the reply the
// same way. Failed tools contribute their unavailability notes; with no
// successful tool at all the reply opens with the insufficient-data
// text instead of the header.
func ComposeTemplate(answer *GroundedAnswer) string {
	grounded := answer.Grounded()
	failed := failedMessages(answer)

	if len(grounded) == 0 {
		parts := append([]string{InsufficientDataReply}, failed...)
		return strings.Join(parts, "\n")
	}

	sb := new(strings.Builder)
	sb.WriteString(templateHeader)
	for _, res := range grounded {
		sb.WriteString("\n\n" + res.Message)
	}
	for _, msg := range failed {
		sb.WriteString("\n\n" + msg)
	}
	sb.WriteString("\n\n" + templateFooter)
	return sb.String()
}

func failedMessages(answer *GroundedAnswer) []string {
	var out []string
	for _, res := range answer.Results {
		if res == nil || res.Success || res.Message == "" {
			continue
		}
		out = append(out, res.Message)
	}
	return out
}
