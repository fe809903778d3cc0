// Package llm wraps the OpenAI-compatible chat completion endpoint used to
// polish agent drafts. Enrichment is best-effort: callers fall back to the
// unmodified draft on any error.
package llm

import "context"

// Client produces a rewritten reply from a system instruction and a draft.
// Implementations must honor ctx cancellation.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
