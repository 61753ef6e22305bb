package ai

import "context"

// AI is the generation backend. It knows nothing about leads or the DB.
type AI interface {
	// Complete sends a single user prompt and returns the raw text reply.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteJSON sends system+user prompts with JSON output forced on.
	// The reply is the raw JSON string; parsing is the caller's problem.
	CompleteJSON(ctx context.Context, systemPrompt, prompt string) (string, error)
}
