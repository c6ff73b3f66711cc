package llm

import "context"

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// GenerateRequest describes one generation call. When Schema is set the
// client must return the raw JSON payload produced for that schema (via the
// provider's tool/function-calling mechanism) instead of free text.
type GenerateRequest struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	Schema      *ResponseSchema
}

// Client is a generation backend. Transport failures, refusals and empty
// responses all surface as errors; callers treat them as stage-level
// generation failures.
type Client interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
