// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService composes answers from a question and retrieved passages.
// It is optional: without one, answers quote the top passage.
//
// Implementations include OpenAI, Anthropic and Ollama.
// Provider failures are reported wrapped with domain.ErrLLMUnavailable.
type LLMService interface {
	// Chat sends the conversation and returns the model's reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures one reply.
type ChatOptions struct {
	// MaxTokens caps the reply length. Zero leaves the provider default.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64

	// JSON asks the provider to constrain the reply to a single JSON object.
	JSON bool
}
