package driven

import "github.com/custodia-labs/lexbrief/internal/core/domain"

// AIConfigValidator checks provider settings against the live service.
// Settings that name no usable provider pass, so a partial configuration
// can still be saved.
type AIConfigValidator interface {
	// ValidateEmbedding confirms the provider answers and returns vectors
	// of the width the settings imply.
	ValidateEmbedding(settings *domain.EmbeddingSettings) error

	// ValidateLLM confirms the provider answers and accepts the credentials.
	ValidateLLM(settings *domain.LLMSettings) error
}
