package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderMock produces deterministic offline output for local testing.
	AIProviderMock AIProvider = "mock"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API (LLM only).
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderMock, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs without network access to a cloud API.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderMock
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderMock:
		return "Mock (offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects the session store implementation.
type StorageBackend string

// Available storage backends. Both keep data in process memory only.
const (
	StorageBackendMemory StorageBackend = "memory"
	StorageBackendSQLite StorageBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageBackendMemory || b == StorageBackendSQLite
}

// ChunkingSettings controls how page text is windowed.
type ChunkingSettings struct {
	// Size is the window width in characters.
	Size int

	// Overlap is the number of characters shared by consecutive windows.
	Overlap int
}

// Validate returns ErrInvalidConfiguration unless Size > Overlap >= 0.
func (c ChunkingSettings) Validate() error {
	if c.Overlap < 0 || c.Size <= c.Overlap {
		return fmt.Errorf("%w: chunk size %d must exceed overlap %d (overlap >= 0)",
			ErrInvalidConfiguration, c.Size, c.Overlap)
	}
	return nil
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector width of the mock provider.
	Dimensions int

	// BatchSize is the number of texts sent per embedding request.
	BatchSize int

	// RequestsPerSecond throttles calls to the provider. Zero disables throttling.
	RequestsPerSecond float64
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p.IsValid() && p != AIProviderAnthropic
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Temperature is the sampling temperature for answers.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings controls query-time retrieval.
type RetrievalSettings struct {
	// TopK is the number of passages retrieved per question.
	TopK int

	// MaxPassageChars bounds each passage's text in the answer prompt.
	MaxPassageChars int
}

// ServerSettings holds HTTP API configuration.
type ServerSettings struct {
	// Address is the listen address.
	Address string

	// RequestsPerSecond is the sustained request rate across all clients.
	RequestsPerSecond float64

	// Burst is the maximum request burst.
	Burst int

	// MaxUploadBytes bounds the size of an uploaded file.
	MaxUploadBytes int64
}

// StorageSettings selects the session store.
type StorageSettings struct {
	Backend StorageBackend
}

// AppSettings holds all application settings.
type AppSettings struct {
	Chunking  ChunkingSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Server    ServerSettings
	Storage   StorageSettings
}

// Validate checks the settings can be used to build the service graph.
func (s AppSettings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if !s.Embedding.Provider.SupportsEmbeddings() {
		return fmt.Errorf("%w: unsupported embedding provider %q", ErrInvalidConfiguration, s.Embedding.Provider)
	}
	if s.LLM.Provider != "" && !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfiguration, s.LLM.Provider)
	}
	if s.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: top k must be at least 1, got %d", ErrInvalidConfiguration, s.Retrieval.TopK)
	}
	if s.Embedding.BatchSize < 1 {
		return fmt.Errorf("%w: embedding batch size must be at least 1", ErrInvalidConfiguration)
	}
	if !s.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfiguration, s.Storage.Backend)
	}
	return nil
}

// Default settings values.
const (
	DefaultChunkSize       = 1500
	DefaultChunkOverlap    = 200
	DefaultTopK            = 6
	DefaultMockDimensions  = 10
	DefaultBatchSize       = 64
	DefaultMaxPassageChars = 1200
	DefaultServerAddress   = "127.0.0.1:3000"
)

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings and answers run on the mock provider until a real provider is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderMock,
			Dimensions: DefaultMockDimensions,
			BatchSize:  DefaultBatchSize,
		},
		LLM: LLMSettings{
			Provider:    AIProviderMock,
			Temperature: 0.2,
		},
		Retrieval: RetrievalSettings{
			TopK:            DefaultTopK,
			MaxPassageChars: DefaultMaxPassageChars,
		},
		Server: ServerSettings{
			Address:           DefaultServerAddress,
			RequestsPerSecond: 20,
			Burst:             40,
			MaxUploadBytes:    50 << 20,
		},
		Storage: StorageSettings{
			Backend: StorageBackendMemory,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderMock,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderMock,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderMock:   "mock-hash",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-haiku-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
