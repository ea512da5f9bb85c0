package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// ollamaServer answers /api/tags and returns width-wide vectors from /api/embed.
func ollamaServer(t *testing.T, width int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[]}`))
		case "/api/embed":
			vec := make([]float64, width)
			vec[0] = 1
			_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float64{vec}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewConfigValidator(t *testing.T) {
	assert.Equal(t, pingTimeout, NewConfigValidator().timeout)
	assert.Equal(t, time.Second, NewConfigValidator(WithValidationTimeout(time.Second)).timeout)
	assert.Equal(t, pingTimeout, NewConfigValidator(WithValidationTimeout(0)).timeout)
}

func TestConfigValidator_ValidateEmbedding(t *testing.T) {
	validator := NewConfigValidator()

	t.Run("nil and unconfigured settings pass", func(t *testing.T) {
		assert.NoError(t, validator.ValidateEmbedding(nil))
		assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{Model: "nomic-embed-text"}))
		assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI}))
	})

	t.Run("mock needs no network", func(t *testing.T) {
		assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{
			Provider:   domain.AIProviderMock,
			Dimensions: 16,
		}))
	})

	t.Run("ollama with expected width", func(t *testing.T) {
		srv := ollamaServer(t, 768)

		assert.NoError(t, validator.ValidateEmbedding(&domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  srv.URL,
			Model:    "nomic-embed-text",
		}))
	})

	t.Run("ollama with unexpected width", func(t *testing.T) {
		srv := ollamaServer(t, 384)

		err := validator.ValidateEmbedding(&domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  srv.URL,
			Model:    "nomic-embed-text",
		})

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.ErrorContains(t, err, "returned 384 dimensions, expected 768")
	})

	t.Run("unreachable ollama", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		err := validator.ValidateEmbedding(&domain.EmbeddingSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  srv.URL,
		})

		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestConfigValidator_ValidateLLM(t *testing.T) {
	validator := NewConfigValidator()

	t.Run("nil, unset and mock settings pass", func(t *testing.T) {
		assert.NoError(t, validator.ValidateLLM(nil))
		assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Model: "llama3.2"}))
		assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderMock}))
	})

	t.Run("unknown provider is not configured", func(t *testing.T) {
		assert.NoError(t, validator.ValidateLLM(&domain.LLMSettings{Provider: "unknown", APIKey: "k"}))
	})

	t.Run("rejected key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/models", r.URL.Path)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		err := validator.ValidateLLM(&domain.LLMSettings{
			Provider: domain.AIProviderAnthropic,
			APIKey:   "bad",
			BaseURL:  srv.URL,
		})

		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}
