package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

func newTestLLM(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewLLMService(Config{APIKey: "sk-ant-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return s
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	s, err := NewLLMService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, s.ModelName())
}

func TestLLMService_Chat_JSONMode(t *testing.T) {
	s := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "be terse", req.System)
		assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
		require.NotNil(t, req.Temperature)
		assert.InDelta(t, 0.0, *req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, messagesMessage{Role: "assistant", Content: "{"}, req.Messages[1])

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"\"answer\":\"ok\"}"}],"stop_reason":"end_turn"}`))
	})

	got, err := s.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "be terse"},
		{Role: "user", Content: "q"},
	}, driven.ChatOptions{JSON: true})

	require.NoError(t, err)
	assert.Equal(t, `{"answer":"ok"}`, got)
}

func TestLLMService_Chat_PlainMode(t *testing.T) {
	s := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"part one "},{"type":"text","text":"part two"}]}`))
	})

	got, err := s.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "q"}}, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, "part one part two", got)
}

func TestLLMService_Chat_NoTurns(t *testing.T) {
	s, err := NewLLMService(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	_, err = s.Chat(context.Background(), []driven.ChatMessage{{Role: "system", Content: "only"}}, driven.ChatOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSplitMessages(t *testing.T) {
	system, turns := splitMessages([]driven.ChatMessage{
		{Role: "system", Content: "a"},
		{Role: "user", Content: "one"},
		{Role: "system", Content: "b"},
		{Role: "user", Content: "two"},
		{Role: "assistant", Content: "reply"},
	})

	assert.Equal(t, "a\n\nb", system)
	assert.Equal(t, []messagesMessage{
		{Role: "user", Content: "one\n\ntwo"},
		{Role: "assistant", Content: "reply"},
	}, turns)
}

func TestLLMService_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "api error", status: http.StatusTooManyRequests, body: `{"error":{"type":"rate_limit_error","message":"slow down"}}`},
		{name: "empty content", status: http.StatusOK, body: `{"content":[]}`},
		{name: "not json", status: http.StatusBadGateway, body: `oops`},
		{name: "status only", status: http.StatusInternalServerError, body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestLLM(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := s.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "q"}}, driven.ChatOptions{})

			assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		})
	}
}

func TestLLMService_Ping(t *testing.T) {
	s := newTestLLM(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	})
	assert.ErrorIs(t, s.Ping(context.Background()), domain.ErrLLMUnavailable)
}
