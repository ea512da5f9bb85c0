package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexbrief/internal/adapters/driven/storage/storetest"
	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

func newTestAnswer(t *testing.T, llm driven.LLMService, opts ...AnswerOption) *AnswerService {
	t.Helper()
	embedder := newMockEmbedder("tort", "contract")
	first := storetest.Chunk("d", 736, 0, embedder.vector("tort")...)
	first.Text = "The tort of negligence requires a duty of care."
	second := storetest.Chunk("d", 737, 0, embedder.vector("contract")...)
	second.Text = "A contract is formed by offer and acceptance."

	store := seedStore(t, first, second)
	return NewAnswerService(NewRetrievalService(store, embedder), llm, opts...)
}

func TestAnswerService_Ask_NothingRetrieved(t *testing.T) {
	llm := &mockLLM{}
	service := NewAnswerService(NewRetrievalService(seedStore(t), newMockEmbedder("x")), llm)

	result, err := service.Ask(context.Background(), "s", "what is a tort?")

	require.NoError(t, err)
	assert.Equal(t, domain.NotFoundAnswer(), result.Answer)
	assert.Empty(t, result.Retrieved)
	assert.Equal(t, 0, llm.calls)
}

func TestAnswerService_Ask_WithLLM(t *testing.T) {
	llm := &mockLLM{reply: `{"answer":"Negligence needs a duty *736.","page_hits":[736],` +
		`"citations":[{"page":736,"snippet":"requires a duty of care"}],"reasoning":"Passage 1."}`}
	service := newTestAnswer(t, llm)

	result, err := service.Ask(context.Background(), "s", "what does a tort require?")

	require.NoError(t, err)
	assert.Equal(t, "Negligence needs a duty *736.", result.Answer.Answer)
	assert.Equal(t, []int{736}, result.Answer.PageHits)
	require.Len(t, result.Answer.Citations, 1)
	assert.Equal(t, 736, result.Answer.Citations[0].Page)
	assert.Len(t, result.Retrieved, 2)

	assert.True(t, llm.opts.JSON)
	assert.InDelta(t, 0.2, llm.opts.Temperature, 1e-9)
	require.Len(t, llm.messages, 4)
	assert.Equal(t, "system", llm.messages[0].Role)
	assert.Equal(t, defaultAnswerSystemPrompt, llm.messages[0].Content)
	assert.Equal(t, "Question: what does a tort require?\nUse ONLY the passages below. Return strict JSON.",
		llm.messages[1].Content)
	assert.True(t, strings.HasPrefix(llm.messages[2].Content, "# Passage 1\n[page *736] (score="))
	assert.True(t, strings.HasPrefix(llm.messages[3].Content, "# Passage 2\n[page *737] (score="))
}

func TestAnswerService_Ask_TopK(t *testing.T) {
	llm := &mockLLM{reply: `{"answer":"x","page_hits":[]}`}
	service := newTestAnswer(t, llm, WithTopK(1))

	result, err := service.Ask(context.Background(), "s", "contract formation")

	require.NoError(t, err)
	require.Len(t, result.Retrieved, 1)
	assert.Equal(t, 737, result.Retrieved[0].Chunk.PageLabel)
	assert.Len(t, llm.messages, 3)
}

func TestAnswerService_Ask_MalformedReply(t *testing.T) {
	service := newTestAnswer(t, &mockLLM{reply: "Sure! The answer is on page 736."})

	result, err := service.Ask(context.Background(), "s", "tort?")

	require.NoError(t, err)
	assert.Equal(t, domain.MalformedAnswer(), result.Answer)
}

func TestAnswerService_Ask_LLMFailure(t *testing.T) {
	service := newTestAnswer(t, &mockLLM{err: errors.New("503 service unavailable")})

	_, err := service.Ask(context.Background(), "s", "tort?")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAnswerService_Ask_WithoutLLM(t *testing.T) {
	service := newTestAnswer(t, nil)

	result, err := service.Ask(context.Background(), "s", "tort duty")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.Answer.Answer, "🤖 Mock Answer: \"tort duty\"."))
	assert.Equal(t, []int{736, 737}, result.Answer.PageHits)
	require.Len(t, result.Answer.Citations, 2)
	assert.Equal(t, "The tort of negligence requires a duty of care.", result.Answer.Citations[0].Snippet)
}

func TestAnswerService_Ask_PromptStore(t *testing.T) {
	llm := &mockLLM{reply: `{"answer":"x","page_hits":[]}`}
	service := newTestAnswer(t, llm)
	service.SetPromptStore(&mockPromptStore{prompts: map[string]string{
		driven.PromptAnswerSystem: "Custom system.",
	}})

	_, err := service.Ask(context.Background(), "s", "tort?")

	require.NoError(t, err)
	assert.Equal(t, "Custom system.", llm.messages[0].Content)
	// Missing prompts fall back to the defaults.
	assert.True(t, strings.HasPrefix(llm.messages[1].Content, "Question: tort?\n"))
}

func TestAnswerService_Chat(t *testing.T) {
	t.Run("without llm", func(t *testing.T) {
		service := NewAnswerService(nil, nil)

		got, err := service.Chat(context.Background(), "q", []domain.RetrievedPassage{{PageNum: 3, Text: "abc"}})

		require.NoError(t, err)
		assert.Equal(t, "🤖 Mock Answer: \"q\".\n\nTop snippets:\n• p.3: abc…", got)
	})

	t.Run("with llm", func(t *testing.T) {
		llm := &mockLLM{reply: "See *736."}
		service := NewAnswerService(nil, llm)

		got, err := service.Chat(context.Background(), "what is a tort?", nil)

		require.NoError(t, err)
		assert.Equal(t, "See *736.", got)
		require.Len(t, llm.messages, 2)
		assert.Equal(t, chatSystemPrompt, llm.messages[0].Content)
		assert.Equal(t, "what is a tort?", llm.messages[1].Content)
		assert.False(t, llm.opts.JSON)
	})

	t.Run("with llm sends snippets", func(t *testing.T) {
		llm := &mockLLM{reply: "See *736."}
		service := NewAnswerService(nil, llm, WithMaxPassageChars(10))

		_, err := service.Chat(context.Background(), "what is a tort?", []domain.RetrievedPassage{
			{PageNum: 736, Text: "a civil wrong", Score: 0.5},
			{PageNum: 737, Text: "duty of care owed to all"},
		})

		require.NoError(t, err)
		require.Len(t, llm.messages, 4)
		assert.Equal(t, "what is a tort?", llm.messages[1].Content)
		assert.Equal(t, "user", llm.messages[2].Role)
		assert.Contains(t, llm.messages[2].Content, "[page *736] (score=0.500)")
		assert.Contains(t, llm.messages[2].Content, "a civil wr")
		assert.Contains(t, llm.messages[3].Content, "# Passage 2")
		assert.Contains(t, llm.messages[3].Content, "[page *737]")
		assert.NotContains(t, llm.messages[3].Content, "owed to all")
	})

	t.Run("empty question", func(t *testing.T) {
		_, err := NewAnswerService(nil, nil).Chat(context.Background(), " ", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("llm failure", func(t *testing.T) {
		_, err := NewAnswerService(nil, &mockLLM{err: errors.New("boom")}).Chat(context.Background(), "q", nil)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}

func TestMockChatText(t *testing.T) {
	long := strings.Repeat("x", 200)

	tests := []struct {
		name     string
		snippets []domain.RetrievedPassage
		want     string
	}{
		{
			name: "no snippets",
			want: "🤖 Mock Answer: \"q\".\n\nTop snippets:\n• (no snippets)",
		},
		{
			name: "two of three snippets",
			snippets: []domain.RetrievedPassage{
				{PageNum: 1, Text: "one"},
				{PageNum: 2, Text: "two"},
				{PageNum: 3, Text: "three"},
			},
			want: "🤖 Mock Answer: \"q\".\n\nTop snippets:\n• p.1: one…\n• p.2: two…",
		},
		{
			name:     "truncated to 160 characters",
			snippets: []domain.RetrievedPassage{{PageNum: 9, Text: long}},
			want:     "🤖 Mock Answer: \"q\".\n\nTop snippets:\n• p.9: " + strings.Repeat("x", 160) + "…",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MockChatText("q", tt.snippets))
		})
	}
}

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  domain.Answer
	}{
		{
			name:  "valid",
			reply: `{"answer":"Yes *12.","page_hits":[12],"citations":[{"page":12,"snippet":"yes"}],"reasoning":"r"}`,
			want: domain.Answer{
				Answer:    "Yes *12.",
				PageHits:  []int{12},
				Citations: []domain.Citation{{Page: 12, Snippet: "yes"}},
				Reasoning: "r",
			},
		},
		{
			name:  "missing citations",
			reply: `{"answer":"Yes","page_hits":[]}`,
			want:  domain.Answer{Answer: "Yes", PageHits: []int{}, Citations: []domain.Citation{}},
		},
		{
			name:  "code fence",
			reply: "```json\n{\"answer\":\"Yes\",\"page_hits\":[1]}\n```",
			want:  domain.Answer{Answer: "Yes", PageHits: []int{1}, Citations: []domain.Citation{}},
		},
		{name: "not found", reply: `{"answer":"Not found in document.","page_hits":[],"citations":[],"reasoning":"Searched top-ranked passages; nothing matched exactly."}`, want: domain.NotFoundAnswer()},
		{name: "empty", reply: "", want: domain.MalformedAnswer()},
		{name: "prose", reply: "The answer is 12.", want: domain.MalformedAnswer()},
		{name: "missing page_hits", reply: `{"answer":"Yes"}`, want: domain.MalformedAnswer()},
		{name: "null page_hits", reply: `{"answer":"Yes","page_hits":null}`, want: domain.MalformedAnswer()},
		{name: "answer not a string", reply: `{"answer":12,"page_hits":[]}`, want: domain.MalformedAnswer()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAnswer(tt.reply))
		})
	}
}

func TestFormatPassage(t *testing.T) {
	r := domain.RetrievalResult{
		Chunk: domain.Chunk{PageLabel: 523, Text: strings.Repeat("é", 1300)},
		Score: 0.12345,
	}

	got := FormatPassage(2, r, 1200)

	assert.Equal(t, "# Passage 2\n[page *523] (score=0.123)\n"+strings.Repeat("é", 1200), got)
}
