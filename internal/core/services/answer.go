package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driving"
	"github.com/custodia-labs/lexbrief/internal/logger"
)

// Ensure AnswerService implements the interfaces.
var (
	_ driving.AnswerService   = (*AnswerService)(nil)
	_ driven.PromptStoreAware = (*AnswerService)(nil)
)

const (
	// mockSnippetCount is how many snippets the offline answer quotes.
	mockSnippetCount = 2

	// mockSnippetChars caps each quoted snippet.
	mockSnippetChars = 160

	// mockReasoning explains offline answers.
	mockReasoning = "No language model configured; quoting the top-ranked passages."

	// chatSystemPrompt is the system prompt for free-form chat.
	chatSystemPrompt = "You are a helpful legal assistant. Cite page numbers when possible."
)

// defaultAnswerSystemPrompt is the fallback prompt when no PromptStore is configured.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const defaultAnswerSystemPrompt = `You are a precise legal-document assistant for law students.
You will receive a user question and retrieved passages with LEGAL/REPORTER page numbers (not raw PDF sheet numbers).
Rules:
- If the answer exists, respond with STRICT JSON ONLY:
  {"answer":"...","page_hits":[numbers],"citations":[{"page":n,"snippet":"..."}],"reasoning":"one or two short sentences about how you located the answer. Do not reveal detailed chain-of-thought."}
- In "answer", include the page numbers inline, formatted with a leading asterisk (e.g., "*736–37") when you cite one or a range.
- "citations" should contain short quotes (max 25 words) that support the answer; set "page" to the legal/reporter page number.
- If not present, return {"answer":"Not found in document.","page_hits":[],"citations":[],"reasoning":"Searched top-ranked passages; nothing matched exactly."}
- Never include additional keys. Always valid JSON.`

// defaultAnswerQuestionPrompt is the fallback question template.
const defaultAnswerQuestionPrompt = "Question: %s\nUse ONLY the passages below. Return strict JSON."

// AnswerService composes cited answers from retrieved passages.
type AnswerService struct {
	retriever       driving.RetrievalService
	llm             driven.LLMService
	promptStore     driven.PromptStore
	topK            int
	maxPassageChars int
	temperature     float64
}

// AnswerOption configures an AnswerService.
type AnswerOption func(*AnswerService)

// WithTopK sets how many passages are retrieved per question.
func WithTopK(k int) AnswerOption {
	return func(s *AnswerService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithMaxPassageChars caps the passage text sent to the model.
func WithMaxPassageChars(n int) AnswerOption {
	return func(s *AnswerService) {
		if n > 0 {
			s.maxPassageChars = n
		}
	}
}

// WithTemperature sets the sampling temperature for model calls.
func WithTemperature(t float64) AnswerOption {
	return func(s *AnswerService) {
		if t >= 0 {
			s.temperature = t
		}
	}
}

// NewAnswerService creates a new answer service.
// The llm parameter is optional; without it answers quote the top passages.
func NewAnswerService(
	retriever driving.RetrievalService,
	llm driven.LLMService,
	opts ...AnswerOption,
) *AnswerService {
	s := &AnswerService{
		retriever:       retriever,
		llm:             llm,
		topK:            domain.DefaultTopK,
		maxPassageChars: domain.DefaultMaxPassageChars,
		temperature:     domain.DefaultAppSettings().LLM.Temperature,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ask retrieves the top passages for question and composes a cited answer.
func (s *AnswerService) Ask(ctx context.Context, sessionID, question string) (*domain.AskResult, error) {
	logger.Section("Answer")
	logger.Debug("Question: %q", question)

	retrieved, err := s.retriever.Retrieve(ctx, sessionID, question, s.topK)
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}

	result := &domain.AskResult{Retrieved: retrieved}
	if len(retrieved) == 0 {
		logger.Info("No passages retrieved, answering not found")
		result.Answer = domain.NotFoundAnswer()
		return result, nil
	}

	if s.llm == nil {
		logger.Debug("No LLM configured, composing offline answer")
		result.Answer = mockAnswer(question, result.Passages())
		return result, nil
	}

	messages := s.answerMessages(question, retrieved)
	logger.Debug("Sending %d messages to %s", len(messages), s.llm.ModelName())

	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		Temperature: s.temperature,
		JSON:        true,
	})
	if err != nil {
		logger.Warn("Answer generation failed: %v", err)
		return nil, fmt.Errorf("ask: %w", llmError(err))
	}

	result.Answer = ParseAnswer(reply)
	logger.Info("Answer cites %d pages", len(result.Answer.PageHits))
	return result, nil
}

// Chat answers a question from caller-supplied snippets without retrieval.
// The snippets follow the question, one message each. Without a model it
// returns a quote of the first snippets.
func (s *AnswerService) Chat(
	ctx context.Context, question string, snippets []domain.RetrievedPassage,
) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("chat: %w: question is required", domain.ErrInvalidInput)
	}

	if s.llm == nil {
		return MockChatText(question, snippets), nil
	}

	messages := make([]driven.ChatMessage, 0, len(snippets)+2)
	messages = append(messages,
		driven.ChatMessage{Role: "system", Content: chatSystemPrompt},
		driven.ChatMessage{Role: "user", Content: question},
	)
	for i, p := range snippets {
		passage := domain.RetrievalResult{
			Chunk: domain.Chunk{PageLabel: p.PageNum, Text: p.Text},
			Score: p.Score,
		}
		messages = append(messages, driven.ChatMessage{
			Role:    "user",
			Content: FormatPassage(i+1, passage, s.maxPassageChars),
		})
	}

	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: s.temperature})
	if err != nil {
		logger.Warn("Chat failed: %v", err)
		return "", fmt.Errorf("chat: %w", llmError(err))
	}
	return reply, nil
}

// answerMessages builds the system prompt, the question and one message per passage.
func (s *AnswerService) answerMessages(question string, retrieved []domain.RetrievalResult) []driven.ChatMessage {
	system := s.loadPrompt(driven.PromptAnswerSystem, defaultAnswerSystemPrompt)
	questionTemplate := s.loadPrompt(driven.PromptAnswerQuestion, defaultAnswerQuestionPrompt)

	messages := make([]driven.ChatMessage, 0, len(retrieved)+2)
	messages = append(messages,
		driven.ChatMessage{Role: "system", Content: system},
		driven.ChatMessage{Role: "user", Content: fmt.Sprintf(questionTemplate, question)},
	)
	for i, r := range retrieved {
		messages = append(messages, driven.ChatMessage{
			Role:    "user",
			Content: FormatPassage(i+1, r, s.maxPassageChars),
		})
	}
	return messages
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *AnswerService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		logger.Debug("Using default %s prompt: %v", name, err)
		return fallback
	}
	return prompt
}

// FormatPassage renders a retrieved passage for the model. Pages are written
// with a leading asterisk so answers cite them in star-page form.
func FormatPassage(n int, r domain.RetrievalResult, maxChars int) string {
	return fmt.Sprintf("# Passage %d\n[page *%d] (score=%.3f)\n%s",
		n, r.Chunk.PageLabel, r.Score, truncate(r.Chunk.Text, maxChars))
}

// ParseAnswer decodes a model reply. A reply without a string answer and a
// page_hits array yields the malformed-reply answer.
func ParseAnswer(reply string) domain.Answer {
	var raw struct {
		Answer    *string           `json:"answer"`
		PageHits  *[]int            `json:"page_hits"`
		Citations []domain.Citation `json:"citations"`
		Reasoning string            `json:"reasoning"`
	}

	reply = stripCodeFence(reply)
	if reply == "" {
		reply = "{}"
	}
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		logger.Debug("Malformed answer JSON: %v", err)
		return domain.MalformedAnswer()
	}
	if raw.Answer == nil || raw.PageHits == nil {
		logger.Debug("Answer JSON lacks answer or page_hits")
		return domain.MalformedAnswer()
	}

	answer := domain.Answer{
		Answer:    *raw.Answer,
		PageHits:  *raw.PageHits,
		Citations: raw.Citations,
		Reasoning: raw.Reasoning,
	}
	if answer.Citations == nil {
		answer.Citations = []domain.Citation{}
	}
	return answer
}

// MockChatText renders the offline chat reply quoting the first snippets.
func MockChatText(question string, snippets []domain.RetrievedPassage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🤖 Mock Answer: \"%s\".\n\nTop snippets:\n", question)

	if len(snippets) == 0 {
		b.WriteString("• (no snippets)")
		return b.String()
	}

	lines := make([]string, 0, mockSnippetCount)
	for _, sn := range snippets[:min(mockSnippetCount, len(snippets))] {
		lines = append(lines, fmt.Sprintf("• p.%d: %s…", sn.PageNum, truncate(sn.Text, mockSnippetChars)))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// mockAnswer is the offline answer for Ask.
func mockAnswer(question string, passages []domain.RetrievedPassage) domain.Answer {
	top := passages[:min(mockSnippetCount, len(passages))]

	answer := domain.Answer{
		Answer:    MockChatText(question, top),
		PageHits:  make([]int, 0, len(top)),
		Citations: make([]domain.Citation, 0, len(top)),
		Reasoning: mockReasoning,
	}
	for _, p := range top {
		answer.PageHits = append(answer.PageHits, p.PageNum)
		answer.Citations = append(answer.Citations, domain.Citation{
			Page:    p.PageNum,
			Snippet: truncate(p.Text, mockSnippetChars),
		})
	}
	return answer
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// stripCodeFence removes a surrounding markdown code fence some models add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// llmError makes sure provider failures carry ErrLLMUnavailable.
func llmError(err error) error {
	if errors.Is(err, domain.ErrLLMUnavailable) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
}
