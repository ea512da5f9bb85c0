package driving

import (
	"context"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// AnswerService answers questions from the passages of a session.
type AnswerService interface {
	// Ask retrieves the top passages for the question and composes a cited answer.
	Ask(ctx context.Context, sessionID, question string) (*domain.AskResult, error)

	// Chat answers a question given caller-supplied snippets, without retrieval.
	Chat(ctx context.Context, question string, snippets []domain.RetrievedPassage) (string, error)
}
