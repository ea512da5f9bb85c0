package api

import (
	"context"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

type mockIngest struct {
	gotSession, gotName, gotMIME string
	gotData                      []byte
	doc                          *domain.Document
	err                          error
}

func (m *mockIngest) Ingest(_ context.Context, sessionID, name string, _ []domain.RawPage) (*domain.Document, error) {
	m.gotSession, m.gotName = sessionID, name
	return m.doc, m.err
}

func (m *mockIngest) IngestFile(_ context.Context, sessionID, name, mimeType string, data []byte) (*domain.Document, error) {
	m.gotSession, m.gotName, m.gotMIME, m.gotData = sessionID, name, mimeType, data
	return m.doc, m.err
}

type mockRetrieval struct {
	gotSession, gotQuestion string
	gotK                    int
	results                 []domain.RetrievalResult
	err                     error
}

func (m *mockRetrieval) Retrieve(_ context.Context, sessionID, question string, k int) ([]domain.RetrievalResult, error) {
	m.gotSession, m.gotQuestion, m.gotK = sessionID, question, k
	return m.results, m.err
}

func (m *mockRetrieval) RetrieveByVector(_ context.Context, _ string, _ []float32, _ int) ([]domain.RetrievalResult, error) {
	return m.results, m.err
}

func (m *mockRetrieval) RetrieveAtLeastOne(_ context.Context, _ string, _ []float32, _ int) ([]domain.RetrievalResult, error) {
	return m.results, m.err
}

type mockAnswer struct {
	gotSession, gotQuestion string
	gotSnippets             []domain.RetrievedPassage
	result                  *domain.AskResult
	chat                    string
	err                     error
}

func (m *mockAnswer) Ask(_ context.Context, sessionID, question string) (*domain.AskResult, error) {
	m.gotSession, m.gotQuestion = sessionID, question
	return m.result, m.err
}

func (m *mockAnswer) Chat(_ context.Context, question string, snippets []domain.RetrievedPassage) (string, error) {
	m.gotQuestion, m.gotSnippets = question, snippets
	return m.chat, m.err
}

type mockSession struct {
	docs    []domain.Document
	cleared []string
	removed []string
	err     error
}

func (m *mockSession) ListDocuments(_ context.Context, _ string) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockSession) RemoveDocument(_ context.Context, _, documentID string) error {
	m.removed = append(m.removed, documentID)
	return m.err
}

func (m *mockSession) Clear(_ context.Context, sessionID string) error {
	m.cleared = append(m.cleared, sessionID)
	return m.err
}

func (m *mockSession) Sessions(_ context.Context) ([]string, error) {
	return m.cleared, m.err
}
