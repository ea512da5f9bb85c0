package mcp

import (
	"context"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results     []domain.RetrievalResult
	err         error
	gotSession  string
	gotQuestion string
	gotK        int
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context,
	sessionID, question string,
	k int,
) ([]domain.RetrievalResult, error) {
	m.gotSession, m.gotQuestion, m.gotK = sessionID, question, k
	return m.results, m.err
}

func (m *mockRetrievalService) RetrieveByVector(
	_ context.Context,
	_ string,
	_ []float32,
	_ int,
) ([]domain.RetrievalResult, error) {
	return m.results, m.err
}

func (m *mockRetrievalService) RetrieveAtLeastOne(
	_ context.Context,
	_ string,
	_ []float32,
	_ int,
) ([]domain.RetrievalResult, error) {
	return m.results, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	result     *domain.AskResult
	err        error
	gotSession string
}

func (m *mockAnswerService) Ask(_ context.Context, sessionID, _ string) (*domain.AskResult, error) {
	m.gotSession = sessionID
	return m.result, m.err
}

func (m *mockAnswerService) Chat(_ context.Context, _ string, _ []domain.RetrievedPassage) (string, error) {
	return "", m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	doc        *domain.Document
	err        error
	gotSession string
	gotName    string
	gotMIME    string
	gotData    []byte
}

func (m *mockIngestService) Ingest(
	_ context.Context,
	sessionID, name string,
	_ []domain.RawPage,
) (*domain.Document, error) {
	m.gotSession, m.gotName = sessionID, name
	return m.doc, m.err
}

func (m *mockIngestService) IngestFile(
	_ context.Context,
	sessionID, name, mimeType string,
	data []byte,
) (*domain.Document, error) {
	m.gotSession, m.gotName, m.gotMIME, m.gotData = sessionID, name, mimeType, data
	return m.doc, m.err
}

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	documents  []domain.Document
	sessions   []string
	err        error
	gotSession string
}

func (m *mockSessionService) ListDocuments(_ context.Context, sessionID string) ([]domain.Document, error) {
	m.gotSession = sessionID
	return m.documents, m.err
}

func (m *mockSessionService) RemoveDocument(_ context.Context, sessionID, _ string) error {
	m.gotSession = sessionID
	return m.err
}

func (m *mockSessionService) Clear(_ context.Context, sessionID string) error {
	m.gotSession = sessionID
	return m.err
}

func (m *mockSessionService) Sessions(_ context.Context) ([]string, error) {
	return m.sessions, m.err
}
