package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// MockAnswerService implements driving.AnswerService for testing.
type MockAnswerService struct {
	AskFunc func(ctx context.Context, sessionID, question string) (*domain.AskResult, error)
}

func (m *MockAnswerService) Ask(ctx context.Context, sessionID, question string) (*domain.AskResult, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, sessionID, question)
	}
	return &domain.AskResult{Answer: domain.NotFoundAnswer()}, nil
}

func (m *MockAnswerService) Chat(_ context.Context, _ string, _ []domain.RetrievedPassage) (string, error) {
	return "", nil
}

// MockSessionService implements driving.SessionService for testing.
type MockSessionService struct {
	ListDocumentsFunc func(ctx context.Context, sessionID string) ([]domain.Document, error)
	ClearFunc         func(ctx context.Context, sessionID string) error
}

func (m *MockSessionService) ListDocuments(ctx context.Context, sessionID string) ([]domain.Document, error) {
	if m.ListDocumentsFunc != nil {
		return m.ListDocumentsFunc(ctx, sessionID)
	}
	return []domain.Document{}, nil
}

func (m *MockSessionService) RemoveDocument(_ context.Context, _, _ string) error {
	return nil
}

func (m *MockSessionService) Clear(ctx context.Context, sessionID string) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockSessionService) Sessions(_ context.Context) ([]string, error) {
	return nil, nil
}

// MockIngestService implements driving.IngestService for testing.
type MockIngestService struct{}

func (m *MockIngestService) Ingest(_ context.Context, _, name string, raw []domain.RawPage) (*domain.Document, error) {
	return &domain.Document{Name: name, PageCount: len(raw)}, nil
}

func (m *MockIngestService) IngestFile(_ context.Context, _, name, _ string, _ []byte) (*domain.Document, error) {
	return &domain.Document{Name: name, PageCount: 1}, nil
}

func TestNewPorts(t *testing.T) {
	answer := &MockAnswerService{}
	session := &MockSessionService{}
	ingest := &MockIngestService{}

	ports := NewPorts(answer, session, ingest)

	require.NotNil(t, ports)
	assert.Equal(t, answer, ports.Answer)
	assert.Equal(t, session, ports.Session)
	assert.Equal(t, ingest, ports.Ingest)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{
			name:  "all ports",
			ports: NewPorts(&MockAnswerService{}, &MockSessionService{}, &MockIngestService{}),
		},
		{
			name:  "ingest is optional",
			ports: &Ports{Answer: &MockAnswerService{}, Session: &MockSessionService{}},
		},
		{
			name:    "missing answer",
			ports:   &Ports{Session: &MockSessionService{}},
			wantErr: ErrMissingAnswerService,
		},
		{
			name:    "missing session",
			ports:   &Ports{Answer: &MockAnswerService{}},
			wantErr: ErrMissingSessionService,
		},
		{
			name:    "nil ports",
			ports:   nil,
			wantErr: ErrInvalidPorts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
