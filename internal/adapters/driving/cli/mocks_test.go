package cli

import (
	"context"

	"github.com/custodia-labs/lexbrief/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/services"
)

// mockIngestService records files it is asked to ingest.
type mockIngestService struct {
	names    []string
	sessions []string
	err      error
}

func (m *mockIngestService) Ingest(_ context.Context, sessionID, name string, raw []domain.RawPage) (*domain.Document, error) {
	m.names = append(m.names, name)
	m.sessions = append(m.sessions, sessionID)
	return &domain.Document{ID: "doc-" + name, Name: name, PageCount: len(raw)}, m.err
}

func (m *mockIngestService) IngestFile(_ context.Context, sessionID, name, _ string, _ []byte) (*domain.Document, error) {
	m.names = append(m.names, name)
	m.sessions = append(m.sessions, sessionID)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Document{ID: "doc-" + name, Name: name, PageCount: 2}, nil
}

// mockRetrievalService returns fixed passages.
type mockRetrievalService struct {
	gotK int
	err  error
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _, _ string, k int) ([]domain.RetrievalResult, error) {
	m.gotK = k
	if m.err != nil {
		return nil, m.err
	}
	return testResults(), nil
}

func (m *mockRetrievalService) RetrieveByVector(_ context.Context, _ string, _ []float32, _ int) ([]domain.RetrievalResult, error) {
	return testResults(), nil
}

func (m *mockRetrievalService) RetrieveAtLeastOne(_ context.Context, _ string, _ []float32, _ int) ([]domain.RetrievalResult, error) {
	return testResults(), nil
}

// mockAnswerService returns a fixed cited answer.
type mockAnswerService struct {
	gotQuestion string
	gotSnippets []domain.RetrievedPassage
	notFound    bool
	err         error
}

func (m *mockAnswerService) Ask(_ context.Context, _, question string) (*domain.AskResult, error) {
	m.gotQuestion = question
	if m.err != nil {
		return nil, m.err
	}
	if m.notFound {
		return &domain.AskResult{Answer: domain.NotFoundAnswer()}, nil
	}
	return &domain.AskResult{
		Answer: domain.Answer{
			Answer:    "The lease runs for twelve months.",
			PageHits:  []int{3, 4},
			Citations: []domain.Citation{{Page: 3, Snippet: "a term of twelve months"}},
			Reasoning: "Clause 2 sets the term.",
		},
		Retrieved: testResults(),
	}, nil
}

func (m *mockAnswerService) Chat(_ context.Context, question string, snippets []domain.RetrievedPassage) (string, error) {
	m.gotQuestion = question
	m.gotSnippets = snippets
	return "From the snippets: yes.", m.err
}

// mockSessionService lists nothing.
type mockSessionService struct{}

func (m *mockSessionService) ListDocuments(_ context.Context, _ string) ([]domain.Document, error) {
	return []domain.Document{}, nil
}

func (m *mockSessionService) RemoveDocument(_ context.Context, _, _ string) error { return nil }

func (m *mockSessionService) Clear(_ context.Context, _ string) error { return nil }

func (m *mockSessionService) Sessions(_ context.Context) ([]string, error) { return nil, nil }

func testResults() []domain.RetrievalResult {
	return []domain.RetrievalResult{
		{Chunk: domain.Chunk{PageLabel: 3, Text: "The lease has a term of twelve months."}, Score: 0.912},
		{Chunk: domain.Chunk{PageLabel: 4, Text: "Rent is due monthly."}, Score: 0.5},
	}
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingest    *mockIngestService
	retrieval *mockRetrievalService
	answer    *mockAnswerService
}

// setupTestServices installs mock services and returns a cleanup function
// restoring the previous services and flag values.
func setupTestServices() func() {
	_, cleanup := setupTestServicesWith()
	return cleanup
}

func setupTestServicesWith() (*testServices, func()) {
	oldSettings, oldIngest, oldRetrieval, oldAnswer, oldSession :=
		settingsService, ingestService, retrievalService, answerService, sessionService
	oldReady, oldAppSettings, oldSessionID := servicesReady, appSettings, sessionID

	ts := &testServices{
		ingest:    &mockIngestService{},
		retrieval: &mockRetrievalService{},
		answer:    &mockAnswerService{},
	}
	settingsService = services.NewSettingsService(memory.NewConfigStore(), nil)
	ingestService = ts.ingest
	retrievalService = ts.retrieval
	answerService = ts.answer
	sessionService = &mockSessionService{}
	servicesReady = true
	appSettings = nil
	sessionID = "cli"

	return ts, func() {
		settingsService, ingestService, retrievalService, answerService, sessionService =
			oldSettings, oldIngest, oldRetrieval, oldAnswer, oldSession
		servicesReady, appSettings, sessionID = oldReady, oldAppSettings, oldSessionID
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// resetFlags restores command flag variables to their defaults.
func resetFlags() {
	askFiles, askJSON, askPassages = nil, false, false
	retrieveFile, retrieveJSON, retrieveK = nil, false, domain.DefaultTopK
	ingestJSON = false
	chatSnippets = ""
	tuiFiles, tuiQuestion, tuiWatchDir = nil, "", ""
	_ = mcpServeCmd.Flags().Set("watch", "")
	serveAddr = ""
	verbose = false
	configDir = ""
	noConfig = false
}
