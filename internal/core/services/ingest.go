package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driving"
	"github.com/custodia-labs/lexbrief/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// defaultDocumentName is used when an upload carries no file name.
const defaultDocumentName = "document.pdf"

// IngestService labels, chunks and embeds uploads into a session.
type IngestService struct {
	segmenter  driven.Segmenter
	embedder   driven.EmbeddingService
	store      driven.SessionStore
	extractors driven.ExtractorRegistry
	batchSize  int
	now        func() time.Time
	newID      func() string
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithBatchSize sets how many texts are embedded per provider call.
func WithBatchSize(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithClock overrides the clock used for document timestamps.
func WithClock(now func() time.Time) IngestOption {
	return func(s *IngestService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides document ID generation.
func WithIDGenerator(newID func() string) IngestOption {
	return func(s *IngestService) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewIngestService creates a new ingest service.
// The extractor registry is only needed by IngestFile and may be nil.
func NewIngestService(
	segmenter driven.Segmenter,
	embedder driven.EmbeddingService,
	store driven.SessionStore,
	extractors driven.ExtractorRegistry,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		segmenter:  segmenter,
		embedder:   embedder,
		store:      store,
		extractors: extractors,
		batchSize:  domain.DefaultBatchSize,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IngestFile extracts page text from data and ingests it.
func (s *IngestService) IngestFile(
	ctx context.Context, sessionID, name, mimeType string, data []byte,
) (*domain.Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("ingest: %w: empty or invalid file", domain.ErrInvalidInput)
	}
	if s.extractors == nil {
		return nil, fmt.Errorf("ingest: %w: no extractors configured", domain.ErrUnsupportedFormat)
	}

	extractor, err := s.extractors.Get(name, mimeType)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	logger.Debug("Extracting %s with %s extractor (%d bytes)", name, extractor.Name(), len(data))

	raw, err := extractor.Extract(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("ingest: extract %s: %w", name, err)
	}

	return s.Ingest(ctx, sessionID, name, raw)
}

// Ingest labels, chunks and embeds raw pages, then stores them under the session.
// The document only appears in listings once its chunks are searchable.
func (s *IngestService) Ingest(
	ctx context.Context, sessionID, name string, raw []domain.RawPage,
) (*domain.Document, error) {
	logger.Section("Ingest")
	defer logger.Timed("ingest")()

	if sessionID == "" {
		return nil, fmt.Errorf("ingest: %w: session id is required", domain.ErrInvalidInput)
	}
	if name = strings.TrimSpace(name); name == "" {
		name = defaultDocumentName
	}
	if !hasText(raw) {
		return nil, fmt.Errorf("ingest: %w", domain.ErrNoExtractableText)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("ingest: %w: no embedder configured", domain.ErrEmbeddingUnavailable)
	}

	docID := s.newID()
	logger.Debug("Document %s (%q): %d raw pages", docID, name, len(raw))

	pages, chunks, err := s.segmenter.Segment(ctx, docID, raw)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	if err := s.embedChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	doc := domain.Document{
		ID:        docID,
		Name:      name,
		PageCount: len(pages),
		CreatedAt: s.now(),
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	if err := s.store.AppendChunks(ctx, sessionID, chunks); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	// The chunks are committed: finish the write even if the caller has gone,
	// and take them back out if the document cannot be recorded.
	commitCtx := context.WithoutCancel(ctx)
	if err := s.store.SaveDocument(commitCtx, sessionID, doc); err != nil {
		if rbErr := s.store.RemoveDocument(commitCtx, sessionID, docID); rbErr != nil {
			logger.Warn("Rolling back chunks of %s failed: %v", docID, rbErr)
		}
		return nil, fmt.Errorf("ingest: %w", err)
	}

	logger.Info("Ingested %q: %d pages, %d chunks", name, doc.PageCount, len(chunks))
	return &doc, nil
}

// embedChunks attaches an embedding to every chunk. The embedded text carries
// the page label so that questions naming a page rank that page higher.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += s.batchSize {
		end := min(start+s.batchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, EmbeddingText(c))
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			logger.Warn("Embedding batch %d-%d failed: %v", start, end, err)
			return embeddingError(err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: provider returned %d vectors for %d texts",
				domain.ErrEmbeddingUnavailable, len(vectors), len(texts))
		}

		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
		logger.Debug("Embedded chunks %d-%d", start, end)
	}
	return nil
}

// EmbeddingText returns the text embedded for a chunk.
func EmbeddingText(c domain.Chunk) string {
	return fmt.Sprintf("Page %d: %s", c.PageLabel, c.Text)
}

func hasText(raw []domain.RawPage) bool {
	for _, p := range raw {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
