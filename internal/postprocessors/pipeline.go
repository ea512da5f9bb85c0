// Package postprocessors turns extracted pages into labelled, chunked text.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
	"github.com/custodia-labs/lexbrief/internal/logger"
	"github.com/custodia-labs/lexbrief/internal/postprocessors/chunker"
	"github.com/custodia-labs/lexbrief/internal/postprocessors/pagenum"
)

// Ensure Pipeline implements the interface.
var _ driven.Segmenter = (*Pipeline)(nil)

// LabelFunc assigns page labels to raw pages.
type LabelFunc func([]domain.RawPage) []domain.Page

// Pipeline runs page-label inference and then chunking.
// It implements the Segmenter interface.
type Pipeline struct {
	label   LabelFunc
	chunker *chunker.Chunker
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLabeler replaces the page-label inference step.
func WithLabeler(f LabelFunc) PipelineOption {
	return func(p *Pipeline) {
		if f != nil {
			p.label = f
		}
	}
}

// NewPipeline creates a segmentation pipeline around the given chunker.
func NewPipeline(c *chunker.Chunker, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		label:   pagenum.Infer,
		chunker: c,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Segment labels the raw pages and chunks them under documentID.
func (p *Pipeline) Segment(
	ctx context.Context, documentID string, raw []domain.RawPage,
) ([]domain.Page, []domain.Chunk, error) {
	if documentID == "" {
		return nil, nil, fmt.Errorf("segment: %w: document id is required", domain.ErrInvalidInput)
	}
	if p.chunker == nil {
		return nil, nil, fmt.Errorf("segment: %w: no chunker", domain.ErrInvalidConfiguration)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	pages := p.label(raw)
	logger.Debug("Labelled %d pages for %s", len(pages), documentID)

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	chunks := p.chunker.Chunk(pages, documentID)
	logger.Debug("Cut %d chunks (size=%d overlap=%d)", len(chunks), p.chunker.Size(), p.chunker.Overlap())

	return pages, chunks, nil
}
