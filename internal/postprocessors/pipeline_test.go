package postprocessors

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/postprocessors/chunker"
)

func newTestPipeline(t *testing.T, opts ...PipelineOption) *Pipeline {
	t.Helper()
	c, err := chunker.New(chunker.WithChunkSize(1500), chunker.WithOverlap(200))
	require.NoError(t, err)
	return NewPipeline(c, opts...)
}

func TestPipeline_Segment(t *testing.T) {
	p := newTestPipeline(t)
	raw := []domain.RawPage{
		{PhysicalIndex: 1, Text: strings.Repeat("A", 3000)},
		{PhysicalIndex: 2, Text: strings.Repeat("B", 100)},
	}

	pages, chunks, err := p.Segment(context.Background(), "doc", raw)
	require.NoError(t, err)

	require.Len(t, pages, 2)
	assert.Equal(t, 1, pages[0].Label)
	assert.Equal(t, 2, pages[1].Label)

	require.Len(t, chunks, 4)
	assert.Equal(t, "doc-1-0", chunks[0].ID)
	assert.Equal(t, "doc-1-1300", chunks[1].ID)
	assert.Equal(t, "doc-1-2600", chunks[2].ID)
	assert.Equal(t, "doc-2-0", chunks[3].ID)
}

func TestPipeline_Segment_UsesInferredLabels(t *testing.T) {
	p := newTestPipeline(t)
	raw := []domain.RawPage{
		{PhysicalIndex: 1, Text: "The court held — 523 —"},
		{PhysicalIndex: 2, Text: "Affirmed without comment."},
	}

	_, chunks, err := p.Segment(context.Background(), "doc", raw)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 523, chunks[0].PageLabel)
	assert.Equal(t, 524, chunks[1].PageLabel)
	assert.Equal(t, "doc-524-0", chunks[1].ID)
}

func TestPipeline_Segment_CustomLabeler(t *testing.T) {
	fixed := func(raw []domain.RawPage) []domain.Page {
		pages := make([]domain.Page, len(raw))
		for i, r := range raw {
			pages[i] = domain.Page{Label: 100 + i, Text: r.Text}
		}
		return pages
	}
	p := newTestPipeline(t, WithLabeler(fixed))

	pages, _, err := p.Segment(context.Background(), "doc", []domain.RawPage{{PhysicalIndex: 1, Text: "x"}})
	require.NoError(t, err)
	assert.Equal(t, 100, pages[0].Label)
}

func TestPipeline_Segment_Errors(t *testing.T) {
	p := newTestPipeline(t)

	_, _, err := p.Segment(context.Background(), "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = p.Segment(ctx, "doc", []domain.RawPage{{PhysicalIndex: 1, Text: "x"}})
	assert.ErrorIs(t, err, context.Canceled)

	_, _, err = NewPipeline(nil).Segment(context.Background(), "doc", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestPipeline_Segment_EmptyInput(t *testing.T) {
	p := newTestPipeline(t)

	pages, chunks, err := p.Segment(context.Background(), "doc", nil)
	require.NoError(t, err)
	assert.Empty(t, pages)
	assert.Empty(t, chunks)
}

func TestNewPipelineFromConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         map[string]any
		wantSize    int
		wantOverlap int
		wantErr     bool
	}{
		{"nil config uses defaults", nil, 1500, 200, false},
		{"int values", map[string]any{"size": 800, "overlap": 100}, 800, 100, false},
		{"int64 values from TOML", map[string]any{"size": int64(600), "overlap": int64(0)}, 600, 0, false},
		{"float64 values from JSON", map[string]any{"size": 500.0, "overlap": 50.0}, 500, 50, false},
		{"wrong type ignored", map[string]any{"size": "big"}, 1500, 200, false},
		{"overlap too large", map[string]any{"size": 100, "overlap": 100}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipelineFromConfig(tt.cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, p.chunker.Size())
			assert.Equal(t, tt.wantOverlap, p.chunker.Overlap())
		})
	}
}
