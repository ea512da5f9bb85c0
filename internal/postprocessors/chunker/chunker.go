// Package chunker splits labelled page text into overlapping fixed-size windows.
package chunker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

var (
	horizontalSpace = regexp.MustCompile(`[\x{00A0}\t]+`)
	trailingSpace   = regexp.MustCompile(`[ \t\f\r\v\x{00A0}]+\n`)
	blankLines      = regexp.MustCompile(`\n{3,}`)
)

// Chunker cuts each page into windows of chunkSize characters that advance by
// chunkSize-overlap. Windows never span two pages.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// New creates a chunker with the given options.
// It returns ErrInvalidConfiguration unless size > overlap >= 0.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	cfg := domain.ChunkingSettings{Size: c.chunkSize, Overlap: c.overlap}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}

	return c, nil
}

// Name returns the processor name.
func (c *Chunker) Name() string {
	return "chunker"
}

// Size returns the configured chunk size.
func (c *Chunker) Size() int {
	return c.chunkSize
}

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}

// Chunk splits pages into chunks without embeddings.
// Output order is page order, then ascending window offset. Chunk IDs are
// "{documentID}-{pageLabel}-{offset}", so chunking the same input twice
// yields identical chunks. When two pages share a label, windows of the later
// page carry its 1-based position as a suffix to keep IDs unique.
func (c *Chunker) Chunk(pages []domain.Page, documentID string) []domain.Chunk {
	step := c.chunkSize - c.overlap
	var chunks []domain.Chunk
	seenLabels := make(map[int]bool, len(pages))

	for i, page := range pages {
		duplicate := seenLabels[page.Label]
		seenLabels[page.Label] = true

		text := []rune(Normalize(page.Text))

		for start := 0; start < len(text); start += step {
			end := min(start+c.chunkSize, len(text))
			part := string(text[start:end])
			if strings.TrimSpace(part) == "" {
				continue
			}

			id := ChunkID(documentID, page.Label, start)
			if duplicate {
				id = fmt.Sprintf("%s-%d", id, i+1)
			}

			chunks = append(chunks, domain.Chunk{
				ID:         id,
				DocumentID: documentID,
				PageLabel:  page.Label,
				Offset:     start,
				Text:       part,
			})
		}
	}

	return chunks
}

// ChunkID returns the deterministic identifier of a window.
func ChunkID(documentID string, pageLabel, offset int) string {
	return fmt.Sprintf("%s-%d-%d", documentID, pageLabel, offset)
}

// Normalize collapses NBSP and tab runs to a single space, strips trailing
// whitespace before newlines and collapses three or more newlines to two.
func Normalize(s string) string {
	s = horizontalSpace.ReplaceAllString(s, " ")
	s = trailingSpace.ReplaceAllString(s, "\n")
	return blankLines.ReplaceAllString(s, "\n\n")
}
