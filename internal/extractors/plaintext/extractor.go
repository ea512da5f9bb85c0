// Package plaintext extracts pages from plain text uploads.
// A form feed separates pages, as in text exported from a paginated document.
package plaintext

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// PageSeparator splits the text into pages.
const PageSeparator = "\f"

// Extractor handles plain text documents.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name for logging.
func (e *Extractor) Name() string {
	return "plaintext"
}

// MIMETypes returns the content types this extractor handles.
func (e *Extractor) MIMETypes() []string {
	return []string{"text/plain", "text/markdown"}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt", ".text", ".md"}
}

// Extract splits the text on form feeds. Blank pages are dropped and the
// remaining pages are numbered from 1 in order.
func (e *Extractor) Extract(ctx context.Context, data []byte) ([]domain.RawPage, error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	text := string(data)
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "\uFFFD")
	}
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var pages []domain.RawPage
	for _, part := range strings.Split(text, PageSeparator) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(part) == "" {
			continue
		}
		pages = append(pages, domain.RawPage{
			PhysicalIndex: len(pages) + 1,
			Text:          part,
		})
	}
	return pages, nil
}
