// Package pdf extracts per-page text from PDF uploads using github.com/ledongthuc/pdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
	"github.com/custodia-labs/lexbrief/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// Extractor handles PDF documents with a text layer. Scanned PDFs yield no
// pages and are reported upstream as having no extractable text.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name for logging.
func (e *Extractor) Name() string {
	return "pdf"
}

// MIMETypes returns the content types this extractor handles.
func (e *Extractor) MIMETypes() []string {
	return []string{"application/pdf"}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".pdf"}
}

// pageSource is the subset of *pdf.Reader used for extraction.
type pageSource interface {
	NumPage() int
	PageText(i int) (string, error)
}

type readerSource struct {
	r *pdf.Reader
}

func (s readerSource) NumPage() int {
	return s.r.NumPage()
}

func (s readerSource) PageText(i int) (string, error) {
	p := s.r.Page(i)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

// Extract returns the text of every page that carries text. Pages that are
// blank after trimming are dropped, and PhysicalIndex counts only the pages kept.
func (e *Extractor) Extract(ctx context.Context, data []byte) (pages []domain.RawPage, err error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: malformed PDF: %v", domain.ErrUnsupportedFormat, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open PDF: %w", domain.ErrUnsupportedFormat, err)
	}

	return collectPages(ctx, readerSource{r: reader})
}

func collectPages(ctx context.Context, src pageSource) ([]domain.RawPage, error) {
	total := src.NumPage()
	pages := make([]domain.RawPage, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := src.PageText(i)
		if err != nil {
			logger.Warn("pdf: skipping page %d of %d: %v", i, total, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, domain.RawPage{
			PhysicalIndex: len(pages) + 1,
			Text:          text,
		})
	}
	logger.Debug("pdf: %d of %d pages carry text", len(pages), total)
	return pages, nil
}
