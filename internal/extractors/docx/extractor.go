// Package docx extracts pages from Word documents using github.com/nguyenthenguyen/docx.
//
// A DOCX file carries no fixed pagination, so pages are split at explicit page
// breaks and at the page boundaries Word recorded the last time it laid out the
// document. A document with neither yields a single page.
package docx

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name for logging.
func (e *Extractor) Name() string {
	return "docx"
}

// MIMETypes returns the content types this extractor handles.
func (e *Extractor) MIMETypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// Extract returns the text of each non-blank page in document order.
func (e *Extractor) Extract(ctx context.Context, data []byte) ([]domain.RawPage, error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: open DOCX: %w", domain.ErrUnsupportedFormat, err)
	}
	defer r.Close()

	texts, err := splitPages(ctx, r.Editable().GetContent())
	if err != nil {
		return nil, err
	}

	var pages []domain.RawPage
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, domain.RawPage{
			PhysicalIndex: len(pages) + 1,
			Text:          text,
		})
	}
	return pages, nil
}

// splitPages walks word/document.xml and returns the text between page boundaries.
// Paragraphs end with a newline; tabs and line breaks are kept.
func splitPages(ctx context.Context, documentXML string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		pages  []string
		page   strings.Builder
		inText bool
	)
	flush := func() {
		pages = append(pages, strings.Trim(page.String(), "\n"))
		page.Reset()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse document.xml: %w", domain.ErrUnsupportedFormat, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				page.WriteByte('\t')
			case "br", "cr":
				if attr(t, "type") == "page" {
					flush()
				} else {
					page.WriteByte('\n')
				}
			case "lastRenderedPageBreak":
				flush()
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				page.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				page.Write(t)
			}
		}
	}
	flush()
	return pages, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
