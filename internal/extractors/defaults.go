package extractors

import (
	"github.com/custodia-labs/lexbrief/internal/extractors/docx"
	"github.com/custodia-labs/lexbrief/internal/extractors/html"
	"github.com/custodia-labs/lexbrief/internal/extractors/pdf"
	"github.com/custodia-labs/lexbrief/internal/extractors/plaintext"
)

// NewDefaultRegistry returns a registry holding the PDF, DOCX, HTML and plain text extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(html.New())
	r.Register(plaintext.New())
	return r
}
