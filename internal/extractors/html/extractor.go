// Package html extracts pages from HTML documents such as saved court opinions.
//
// Tags are stripped with pre-compiled expressions. An element carrying a CSS
// page break, as written by word processors that export HTML, starts a new page.
package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// pageMark stands in for a page break while tags are stripped.
const pageMark = "\f"

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name for logging.
func (e *Extractor) Name() string {
	return "html"
}

// MIMETypes returns the content types this extractor handles.
func (e *Extractor) MIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Extract strips markup and returns the visible text, split before every
// element styled with page-break-before or break-before. Blank pages are dropped and the rest are numbered from 1.
func (e *Extractor) Extract(ctx context.Context, data []byte) ([]domain.RawPage, error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidInput
	}

	content := markPageBreaks(string(data))
	var pages []domain.RawPage
	for _, part := range strings.Split(content, pageMark) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := stripHTML(part)
		if text == "" {
			continue
		}
		pages = append(pages, domain.RawPage{
			PhysicalIndex: len(pages) + 1,
			Text:          text,
		})
	}
	return pages, nil
}

// Pre-compiled regular expressions for HTML parsing performance.
var (
	breakBefore       = regexp.MustCompile(`(?i)<[a-z][^>]*(?:page-break-before|break-before)\s*:\s*(?:always|page)[^>]*>`)
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag       = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag           = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag            = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|br|hr|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	brTags            = regexp.MustCompile(`(?i)<br[^>]*>`)
	hrTags            = regexp.MustCompile(`(?i)<hr[^>]*>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
)

// markPageBreaks inserts a page mark before every element styled to break before itself.
func markPageBreaks(content string) string {
	content = strings.ReplaceAll(content, pageMark, "\n")
	return breakBefore.ReplaceAllStringFunc(content, func(tag string) string {
		return pageMark + tag
	})
}

// stripHTML removes tags and returns readable text, one block per line.
func stripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = headTag.ReplaceAllString(content, "")
	content = svgTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
