// Package pagenum infers legal/reporter page labels from extracted page text.
//
// Reporter pages rarely match the physical sheet index of a PDF, so labels are
// sniffed from the header and footer of each page. The heuristic is best effort:
// a number such as a statute section can be mistaken for a page label.
package pagenum

import (
	"regexp"
	"strconv"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

// Zone widths, in characters, scanned at each end of a page.
const (
	HeadWindow = 250
	TailWindow = 250
)

// Accepted label range. Anything outside is treated as a year, a section number or noise.
const (
	MinLabel = 1
	MaxLabel = 3000
)

// patterns are tried in priority order within each zone.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\*?(\d{2,4})\*?\b`),               // 523, *523, 523*
	regexp.MustCompile(`\b(?:Page|PAGE|p\.)\s*(\d{2,4})\b`), // Page 523, p. 523
	regexp.MustCompile(`[\[(—-]\s*(\d{2,4})\s*[\])—-]`),     // (523), [523], — 523 —
	regexp.MustCompile(`\b(\d{2,4})\b`),                     // bare number
}

// Infer returns one Page per raw page, in the same order, with an inferred label.
//
// Pages without a match take the previous page's label plus one. If no page in
// the document matched at all, every page is labelled with its physical index.
// Text is passed through unchanged.
func Infer(raw []domain.RawPage) []domain.Page {
	candidates := make([]int, len(raw))
	found := false

	for i, p := range raw {
		if n, ok := Detect(p.Text); ok {
			candidates[i] = n
			found = true
		}
	}

	// Gap-fill forward from the previous labelled page.
	for i := 1; i < len(candidates); i++ {
		if candidates[i] == 0 && candidates[i-1] != 0 {
			candidates[i] = candidates[i-1] + 1
		}
	}

	pages := make([]domain.Page, len(raw))
	for i, p := range raw {
		label := candidates[i]
		if !found || label == 0 {
			label = physicalLabel(p, i)
		}
		pages[i] = domain.Page{Label: label, Text: p.Text}
	}
	return pages
}

// Detect returns the page label found in the head or tail of text.
// The head is searched before the tail, and patterns are tried in priority order
// within each zone. The first accepted number wins.
func Detect(text string) (int, bool) {
	head, tail := zones(text)
	for _, zone := range []string{head, tail} {
		for _, re := range patterns {
			m := re.FindStringSubmatch(zone)
			if len(m) < 2 {
				continue
			}
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if n >= MinLabel && n <= MaxLabel {
				return n, true
			}
		}
	}
	return 0, false
}

// zones returns the first HeadWindow and last TailWindow characters of text.
func zones(text string) (head, tail string) {
	runes := []rune(text)
	head = string(runes[:min(HeadWindow, len(runes))])
	tail = string(runes[max(0, len(runes)-TailWindow):])
	return head, tail
}

func physicalLabel(p domain.RawPage, i int) int {
	if p.PhysicalIndex >= 1 {
		return p.PhysicalIndex
	}
	return i + 1
}
