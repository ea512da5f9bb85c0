package pagenum

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
)

func rawPages(texts ...string) []domain.RawPage {
	pages := make([]domain.RawPage, len(texts))
	for i, t := range texts {
		pages[i] = domain.RawPage{PhysicalIndex: i + 1, Text: t}
	}
	return pages
}

func labels(pages []domain.Page) []int {
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = p.Label
	}
	return out
}

func TestInfer_GapFillsFromFooters(t *testing.T) {
	pages := Infer(rawPages(
		"The court considered the appeal. — 523 —",
		"It then turned to the remedy. — 524 —",
		"Judgment affirmed without further comment.",
	))

	assert.Equal(t, []int{523, 524, 525}, labels(pages))
}

func TestInfer_NoMatchesFallsBackToPhysicalIndex(t *testing.T) {
	pages := Infer(rawPages("no digits here", "none here either", "still nothing"))

	assert.Equal(t, []int{1, 2, 3}, labels(pages))
}

func TestInfer_PagesBeforeFirstMatchKeepPhysicalIndex(t *testing.T) {
	pages := Infer(rawPages("cover sheet", "opinion begins [10]", "continued"))

	assert.Equal(t, []int{1, 10, 11}, labels(pages))
}

func TestInfer_SpuriousEarlyMatchDrivesGapFill(t *testing.T) {
	// A statute number on the first page is trusted and carried forward.
	pages := Infer(rawPages("Under section 14 of the act", "no marker", "no marker"))

	assert.Equal(t, []int{14, 15, 16}, labels(pages))
}

func TestInfer_PreservesTextAndLength(t *testing.T) {
	raw := rawPages("*736 first page", "", "p. 738 third")
	pages := Infer(raw)

	require.Len(t, pages, len(raw))
	for i := range raw {
		assert.Equal(t, raw[i].Text, pages[i].Text)
	}
	assert.Equal(t, []int{736, 737, 738}, labels(pages))
}

func TestInfer_Empty(t *testing.T) {
	assert.Empty(t, Infer(nil))
}

func TestInfer_ZeroPhysicalIndexUsesPosition(t *testing.T) {
	pages := Infer([]domain.RawPage{{Text: "a"}, {Text: "b"}})

	assert.Equal(t, []int{1, 2}, labels(pages))
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  int
		found bool
	}{
		{"star page", "*523 The opinion continues", 523, true},
		{"trailing star", "523* text", 523, true},
		{"page word", "Page 45 of the record", 45, true},
		{"bracketed", "text [88] more", 88, true},
		{"em dash footer", "text — 524 —", 524, true},
		{"single digit ignored", "page 7 only", 0, false},
		{"five digits ignored", "docket 12345", 0, false},
		{"out of range falls through to next pattern", "In 3500 cases, see Page 45", 45, true},
		{"year within range accepted", "Decided 2024", 2024, true},
		{"zero rejected", "00 and nothing else", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetect_HeadBeforeTail(t *testing.T) {
	filler := strings.Repeat("x ", 400)
	text := "12 " + filler + " 99"

	got, ok := Detect(text)
	require.True(t, ok)
	assert.Equal(t, 12, got)
}

func TestDetect_TailOnly(t *testing.T) {
	filler := strings.Repeat("word ", 200)
	text := filler + " — 612 —"

	got, ok := Detect(text)
	require.True(t, ok)
	assert.Equal(t, 612, got)
}

func TestDetect_MiddleIgnored(t *testing.T) {
	filler := strings.Repeat("a", 300)
	text := filler + " 444 " + filler

	_, ok := Detect(text)
	assert.False(t, ok)
}

func TestZones_MultibyteSafe(t *testing.T) {
	text := strings.Repeat("§", 600)
	head, tail := zones(text)

	assert.Equal(t, HeadWindow, len([]rune(head)))
	assert.Equal(t, TailWindow, len([]rune(tail)))
}
