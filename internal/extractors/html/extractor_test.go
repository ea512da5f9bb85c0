package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexbrief/internal/core/domain"
	"github.com/custodia-labs/lexbrief/internal/core/ports/driven"
)

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.PageExtractor = (*Extractor)(nil)
}

func TestExtractor_Metadata(t *testing.T) {
	e := New()

	assert.Equal(t, "html", e.Name())
	assert.Contains(t, e.MIMETypes(), "text/html")
	assert.Contains(t, e.Extensions(), ".htm")
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []domain.RawPage
	}{
		{
			name: "single page without breaks",
			in:   "<html><head><title>Smith v. Jones</title></head><body><p>Opinion of the court.</p></body></html>",
			want: []domain.RawPage{{PhysicalIndex: 1, Text: "Opinion of the court."}},
		},
		{
			name: "break before starts a new page",
			in: `<p>523</p><p>The tort claim fails.</p>` +
				`<p style="page-break-before: always">524</p><p>Judgment affirmed.</p>`,
			want: []domain.RawPage{
				{PhysicalIndex: 1, Text: "523\nThe tort claim fails."},
				{PhysicalIndex: 2, Text: "524\nJudgment affirmed."},
			},
		},
		{
			name: "word processor page breaks",
			in: `<div>first</div>` +
				`<br clear=all style='break-before:page'>second`,
			want: []domain.RawPage{
				{PhysicalIndex: 1, Text: "first"},
				{PhysicalIndex: 2, Text: "second"},
			},
		},
		{
			name: "scripts styles and comments are dropped",
			in: `<style>p { color: red }</style><script>var x = "<p>no</p>";</script>` +
				`<!-- draft --><p>Visible &amp; decoded</p><noscript>enable js</noscript>`,
			want: []domain.RawPage{{PhysicalIndex: 1, Text: "Visible & decoded"}},
		},
		{
			name: "blank pages are dropped",
			in:   `<p>one</p><div style="page-break-before:always"></div><p style="page-break-before:always">two</p>`,
			want: []domain.RawPage{
				{PhysicalIndex: 1, Text: "one"},
				{PhysicalIndex: 2, Text: "two"},
			},
		},
		{
			name: "markup only yields nothing",
			in:   "<html><body><div></div></body></html>",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Extract(context.Background(), []byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Errors(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New().Extract(ctx, []byte("<p>x</p>"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStripHTML(t *testing.T) {
	in := "<h1>Title</h1>\n<ul><li>a</li><li>b</li></ul>Tail  text<br/>next<hr>end"

	assert.Equal(t, "Title\na\nb\nTail text\nnext\nend", stripHTML(in))
}
