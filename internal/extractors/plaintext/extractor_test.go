package plaintext

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

	assert.Equal(t, "plaintext", e.Name())
	assert.Contains(t, e.MIMETypes(), "text/plain")
	assert.Contains(t, e.Extensions(), ".txt")
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []domain.RawPage
	}{
		{
			name: "single page",
			in:   "Opinion of the court.",
			want: []domain.RawPage{{PhysicalIndex: 1, Text: "Opinion of the court."}},
		},
		{
			name: "form feed separates pages",
			in:   "736\nfirst\f737\nsecond",
			want: []domain.RawPage{
				{PhysicalIndex: 1, Text: "736\nfirst"},
				{PhysicalIndex: 2, Text: "737\nsecond"},
			},
		},
		{
			name: "blank pages are dropped and numbering stays dense",
			in:   "one\f  \n \ftwo",
			want: []domain.RawPage{
				{PhysicalIndex: 1, Text: "one"},
				{PhysicalIndex: 2, Text: "two"},
			},
		},
		{
			name: "crlf and bom are normalised",
			in:   "\uFEFFline one\r\nline two",
			want: []domain.RawPage{{PhysicalIndex: 1, Text: "line one\nline two"}},
		},
		{
			name: "only whitespace",
			in:   " \n\f\t",
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

func TestExtract_InvalidUTF8(t *testing.T) {
	got, err := New().Extract(context.Background(), []byte{'o', 'k', 0xff})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ok\uFFFD", got[0].Text)
}

func TestExtract_Empty(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, []byte("text"))

	assert.ErrorIs(t, err, context.Canceled)
}
