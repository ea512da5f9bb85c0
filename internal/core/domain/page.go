package domain

// RawPage is the extracted text of one physical page, before page labels are inferred.
type RawPage struct {
	// PhysicalIndex is the 1-based sheet index within the upload.
	PhysicalIndex int

	// Text is the extracted page text.
	Text string
}

// Page is a page of text carrying its externally meaningful page label.
// The label is the legal/reporter page number, which need not match the sheet index.
type Page struct {
	// Label is the inferred page number, always >= 1.
	Label int

	// Text is the page text, unchanged from extraction.
	Text string
}
