package dataset

import (
	"errors"
	"strings"
)

var (
	// ErrTextUnavailable is returned when a document has no extracted text.
	ErrTextUnavailable = errors.New("document text unavailable")
	// ErrNotFound is returned when an id is not present in a source.
	ErrNotFound = errors.New("not found")
)

// Entry is one row of a label bundle: a label record serialized as JSON
// alongside the text extracted from its document.
type Entry struct {
	ID    string `json:"id" parquet:"id"`
	Label string `json:"label" parquet:"label"`

	// Text is the full document text. TextPages is used when Text is empty.
	Text      string   `json:"text" parquet:"text"`
	TextPages []string `json:"text_pages" parquet:"text_pages,list"`
}

// pageBreak separates pages when they are joined into one text.
const pageBreak = "\n\n---PAGE BREAK---\n\n"

// DocumentText returns the entry's text, joining pages when no full text
// was stored.
func (e *Entry) DocumentText() string {
	if e.Text != "" {
		return e.Text
	}
	if len(e.TextPages) == 0 {
		return ""
	}
	return strings.Join(e.TextPages, pageBreak)
}
