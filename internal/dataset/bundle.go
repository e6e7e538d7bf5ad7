package dataset

import (
	"context"
	"fmt"

	"github.com/lehigh-university-libraries/labelaudit/internal/record"
)

// Bundle serves records and document texts from the entries of a loaded
// bundle file. It is both a record source and a text provider.
type Bundle struct {
	entries map[string]Entry
	ids     []string
}

// NewBundle indexes entries by id. Later entries with a repeated id are dropped.
func NewBundle(entries []Entry) *Bundle {
	b := &Bundle{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if _, ok := b.entries[e.ID]; ok {
			continue
		}
		b.entries[e.ID] = e
		b.ids = append(b.ids, e.ID)
	}
	return b
}

// LoadBundle reads a JSONL or Parquet bundle.
func LoadBundle(path string) (*Bundle, error) {
	entries, err := NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	return NewBundle(entries), nil
}

// IDs returns the entry ids in file order.
func (b *Bundle) IDs() []string {
	return append([]string(nil), b.ids...)
}

// Record parses the label of id.
func (b *Bundle) Record(_ context.Context, id string) (record.Node, error) {
	e, ok := b.entries[id]
	if !ok {
		return record.Node{}, fmt.Errorf("label %s: %w", id, ErrNotFound)
	}
	n, err := record.Parse([]byte(e.Label))
	if err != nil {
		return record.Node{}, fmt.Errorf("label %s: %w", id, err)
	}
	return n, nil
}

// Text returns the document text of id.
func (b *Bundle) Text(_ context.Context, id string) (string, error) {
	e, ok := b.entries[id]
	if !ok {
		return "", fmt.Errorf("document %s: %w", id, ErrTextUnavailable)
	}
	text := e.DocumentText()
	if text == "" {
		return "", fmt.Errorf("document %s: %w", id, ErrTextUnavailable)
	}
	return text, nil
}
