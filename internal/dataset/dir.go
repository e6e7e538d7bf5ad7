package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/lehigh-university-libraries/labelaudit/internal/record"
)

// DirRecordSource reads labels stored as <dir>/<id>.json.
type DirRecordSource struct {
	Dir string
}

// Record reads and parses <dir>/<id>.json.
func (s DirRecordSource) Record(_ context.Context, id string) (record.Node, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, id+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return record.Node{}, fmt.Errorf("label %s: %w", id, ErrNotFound)
		}
		return record.Node{}, fmt.Errorf("failed to read label %s: %w", id, err)
	}
	n, err := record.Parse(data)
	if err != nil {
		return record.Node{}, fmt.Errorf("label %s: %w", id, err)
	}
	return n, nil
}

// IDs lists the label ids in the directory, sorted.
func (s DirRecordSource) IDs() ([]string, error) {
	inv, err := Inventory(s.Dir, ".json")
	if err != nil {
		return nil, err
	}
	return inv.IDs(), nil
}

// DirTextProvider reads pre-extracted text stored as <dir>/<id>.txt.
type DirTextProvider struct {
	Dir string
}

// Text reads <dir>/<id>.txt.
func (p DirTextProvider) Text(_ context.Context, id string) (string, error) {
	data, err := os.ReadFile(filepath.Join(p.Dir, id+".txt"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("document %s: %w", id, ErrTextUnavailable)
		}
		return "", fmt.Errorf("failed to read text %s: %w", id, err)
	}
	return string(data), nil
}

// TextExtractor extracts the plain text of a document file.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// ExtractingTextProvider extracts text on demand from the document in Dir
// whose basename equals the record id.
type ExtractingTextProvider struct {
	Dir       string
	Extractor TextExtractor
	// Extensions limits which files count as documents. Empty means all.
	Extensions []string

	once  sync.Once
	files map[string]string
	err   error
}

// NewExtractingTextProvider creates a provider over the documents in dir.
func NewExtractingTextProvider(dir string, extractor TextExtractor, extensions ...string) *ExtractingTextProvider {
	return &ExtractingTextProvider{Dir: dir, Extractor: extractor, Extensions: extensions}
}

// Text extracts the document matching id.
func (p *ExtractingTextProvider) Text(ctx context.Context, id string) (string, error) {
	p.once.Do(func() {
		inv, err := Inventory(p.Dir, p.Extensions...)
		if err != nil {
			p.err = err
			return
		}
		p.files = make(map[string]string, len(inv.Files))
		for _, f := range inv.Files {
			// the first file in name order wins when several share a basename
			if _, ok := p.files[f.ID]; !ok {
				p.files[f.ID] = f.Path
			}
		}
	})
	if p.err != nil {
		return "", fmt.Errorf("failed to index documents: %w", p.err)
	}

	path, ok := p.files[id]
	if !ok {
		return "", fmt.Errorf("document %s: %w", id, ErrTextUnavailable)
	}
	text, err := p.Extractor.ExtractText(ctx, path)
	if err != nil {
		return "", fmt.Errorf("document %s: %w: %w", id, ErrTextUnavailable, err)
	}
	return text, nil
}
