// Package extract turns source documents into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/lehigh-university-libraries/labelaudit/internal/ocr"
	"github.com/lehigh-university-libraries/labelaudit/internal/providers"
)

var (
	// ErrUnsupportedFormat is returned for files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrNoText is returned when a document yields no text.
	ErrNoText = errors.New("no text extracted")
)

// DefaultMinTextChars is the least amount of text a PDF must carry before
// it is treated as having a text layer.
const DefaultMinTextChars = 50

// SupportedExtensions lists the document types Extract understands.
var SupportedExtensions = []string{".txt", ".md", ".pdf", ".docx", ".png", ".jpg", ".jpeg"}

// Extraction methods reported in Result.Method.
const (
	MethodText = "text"
	MethodPDF  = "pdf"
	MethodDocx = "docx"
	MethodOCR  = "ocr"
)

// Recognizer transcribes scanned documents. ocr.Service implements it.
type Recognizer interface {
	ExtractText(ctx context.Context, doc providers.Document) (string, error)
}

// Options configures an Extractor.
type Options struct {
	MinTextChars int
}

// Result is the text of one document.
type Result struct {
	Path   string `json:"path" yaml:"path"`
	Text   string `json:"text" yaml:"text"`
	Method string `json:"method" yaml:"method"`
	Pages  int    `json:"pages,omitempty" yaml:"pages,omitempty"`
	// NeedsOCR is set for PDFs whose text layer is shorter than MinTextChars.
	NeedsOCR bool `json:"needs_ocr" yaml:"needs_ocr"`
}

// Extractor dispatches documents to a format-specific reader.
type Extractor struct {
	minChars   int
	recognizer Recognizer
}

// New creates an Extractor. recognizer may be nil, in which case images cannot be
// read and image-only PDFs keep their (short) text layer.
func New(opts Options, recognizer Recognizer) *Extractor {
	if opts.MinTextChars <= 0 {
		opts.MinTextChars = DefaultMinTextChars
	}
	return &Extractor{minChars: opts.MinTextChars, recognizer: recognizer}
}

// Supported reports whether path has an extension Extract understands.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Extract reads the text of the document at path. Output is folded to NFC.
func (e *Extractor) Extract(ctx context.Context, path string) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(path))
	res := &Result{Path: path}

	switch ext {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		res.Text = string(data)
		res.Method = MethodText

	case ".pdf":
		text, pages, err := extractPDF(path)
		if err != nil {
			return nil, fmt.Errorf("failed to extract PDF %s: %w", path, err)
		}
		res.Text = text
		res.Pages = pages
		res.Method = MethodPDF

		if countChars(text) < e.minChars {
			res.NeedsOCR = true
			if e.recognizer != nil {
				if ocrText, err := e.recognize(ctx, path); err != nil {
					slog.Warn("OCR fallback failed", "path", path, "err", err)
				} else {
					res.Text = ocrText
					res.Method = MethodOCR
				}
			}
		}

	case ".docx":
		text, err := extractDocx(path)
		if err != nil {
			return nil, fmt.Errorf("failed to extract DOCX %s: %w", path, err)
		}
		res.Text = text
		res.Method = MethodDocx

	case ".png", ".jpg", ".jpeg":
		if e.recognizer == nil {
			return nil, fmt.Errorf("%w: %s needs an OCR provider", ErrNoText, path)
		}
		text, err := e.recognize(ctx, path)
		if err != nil {
			return nil, err
		}
		res.Text = text
		res.Method = MethodOCR

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	res.Text = norm.NFC.String(res.Text)
	return res, nil
}

// ExtractText returns only the text of a document, failing with ErrNoText
// when it is blank.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	res, err := e.Extract(ctx, path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(res.Text) == "" {
		return "", fmt.Errorf("%w: %s", ErrNoText, path)
	}
	return res.Text, nil
}

func (e *Extractor) recognize(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return e.recognizer.ExtractText(ctx, providers.Document{
		Name:     filepath.Base(path),
		MIMEType: ocr.MIMEType(path),
		Data:     data,
	})
}

// countChars counts non-space runes.
func countChars(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
