package providers

import (
	"context"
	"errors"
	"strings"
)

// ErrUnsupportedDocument is returned when a provider cannot read a document's MIME type.
var ErrUnsupportedDocument = errors.New("document type not supported by provider")

// Document is a file handed to a provider for transcription.
type Document struct {
	Name     string
	MIMEType string
	Data     []byte
}

// IsImage reports whether the document is an image.
func (d Document) IsImage() bool {
	return strings.HasPrefix(d.MIMEType, "image/")
}

// Config represents the configuration for a single provider request
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	Document    *Document
}

// Provider transcribes the text of a document with an LLM
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}
