// Package ocr transcribes scanned documents through an LLM provider.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/labelaudit/internal/gemini"
	"github.com/lehigh-university-libraries/labelaudit/internal/ollama"
	"github.com/lehigh-university-libraries/labelaudit/internal/openai"
	"github.com/lehigh-university-libraries/labelaudit/internal/providers"
)

// Service handles OCR extraction from images and scanned PDFs
type Service struct {
	provider providers.Provider
	name     string
	model    string
}

// NewService creates an OCR service for the named provider. An empty name
// falls back to OCR_PROVIDER and then to ollama.
func NewService(name, model string) (*Service, error) {
	if name == "" {
		name = os.Getenv("OCR_PROVIDER")
		if name == "" {
			name = "ollama"
		}
	}

	var p providers.Provider
	switch name {
	case "gemini":
		p = gemini.New()
	case "ollama":
		p = ollama.New()
	case "openai":
		p = openai.New()
	default:
		return nil, fmt.Errorf("unsupported OCR provider: %s", name)
	}

	if model == "" {
		model = getDefaultModel(name)
	}
	return NewServiceWithProvider(p, name, model), nil
}

// NewServiceWithProvider wraps an already constructed provider.
func NewServiceWithProvider(p providers.Provider, name, model string) *Service {
	return &Service{provider: p, name: name, model: model}
}

// Name returns the provider name.
func (s *Service) Name() string { return s.name }

// Model returns the model used for transcription.
func (s *Service) Model() string { return s.model }

func getDefaultModel(provider string) string {
	switch provider {
	case "gemini":
		if model := os.Getenv("GEMINI_MODEL"); model != "" {
			return model
		}
		return "gemini-2.0-flash"
	case "openai":
		if model := os.Getenv("OPENAI_MODEL"); model != "" {
			return model
		}
		return "gpt-4o"
	case "ollama":
		if model := os.Getenv("OLLAMA_MODEL"); model != "" {
			return model
		}
		return "mistral-small3.2:24b"
	default:
		return ""
	}
}

const ocrPrompt = `You are performing OCR (Optical Character Recognition) on a scanned business document such as an invoice or receipt.

Your task is to extract ALL visible text from the document exactly as it appears, preserving:
- Line breaks and table rows
- Capitalization
- Punctuation, including dashes and percent signs
- Numbers exactly as printed, including decimal places and thousands separators
- Dates exactly as printed
- Order of text elements

INSTRUCTIONS:
1. Read the document carefully from top to bottom
2. Transcribe every piece of visible text
3. Put each table row on its own line
4. Do not add any interpretation, commentary, or explanations
5. Do not normalize, round or reformat any value
6. If text is partially obscured or unclear, transcribe what you can see and use [?] for illegible portions

OUTPUT FORMAT:
Provide ONLY the extracted text. Do not include phrases like "Here is the text:" or "The document contains:".`

// ExtractText transcribes a document.
func (s *Service) ExtractText(ctx context.Context, doc providers.Document) (string, error) {
	text, err := s.provider.ExtractText(ctx, providers.Config{
		Model:       s.model,
		Temperature: 0.0,
		Prompt:      ocrPrompt,
		Document:    &doc,
	})
	if err != nil {
		return "", fmt.Errorf("failed to OCR %s with %s: %w", doc.Name, s.name, err)
	}

	slog.Debug("Extracted OCR text", "provider", s.name, "model", s.model, "document", doc.Name, "length", len(text))
	return strings.TrimSpace(text), nil
}

// ExtractTextFromFile reads a file and transcribes it.
func (s *Service) ExtractTextFromFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document for OCR: %w", err)
	}
	return s.ExtractText(ctx, providers.Document{
		Name:     filepath.Base(path),
		MIMEType: MIMEType(path),
		Data:     data,
	})
}

// MIMEType returns the MIME type of a document from its extension.
func MIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
