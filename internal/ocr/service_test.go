package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/labelaudit/internal/providers"
)

type fakeProvider struct {
	got  providers.Config
	text string
	err  error
}

func (f *fakeProvider) ExtractText(_ context.Context, config providers.Config) (string, error) {
	f.got = config
	return f.text, f.err
}

func TestExtractTextFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.JPG")
	if err := os.WriteFile(path, []byte("jpeg bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	fp := &fakeProvider{text: "  Total 10\n"}
	s := NewServiceWithProvider(fp, "fake", "m1")

	text, err := s.ExtractTextFromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != "Total 10" {
		t.Errorf("Expected trimmed text, got %q", text)
	}
	if fp.got.Model != "m1" {
		t.Errorf("Expected model m1, got %s", fp.got.Model)
	}
	if fp.got.Document == nil || fp.got.Document.MIMEType != "image/jpeg" || fp.got.Document.Name != "scan.JPG" {
		t.Errorf("Unexpected document: %+v", fp.got.Document)
	}
	if fp.got.Temperature != 0 {
		t.Errorf("Expected zero temperature, got %f", fp.got.Temperature)
	}
}

func TestExtractTextWrapsProviderError(t *testing.T) {
	boom := errors.New("boom")
	s := NewServiceWithProvider(&fakeProvider{err: boom}, "fake", "m1")

	_, err := s.ExtractText(context.Background(), providers.Document{Name: "x.png"})
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped provider error, got %v", err)
	}
}

func TestNewService(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "")
	s, err := NewService("ollama", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.Model() != "mistral-small3.2:24b" {
		t.Errorf("Expected default ollama model, got %s", s.Model())
	}

	if _, err := NewService("tesseract", ""); err == nil {
		t.Errorf("Expected unsupported provider error")
	}
}

func TestMIMEType(t *testing.T) {
	tests := map[string]string{
		"a.png":  "image/png",
		"a.jpeg": "image/jpeg",
		"a.PDF":  "application/pdf",
		"a.bin":  "application/octet-stream",
	}
	for path, expected := range tests {
		if got := MIMEType(path); got != expected {
			t.Errorf("MIMEType(%s): expected %s, got %s", path, expected, got)
		}
	}
}
