package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/labelaudit/internal/providers"
)

func TestExtractText(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "INVOICE\nNo 1"})
	}))
	defer srv.Close()

	o := &Ollama{BaseURL: srv.URL, Client: srv.Client()}
	text, err := o.ExtractText(context.Background(), providers.Config{
		Model:    "llava",
		Prompt:   "transcribe",
		Document: &providers.Document{MIMEType: "image/png", Data: []byte("png")},
	})
	require.NoError(t, err)
	assert.Equal(t, "INVOICE\nNo 1", text)
	assert.Equal(t, "llava", got["model"])
	assert.Equal(t, []any{"cG5n"}, got["images"])
}

func TestExtractTextRejectsPDF(t *testing.T) {
	o := &Ollama{BaseURL: "http://127.0.0.1:0"}
	_, err := o.ExtractText(context.Background(), providers.Config{
		Document: &providers.Document{MIMEType: "application/pdf"},
	})
	assert.True(t, errors.Is(err, providers.ErrUnsupportedDocument))
}

func TestExtractTextServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	o := &Ollama{BaseURL: srv.URL, Client: srv.Client()}
	_, err := o.ExtractText(context.Background(), providers.Config{Model: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
