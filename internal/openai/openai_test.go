package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/labelaudit/internal/providers"
)

func TestExtractText(t *testing.T) {
	var raw []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		raw, _ = json.Marshal(body)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Total 10"}}]}`))
	}))
	defer srv.Close()

	o := &OpenAI{BaseURL: srv.URL, APIKey: "sk-test", Client: srv.Client()}
	text, err := o.ExtractText(context.Background(), providers.Config{
		Model:    "gpt-4o",
		Prompt:   "transcribe",
		Document: &providers.Document{MIMEType: "image/jpeg", Data: []byte("jpg")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Total 10", text)
	assert.True(t, strings.Contains(string(raw), "data:image/jpeg;base64,anBn"))
}

func TestExtractTextNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	o := &OpenAI{BaseURL: srv.URL, APIKey: "sk-test", Client: srv.Client()}
	_, err := o.ExtractText(context.Background(), providers.Config{Model: "gpt-4o"})
	assert.Error(t, err)
}

func TestExtractTextRequiresKey(t *testing.T) {
	o := &OpenAI{BaseURL: "http://127.0.0.1:0"}
	_, err := o.ExtractText(context.Background(), providers.Config{})
	assert.Error(t, err)
}

func TestExtractTextRejectsPDF(t *testing.T) {
	o := &OpenAI{BaseURL: "http://127.0.0.1:0", APIKey: "sk-test"}
	_, err := o.ExtractText(context.Background(), providers.Config{
		Document: &providers.Document{MIMEType: "application/pdf"},
	})
	assert.True(t, errors.Is(err, providers.ErrUnsupportedDocument))
}
