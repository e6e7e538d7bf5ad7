package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvFuzzyThreshold, EnvConcurrency, EnvDB, EnvOCRProvider, EnvOCRModel} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, matcher.DefaultOptions(), cfg.MatcherOptions())
	assert.Equal(t, verify.DefaultAccepted, cfg.VerifyOptions().Accepted)
	assert.GreaterOrEqual(t, cfg.Verify.Concurrency, 1)
	assert.Equal(t, 50, cfg.ExtractOptions().MinTextChars)
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "labelaudit.yaml", `
matcher:
  fuzzy_threshold: 0.8
  date_fields: [shipped]
verify:
  concurrency: 3
  accepted: [FOUND, FOUND_NUMERIC_FORMAT]
store:
  path: runs.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.Matcher.FuzzyThreshold)
	assert.Equal(t, []string{"shipped"}, cfg.Matcher.DateFields)
	// untouched sections keep their defaults
	assert.Equal(t, matcher.DefaultOptions().PercentageFields, cfg.Matcher.PercentageFields)
	assert.True(t, cfg.Matcher.NumericWordBoundary)
	assert.Equal(t, 3, cfg.Verify.Concurrency)
	assert.Equal(t, []matcher.Status{matcher.StatusFound, matcher.StatusFoundNumericFormat}, cfg.VerifyOptions().Accepted)
	assert.Equal(t, "runs.db", cfg.Store.Path)
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "labelaudit.toml", `
[matcher]
fuzzy_threshold = 0.7
numeric_word_boundary = false

[extract]
min_text_chars = 20
ocr = true
ocr_provider = "gemini"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Matcher.FuzzyThreshold)
	assert.False(t, cfg.Matcher.NumericWordBoundary)
	assert.Equal(t, 20, cfg.Extract.MinTextChars)
	assert.True(t, cfg.Extract.OCR)
	assert.Equal(t, "gemini", cfg.Extract.OCRProvider)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvFuzzyThreshold, "0.9")
	t.Setenv(EnvConcurrency, "2")
	t.Setenv(EnvDB, "/tmp/x.db")
	t.Setenv(EnvOCRProvider, "openai")
	t.Setenv(EnvOCRModel, "gpt-4o")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Matcher.FuzzyThreshold)
	assert.Equal(t, 2, cfg.Verify.Concurrency)
	assert.Equal(t, "/tmp/x.db", cfg.Store.Path)
	assert.Equal(t, "openai", cfg.Extract.OCRProvider)
	assert.Equal(t, "gpt-4o", cfg.Extract.OCRModel)

	t.Setenv(EnvConcurrency, "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"threshold above one", func(c *Config) { c.Matcher.FuzzyThreshold = 1.5 }},
		{"negative threshold", func(c *Config) { c.Matcher.FuzzyThreshold = -0.1 }},
		{"zero concurrency", func(c *Config) { c.Verify.Concurrency = 0 }},
		{"unknown status", func(c *Config) { c.Verify.Accepted = []string{"FOUND", "PROBABLY"} }},
		{"unknown provider", func(c *Config) { c.Extract.OCRProvider = "tesseract" }},
		{"zero min chars", func(c *Config) { c.Extract.MinTextChars = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "labelaudit.ini", "x=1"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "matcher: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "range.yaml", "matcher:\n  fuzzy_threshold: 3\n"))
	assert.Error(t, err)
}
