// Package config loads labelaudit settings from a YAML or TOML file,
// environment overrides and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/labelaudit/internal/extract"
	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

// Environment variables that override file settings.
const (
	EnvFuzzyThreshold = "LABELAUDIT_FUZZY_THRESHOLD"
	EnvConcurrency    = "LABELAUDIT_CONCURRENCY"
	EnvDB             = "LABELAUDIT_DB"
	EnvOCRProvider    = "OCR_PROVIDER"
	EnvOCRModel       = "OCR_MODEL"
)

// Config is the full application configuration.
type Config struct {
	Matcher MatcherConfig `yaml:"matcher" toml:"matcher"`
	Verify  VerifyConfig  `yaml:"verify" toml:"verify"`
	Extract ExtractConfig `yaml:"extract" toml:"extract"`
	Store   StoreConfig   `yaml:"store" toml:"store"`
}

// MatcherConfig tunes field matching.
type MatcherConfig struct {
	FuzzyThreshold        float64  `yaml:"fuzzy_threshold" toml:"fuzzy_threshold" validate:"gte=0,lte=1"`
	DateFields            []string `yaml:"date_fields" toml:"date_fields"`
	PercentageFields      []string `yaml:"percentage_fields" toml:"percentage_fields"`
	NumericWordBoundary   bool     `yaml:"numeric_word_boundary" toml:"numeric_word_boundary"`
	NumericExtraPrecision int      `yaml:"numeric_extra_precision" toml:"numeric_extra_precision" validate:"gte=0"`
	NumericMaxPrecision   int      `yaml:"numeric_max_precision" toml:"numeric_max_precision" validate:"gte=0"`
}

// VerifyConfig tunes batch verification.
type VerifyConfig struct {
	Concurrency int      `yaml:"concurrency" toml:"concurrency" validate:"gte=1"`
	Accepted    []string `yaml:"accepted" toml:"accepted" validate:"dive,status"`
}

// ExtractConfig tunes document text extraction.
type ExtractConfig struct {
	MinTextChars int    `yaml:"min_text_chars" toml:"min_text_chars" validate:"gte=1"`
	OCR          bool   `yaml:"ocr" toml:"ocr"`
	OCRProvider  string `yaml:"ocr_provider" toml:"ocr_provider" validate:"omitempty,oneof=gemini ollama openai"`
	OCRModel     string `yaml:"ocr_model" toml:"ocr_model"`
}

// StoreConfig locates the run database. An empty path keeps runs in memory.
type StoreConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	m := matcher.DefaultOptions()
	accepted := make([]string, len(verify.DefaultAccepted))
	for i, s := range verify.DefaultAccepted {
		accepted[i] = string(s)
	}

	return &Config{
		Matcher: MatcherConfig{
			FuzzyThreshold:        m.FuzzyThreshold,
			DateFields:            m.DateFields,
			PercentageFields:      m.PercentageFields,
			NumericWordBoundary:   m.NumericWordBoundary,
			NumericExtraPrecision: m.NumericExtraPrecision,
			NumericMaxPrecision:   m.NumericMaxPrecision,
		},
		Verify: VerifyConfig{
			Concurrency: runtime.NumCPU(),
			Accepted:    accepted,
		},
		Extract: ExtractConfig{
			MinTextChars: extract.DefaultMinTextChars,
		},
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, cfg)
		case ".toml":
			err = toml.Unmarshal(data, cfg)
		default:
			return nil, fmt.Errorf("unsupported config format: %s", path)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvFuzzyThreshold); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvFuzzyThreshold, err)
		}
		c.Matcher.FuzzyThreshold = f
	}
	if v := os.Getenv(EnvConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", EnvConcurrency, err)
		}
		c.Verify.Concurrency = n
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvOCRProvider); v != "" {
		c.Extract.OCRProvider = v
	}
	if v := os.Getenv(EnvOCRModel); v != "" {
		c.Extract.OCRModel = v
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		_, ok := matcher.ParseStatus(fl.Field().String())
		return ok
	})
	return v
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: invalid value %v (%s)", fe.Namespace(), fe.Value(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// MatcherOptions converts the matcher section.
func (c *Config) MatcherOptions() matcher.Options {
	return matcher.Options{
		FuzzyThreshold:        c.Matcher.FuzzyThreshold,
		DateFields:            c.Matcher.DateFields,
		PercentageFields:      c.Matcher.PercentageFields,
		NumericWordBoundary:   c.Matcher.NumericWordBoundary,
		NumericExtraPrecision: c.Matcher.NumericExtraPrecision,
		NumericMaxPrecision:   c.Matcher.NumericMaxPrecision,
	}
}

// VerifyOptions converts the verify section. Accepted names are assumed valid.
func (c *Config) VerifyOptions() verify.Options {
	accepted := make([]matcher.Status, 0, len(c.Verify.Accepted))
	for _, name := range c.Verify.Accepted {
		if s, ok := matcher.ParseStatus(name); ok {
			accepted = append(accepted, s)
		}
	}
	return verify.Options{
		Concurrency: c.Verify.Concurrency,
		Accepted:    accepted,
	}
}

// ExtractOptions converts the extract section.
func (c *Config) ExtractOptions() extract.Options {
	return extract.Options{MinTextChars: c.Extract.MinTextChars}
}
