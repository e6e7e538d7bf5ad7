// Package auditcmd holds the bodies of the labelaudit subcommands.
package auditcmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/labelaudit/internal/config"
	"github.com/lehigh-university-libraries/labelaudit/internal/dataset"
	"github.com/lehigh-university-libraries/labelaudit/internal/extract"
	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/ocr"
	"github.com/lehigh-university-libraries/labelaudit/internal/record"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

// loadConfig reads the --config file and applies --threshold and
// --concurrency when they were given.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if f := cmd.Flags().Lookup("threshold"); f != nil && f.Changed {
		cfg.Matcher.FuzzyThreshold, _ = cmd.Flags().GetFloat64("threshold")
	}
	if f := cmd.Flags().Lookup("concurrency"); f != nil && f.Changed {
		cfg.Verify.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to a YAML or TOML config file")
}

// NewExtractor builds a text extractor, with an OCR fallback when the
// config enables one.
func NewExtractor(cfg *config.Config) (*extract.Extractor, error) {
	var recognizer extract.Recognizer
	if cfg.Extract.OCR {
		svc, err := ocr.NewService(cfg.Extract.OCRProvider, cfg.Extract.OCRModel)
		if err != nil {
			return nil, fmt.Errorf("failed to create OCR service: %w", err)
		}
		slog.Info("OCR fallback enabled", "provider", svc.Name(), "model", svc.Model())
		recognizer = svc
	}
	return extract.New(cfg.ExtractOptions(), recognizer), nil
}

// inputs are the sources a verification run reads from.
type inputs struct {
	records verify.RecordSource
	texts   verify.TextProvider
	ids     []string
}

// isBundle reports whether path names a JSONL or Parquet bundle file rather
// than a directory of labels.
func isBundle(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// openInputs resolves the record source and text provider. recordsPath is
// either a directory of <id>.json labels or a bundle file; a bundle also
// serves document text unless documentsDir is set.
func openInputs(cfg *config.Config, recordsPath, documentsDir string, extractDocs bool, sample int) (*inputs, error) {
	in := &inputs{}

	if isBundle(recordsPath) {
		entries, err := dataset.NewLoader(recordsPath).LoadSample(sample)
		if err != nil {
			return nil, fmt.Errorf("failed to load bundle: %w", err)
		}
		bundle := dataset.NewBundle(entries)
		in.records = bundle
		in.texts = bundle
		in.ids = bundle.IDs()
	} else {
		src := dataset.DirRecordSource{Dir: recordsPath}
		ids, err := src.IDs()
		if err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}
		if sample > 0 && sample < len(ids) {
			ids = ids[:sample]
		}
		in.records = src
		in.ids = ids
	}

	switch {
	case documentsDir != "" && extractDocs:
		extractor, err := NewExtractor(cfg)
		if err != nil {
			return nil, err
		}
		in.texts = dataset.NewExtractingTextProvider(documentsDir, extractor, extract.SupportedExtensions...)
	case documentsDir != "":
		in.texts = dataset.DirTextProvider{Dir: documentsDir}
	case in.texts == nil:
		return nil, fmt.Errorf("no document text source: pass --documents or a bundle file")
	}

	slog.Info("Inputs resolved", "records", recordsPath, "documents", documentsDir, "count", len(in.ids))
	return in, nil
}

// loadRecords parses every label of a directory or bundle. Unparseable
// labels are logged and left out.
func loadRecords(ctx context.Context, recordsPath string) (map[string]record.Node, error) {
	var (
		src verify.RecordSource
		ids []string
	)
	if isBundle(recordsPath) {
		bundle, err := dataset.LoadBundle(recordsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load bundle: %w", err)
		}
		src, ids = bundle, bundle.IDs()
	} else {
		dir := dataset.DirRecordSource{Dir: recordsPath}
		var err error
		if ids, err = dir.IDs(); err != nil {
			return nil, fmt.Errorf("failed to list labels: %w", err)
		}
		src = dir
	}

	out := make(map[string]record.Node, len(ids))
	for _, id := range ids {
		n, err := src.Record(ctx, id)
		if err != nil {
			slog.Warn("Skipping label", "record", id, "err", err)
			continue
		}
		out[id] = n
	}
	return out, nil
}

// parseStatuses converts comma-separated status names.
func parseStatuses(list string) ([]matcher.Status, error) {
	var out []matcher.Status
	for _, name := range splitList(list) {
		s, ok := matcher.ParseStatus(strings.ToUpper(name))
		if !ok {
			return nil, fmt.Errorf("unknown status %q", name)
		}
		out = append(out, s)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
