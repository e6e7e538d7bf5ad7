package auditcmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/labelaudit/internal/dataset"
	"github.com/lehigh-university-libraries/labelaudit/internal/extract"
)

// Lists written next to the extracted texts.
const (
	ErrorsFile    = "extraction_errors.txt"
	ImageOnlyFile = "image_only.txt"
)

// ExtractSummary describes an extraction pass over a directory.
type ExtractSummary struct {
	Written   []string
	Failed    map[string]string
	ImageOnly []string
	Skipped   []string
}

// NewExtractCmd creates the extract command
func NewExtractCmd() *cobra.Command {
	var inputDir, outputDir string
	var useOCR bool

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the text of every document in a directory",
		Long: `Extract writes <id>.txt for every PDF, DOCX, text or image document in the
input directory. PDFs with almost no text layer are listed as image-only and,
with --ocr, transcribed by the configured OCR provider.`,
		Example: `  labelaudit extract --input invoices/ --output texts/
  OCR_PROVIDER=gemini labelaudit extract --input scans/ --output texts/ --ocr`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ocr") {
				cfg.Extract.OCR = useOCR
			}
			extractor, err := NewExtractor(cfg)
			if err != nil {
				return err
			}

			summary, err := ExtractDir(cmd.Context(), extractor, inputDir, outputDir, cfg.Verify.Concurrency)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Extracted:  %d\n", len(summary.Written))
			fmt.Fprintf(out, "Image-only: %d\n", len(summary.ImageOnly))
			fmt.Fprintf(out, "Failed:     %d\n", len(summary.Failed))
			if len(summary.Skipped) > 0 {
				fmt.Fprintf(out, "Skipped (shared basename): %d\n", len(summary.Skipped))
			}
			fmt.Fprintf(out, "\nTexts saved to: %s\n", outputDir)
			return nil
		},
	}

	addConfigFlag(cmd)
	cmd.Flags().StringVar(&inputDir, "input", "", "Directory of documents")
	cmd.Flags().StringVar(&outputDir, "output", "", "Directory for the extracted <id>.txt files")
	cmd.Flags().BoolVar(&useOCR, "ocr", false, "Transcribe images and image-only PDFs with the OCR provider")
	cmd.Flags().Int("concurrency", 0, "Number of documents extracted at once")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// ExtractDir extracts every supported document of inputDir into
// outputDir/<id>.txt. When several documents share a basename the first in
// name order is used. Failures are collected, not returned.
func ExtractDir(ctx context.Context, extractor *extract.Extractor, inputDir, outputDir string, concurrency int) (*ExtractSummary, error) {
	inv, err := dataset.Inventory(inputDir, extract.SupportedExtensions...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := &ExtractSummary{Failed: make(map[string]string)}
	var files []dataset.File
	seen := make(map[string]bool)
	for _, f := range inv.Files {
		if seen[f.ID] {
			slog.Warn("Skipping document with shared basename", "file", f.Name)
			summary.Skipped = append(summary.Skipped, f.Name)
			continue
		}
		seen[f.ID] = true
		files = append(files, f)
	}

	if concurrency < 1 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	var mu sync.Mutex

	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := extractor.Extract(gctx, f.Path)
			if err == nil {
				err = os.WriteFile(filepath.Join(outputDir, f.ID+".txt"), []byte(res.Text), 0644)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("Extraction failed", "file", f.Name, "err", err)
				summary.Failed[f.Name] = err.Error()
				return nil
			}
			summary.Written = append(summary.Written, f.ID)
			if res.NeedsOCR && res.Method != extract.MethodOCR {
				summary.ImageOnly = append(summary.ImageOnly, f.Name)
			}
			slog.Debug("Document extracted", "file", f.Name, "method", res.Method, "chars", len(res.Text))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extraction interrupted: %w", err)
	}

	sort.Strings(summary.Written)
	sort.Strings(summary.ImageOnly)

	if len(summary.Failed) > 0 {
		names := make([]string, 0, len(summary.Failed))
		for name := range summary.Failed {
			names = append(names, name)
		}
		sort.Strings(names)
		var b strings.Builder
		for _, name := range names {
			fmt.Fprintf(&b, "%s: %s\n", name, summary.Failed[name])
		}
		if err := os.WriteFile(filepath.Join(outputDir, ErrorsFile), []byte(b.String()), 0644); err != nil {
			return nil, fmt.Errorf("failed to write error list: %w", err)
		}
	}
	if len(summary.ImageOnly) > 0 {
		data := strings.Join(summary.ImageOnly, "\n") + "\n"
		if err := os.WriteFile(filepath.Join(outputDir, ImageOnlyFile), []byte(data), 0644); err != nil {
			return nil, fmt.Errorf("failed to write image-only list: %w", err)
		}
	}
	return summary, nil
}
