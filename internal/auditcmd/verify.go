package auditcmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/models"
	"github.com/lehigh-university-libraries/labelaudit/internal/results"
	"github.com/lehigh-university-libraries/labelaudit/internal/storage"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

type verifyFlags struct {
	records   string
	documents string
	extract   bool
	output    string
	issues    string
	db        string
	sample    int
	accept    string
}

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	var f verifyFlags

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every label field against its document text",
		Long: `Verify matches every field of every label record against the text of the
document it was taken from, and reports per-field verdicts.

Labels are read from a directory of <id>.json files or from a JSONL/Parquet
bundle of {id, label, text} rows. Document text comes from <id>.txt files in
--documents, from the documents themselves with --extract, or from the bundle.`,
		Example: `  # Labels and pre-extracted text side by side
  labelaudit verify --records labels/ --documents texts/ --output results.csv

  # Extract PDF/DOCX text on the fly and keep MISSING/SIMILAR extracts
  labelaudit verify --records labels/ --documents invoices/ --extract --issues issues/

  # Verify a bundle and store the run
  labelaudit verify --records bundle.parquet --output run.xlsx --db runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeVerify(cmd, f)
		},
	}

	addConfigFlag(cmd)
	cmd.Flags().StringVar(&f.records, "records", "", "Directory of <id>.json labels, or a .jsonl/.parquet bundle")
	cmd.Flags().StringVar(&f.documents, "documents", "", "Directory of document texts (<id>.txt) or documents with --extract")
	cmd.Flags().BoolVar(&f.extract, "extract", false, "Extract text from the documents in --documents")
	cmd.Flags().StringVar(&f.output, "output", "verification_results.csv", "Results file (.csv, .yaml, .json, .xlsx, .parquet); empty to skip")
	cmd.Flags().StringVar(&f.issues, "issues", "", "Directory for the MISSING and SIMILAR extracts")
	cmd.Flags().StringVar(&f.db, "db", "", "SQLite database to store the run in")
	cmd.Flags().IntVar(&f.sample, "sample", 0, "Verify at most this many records (0 for all)")
	cmd.Flags().StringVar(&f.accept, "accept", "", "Comma-separated statuses that count as verified")
	cmd.Flags().Float64("threshold", matcher.DefaultFuzzyThreshold, "Minimum similarity reported as SIMILAR")
	cmd.Flags().Int("concurrency", 0, "Number of records verified at once")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}

func executeVerify(cmd *cobra.Command, f verifyFlags) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := cfg.VerifyOptions()
	if f.accept != "" {
		if opts.Accepted, err = parseStatuses(f.accept); err != nil {
			return err
		}
	}

	in, err := openInputs(cfg, f.records, f.documents, f.extract, f.sample)
	if err != nil {
		return err
	}

	slog.Debug("Matcher configured", "threshold", cfg.Matcher.FuzzyThreshold, "accepted", opts.Accepted)
	started := time.Now()

	m := matcher.New(cfg.MatcherOptions())
	report, err := verify.New(in.records, in.texts, m, opts).Run(cmd.Context(), in.ids)
	if err != nil {
		return err
	}
	slog.Debug("Verification elapsed", "elapsed", time.Since(started).Round(time.Millisecond))

	if err := report.WriteSummary(cmd.OutOrStdout()); err != nil {
		return err
	}

	run := &models.Run{
		ID:        uuid.NewString(),
		CreatedAt: started.UTC(),
		Records:   f.records,
		Documents: f.documents,
		Report:    report,
	}

	if f.output != "" {
		spec := results.RunSpec{
			Config: results.RunConfig{
				ID:             run.ID,
				Records:        f.records,
				Documents:      f.documents,
				FuzzyThreshold: cfg.Matcher.FuzzyThreshold,
				Timestamp:      started.Format(time.RFC3339),
			},
			Report: report,
		}
		if err := results.Write(f.output, spec); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nResults saved to: %s\n", f.output)
	}

	if f.issues != "" {
		missing, similar, err := results.WriteIssues(f.issues, report.Rows)
		if err != nil {
			return fmt.Errorf("failed to write issue extracts: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "MISSING fields: %s\nSIMILAR fields: %s\n", missing, similar)
	}

	dbPath := f.db
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}
	if dbPath != "" {
		store, err := storage.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Save(cmd.Context(), run); err != nil {
			return fmt.Errorf("failed to store run: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Run stored as %s in %s\n", run.ID, dbPath)
	}

	return nil
}
