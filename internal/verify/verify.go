// Package verify runs the field matcher over every field of every record
// and aggregates the verdicts into a Report.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/record"
)

// RecordSource returns the parsed label record for an id. Parse failures
// should wrap record.ErrUnparseable.
type RecordSource interface {
	Record(ctx context.Context, id string) (record.Node, error)
}

// TextProvider returns the extracted document text for an id.
type TextProvider interface {
	Text(ctx context.Context, id string) (string, error)
}

// Row is one field verdict in a run's output.
type Row struct {
	RecordID   string         `json:"record_id" yaml:"record_id"`
	FieldPath  string         `json:"field_path" yaml:"field_path"`
	Value      string         `json:"value" yaml:"value"`
	Status     matcher.Status `json:"status" yaml:"status"`
	Score      float64        `json:"score" yaml:"score"`
	Evidence   string         `json:"evidence" yaml:"evidence"`
	DateFormat string         `json:"date_format,omitempty" yaml:"date_format,omitempty"`
}

// Skip records a record that produced no verdicts.
type Skip struct {
	RecordID string `json:"record_id" yaml:"record_id"`
	Reason   string `json:"reason" yaml:"reason"`
}

// Outcome is the result of verifying a single record. Exactly one of Rows
// or Skipped is meaningful.
type Outcome struct {
	RecordID    string
	Rows        []Row
	Skipped     *Skip
	TextMissing bool
}

// Options configures a Verifier.
type Options struct {
	// Concurrency is the number of records verified at once.
	Concurrency int
	// Accepted are the statuses a record's fields must all have for the
	// record to count as verified.
	Accepted []matcher.Status
}

// Verifier pairs records with their document text and classifies every field.
type Verifier struct {
	records RecordSource
	texts   TextProvider
	matcher *matcher.Matcher
	opts    Options
}

// New creates a Verifier.
func New(records RecordSource, texts TextProvider, m *matcher.Matcher, opts Options) *Verifier {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Accepted == nil {
		opts.Accepted = DefaultAccepted
	}
	return &Verifier{records: records, texts: texts, matcher: m, opts: opts}
}

// Run verifies the given records and aggregates the outcomes in id order.
// Per-record failures are recorded in the report; only cancellation of ctx
// returns an error.
func (v *Verifier) Run(ctx context.Context, ids []string) (*Report, error) {
	slog.Info("Starting verification", "records", len(ids), "concurrency", v.opts.Concurrency)

	outcomes := make([]Outcome, len(ids))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.opts.Concurrency)
	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = v.VerifyRecord(ctx, id)

			if n := done.Add(1); n%100 == 0 {
				slog.Info("Verification progress", "progress", fmt.Sprintf("%d/%d", n, len(ids)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to verify records: %w", err)
	}

	report := Aggregate(outcomes, v.opts.Accepted)
	slog.Info("Verification finished",
		"records", report.Records,
		"fields", report.Checkable,
		"unparseable", len(report.Unparseable),
	)
	return report, nil
}

// VerifyRecord loads, flattens and matches one record.
func (v *Verifier) VerifyRecord(ctx context.Context, id string) Outcome {
	node, err := v.records.Record(ctx, id)
	if err != nil {
		slog.Warn("Skipping record", "record", id, "err", err)
		return Outcome{RecordID: id, Skipped: &Skip{RecordID: id, Reason: err.Error()}}
	}

	text, err := v.texts.Text(ctx, id)
	missing := false
	if err != nil {
		slog.Warn("Document text unavailable, matching against empty text", "record", id, "err", err)
		text = ""
		missing = true
	}

	return Outcome{
		RecordID:    id,
		Rows:        MatchRecord(v.matcher, id, node, text),
		TextMissing: missing,
	}
}

// MatchRecord classifies every flattened field of n against text.
func MatchRecord(m *matcher.Matcher, id string, n record.Node, text string) []Row {
	fields := record.Flatten(n)
	rows := make([]Row, 0, len(fields))
	for _, f := range fields {
		verdict := m.Match(f.Value, text, record.FieldName(f.Path))
		rows = append(rows, Row{
			RecordID:   id,
			FieldPath:  f.Path,
			Value:      f.Value.String(),
			Status:     verdict.Status,
			Score:      verdict.Score,
			Evidence:   verdict.Evidence,
			DateFormat: verdict.DateFormat,
		})
	}
	return rows
}
