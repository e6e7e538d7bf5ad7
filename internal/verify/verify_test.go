package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/labelaudit/internal/dataset"
	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/record"
)

var errNoText = errors.New("no text")

type mapRecords map[string]record.Node

func (m mapRecords) Record(_ context.Context, id string) (record.Node, error) {
	n, ok := m[id]
	if !ok {
		return record.Node{}, fmt.Errorf("%w: %s", record.ErrUnparseable, id)
	}
	return n, nil
}

type mapTexts map[string]string

func (m mapTexts) Text(_ context.Context, id string) (string, error) {
	t, ok := m[id]
	if !ok {
		return "", errNoText
	}
	return t, nil
}

func fixture() (mapRecords, mapTexts) {
	records := mapRecords{
		"good": record.Map(
			"Invoice Number", "INV-001",
			"Total", "150.40",
			"Seller", record.Map("Name", "ACME Corp"),
		),
		"mixed": record.Map(
			"Invoice Number", "INV-002",
			"Buyer", "Nobody Here",
			"Note", nil,
			"Items", record.Seq(record.Map("Desc", "Widget")),
		),
		"notext": record.Map("Invoice Number", "INV-003"),
	}
	texts := mapTexts{
		"good":  "Invoice Number: INV-001\nSeller: ACME Corp\nTotal 150.40",
		"mixed": "Invoice Number: INV-002\nWidget x 2",
	}
	return records, texts
}

func TestRun(t *testing.T) {
	records, texts := fixture()
	v := New(records, texts, matcher.New(matcher.DefaultOptions()), Options{Concurrency: 4})

	report, err := v.Run(context.Background(), []string{"good", "mixed", "broken", "notext"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Records != 3 {
		t.Errorf("Expected 3 parsed records, got %d", report.Records)
	}
	if len(report.Unparseable) != 1 || report.Unparseable[0].RecordID != "broken" {
		t.Errorf("Expected broken to be unparseable, got %+v", report.Unparseable)
	}
	if len(report.TextUnavailable) != 1 || report.TextUnavailable[0] != "notext" {
		t.Errorf("Expected notext to lack text, got %v", report.TextUnavailable)
	}

	// good: 3 fields, mixed: 3 non-empty + 1 null, notext: 1
	if report.Checkable != 7 {
		t.Errorf("Expected 7 checkable fields, got %d", report.Checkable)
	}
	if report.NotApplicable != 1 {
		t.Errorf("Expected 1 N/A field, got %d", report.NotApplicable)
	}
	if len(report.Rows) != 8 {
		t.Errorf("Expected 8 rows, got %d", len(report.Rows))
	}

	sum := 0
	for _, c := range report.Counts {
		sum += c
	}
	if sum != report.Checkable {
		t.Errorf("Expected counts to sum to %d, got %d", report.Checkable, sum)
	}

	if got := strings.Join(report.Verified, ","); got != "good" {
		t.Errorf("Expected only good to be verified, got %q", got)
	}
	if got := strings.Join(report.WithMissing, ","); got != "mixed,notext" {
		t.Errorf("Expected mixed,notext with MISSING, got %q", got)
	}
	if got := strings.Join(report.WithNA, ","); got != "mixed" {
		t.Errorf("Expected mixed with N/A, got %q", got)
	}
}

func TestRunWithoutTextNeverChecksDates(t *testing.T) {
	records := mapRecords{
		"notext": record.Map("Invoice Date", "2023-10-03", "Total", "10"),
	}
	v := New(records, mapTexts{}, matcher.New(matcher.DefaultOptions()), Options{Concurrency: 1})

	report, err := v.Run(context.Background(), []string{"notext"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, row := range report.Rows {
		if row.Status != matcher.StatusMissing {
			t.Errorf("Expected MISSING for %s, got %s", row.FieldPath, row.Status)
		}
	}
	if len(report.WithCheckDate) != 0 {
		t.Errorf("Expected no CHECK_DATE records, got %v", report.WithCheckDate)
	}
	if got := strings.Join(report.WithMissing, ","); got != "notext" {
		t.Errorf("Expected notext with MISSING, got %q", got)
	}
}

func TestRunDecomposedBundleText(t *testing.T) {
	bundle := dataset.NewBundle([]dataset.Entry{{
		ID:    "nfd",
		Label: `{"Title": "Ho\u0301a \u0111o\u031bn 001"}`,
		Text:  "Ho\u0301a \u0111o\u031bn 001\nTotal 10",
	}})
	v := New(bundle, bundle, matcher.New(matcher.DefaultOptions()), Options{Concurrency: 1})

	report, err := v.Run(context.Background(), bundle.IDs())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(report.Rows))
	}
	row := report.Rows[0]
	if row.Status != matcher.StatusFound || row.Score != 1.0 {
		t.Errorf("Expected FOUND 1.0, got %s %v (evidence %q)", row.Status, row.Score, row.Evidence)
	}
}

func TestRunKeepsInputOrder(t *testing.T) {
	records, texts := fixture()
	v := New(records, texts, matcher.New(matcher.DefaultOptions()), Options{Concurrency: 8})

	report, err := v.Run(context.Background(), []string{"notext", "good", "mixed"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var order []string
	for _, row := range report.Rows {
		if n := len(order); n == 0 || order[n-1] != row.RecordID {
			order = append(order, row.RecordID)
		}
	}
	if got := strings.Join(order, ","); got != "notext,good,mixed" {
		t.Errorf("Expected rows in input order, got %q", got)
	}
}

func TestRunCancelled(t *testing.T) {
	records, texts := fixture()
	v := New(records, texts, matcher.New(matcher.DefaultOptions()), Options{Concurrency: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := v.Run(ctx, []string{"good"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestMatchRecordPaths(t *testing.T) {
	n := record.Map("Items", record.Seq(record.Map("Desc", "Widget"), record.Map("Desc", "Gadget")))
	rows := MatchRecord(matcher.New(matcher.DefaultOptions()), "x", n, "Widget\nGadget")

	expected := []string{"Items.0.Desc", "Items.1.Desc"}
	if len(rows) != len(expected) {
		t.Fatalf("Expected %d rows, got %d", len(expected), len(rows))
	}
	for i, row := range rows {
		if row.FieldPath != expected[i] {
			t.Errorf("Expected path %s, got %s", expected[i], row.FieldPath)
		}
		if row.Status != matcher.StatusFound {
			t.Errorf("Expected FOUND for %s, got %s", row.FieldPath, row.Status)
		}
	}
}

func TestAggregateAcceptedStatuses(t *testing.T) {
	outcomes := []Outcome{
		{RecordID: "a", Rows: []Row{
			{RecordID: "a", Status: matcher.StatusFound},
			{RecordID: "a", Status: matcher.StatusFoundNumericFormat},
		}},
		{RecordID: "b", Rows: []Row{
			{RecordID: "b", Status: matcher.StatusNA},
		}},
		{RecordID: "c", Rows: []Row{
			{RecordID: "c", Status: matcher.StatusFound},
			{RecordID: "c", Status: matcher.StatusCheckDate},
		}},
	}

	r := Aggregate(outcomes, DefaultAccepted)
	if len(r.Verified) != 0 {
		t.Errorf("Expected no verified records by default, got %v", r.Verified)
	}
	if got := strings.Join(r.WithCheckDate, ","); got != "c" {
		t.Errorf("Expected c with CHECK_DATE, got %q", got)
	}

	widened := append([]matcher.Status{matcher.StatusFoundNumericFormat}, DefaultAccepted...)
	r = Aggregate(outcomes, widened)
	if got := strings.Join(r.Verified, ","); got != "a" {
		t.Errorf("Expected a verified with numeric accepted, got %q", got)
	}
}

func TestPercentWithNoFields(t *testing.T) {
	r := Aggregate(nil, DefaultAccepted)
	if p := r.Percent(matcher.StatusFound); p != 0 {
		t.Errorf("Expected 0%% with no fields, got %f", p)
	}
}

func TestFromRows(t *testing.T) {
	rows := []Row{
		{RecordID: "a", Status: matcher.StatusFound},
		{RecordID: "a", Status: matcher.StatusMissing},
		{RecordID: "b", Status: matcher.StatusSimilar},
	}

	r := FromRows(rows, DefaultAccepted)
	if r.Records != 2 {
		t.Errorf("Expected 2 records, got %d", r.Records)
	}
	if r.Found() != 1 {
		t.Errorf("Expected 1 found field, got %d", r.Found())
	}
	if p := r.Percent(matcher.StatusMissing); p < 33.3 || p > 33.4 {
		t.Errorf("Expected about 33.3%% MISSING, got %f", p)
	}
}

func TestWriteSummary(t *testing.T) {
	r := FromRows([]Row{{RecordID: "a", Status: matcher.StatusFound}}, DefaultAccepted)

	var buf bytes.Buffer
	if err := r.WriteSummary(&buf); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"LABEL VERIFICATION SUMMARY", "FOUND", "100.00%", "Verified:           1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain %q", want)
		}
	}
}
