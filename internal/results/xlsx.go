package results

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

// Sheet names of the workbook written by WriteXLSX.
const (
	VerdictsSheet = "Verdicts"
	SummarySheet  = "Summary"
)

// WriteXLSX writes a workbook with one sheet of verdict rows and one sheet
// of totals.
func WriteXLSX(path string, report *verify.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", VerdictsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeVerdicts(f, report.Rows, bold); err != nil {
		return err
	}
	if err := writeSummary(f, report, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeVerdicts(f *excelize.File, rows []verify.Row, headerStyle int) error {
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(VerdictsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetRowStyle(VerdictsSheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.RecordID,
			r.FieldPath,
			r.Value,
			string(r.Status),
			r.Score,
			r.Evidence,
			r.DateFormat,
		}
		if err := f.SetSheetRow(VerdictsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(VerdictsSheet, "A", "B", 24); err != nil {
		return err
	}
	return f.SetColWidth(VerdictsSheet, "C", "F", 32)
}

func writeSummary(f *excelize.File, report *verify.Report, headerStyle int) error {
	lines := [][]any{
		{"status", "count", "percent"},
	}
	for _, s := range matcher.Statuses {
		if s == matcher.StatusNA {
			continue
		}
		lines = append(lines, []any{string(s), report.Counts[s], report.Percent(s)})
	}
	lines = append(lines,
		[]any{},
		[]any{"fields checked", report.Checkable},
		[]any{"fields N/A", report.NotApplicable},
		[]any{"records", report.Records},
		[]any{"records verified", len(report.Verified)},
		[]any{"records with MISSING", len(report.WithMissing)},
		[]any{"records with SIMILAR", len(report.WithSimilar)},
		[]any{"records with CHECK_DATE", len(report.WithCheckDate)},
		[]any{"records with N/A", len(report.WithNA)},
		[]any{"unparseable records", len(report.Unparseable)},
	)

	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &line); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetRowStyle(SummarySheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 28)
}
