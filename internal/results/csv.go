package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

// Header is the column order of verdict rows in CSV and XLSX output.
var Header = []string{"record_id", "field_path", "value", "status", "score", "evidence", "date_format"}

// Issue file names written by WriteIssues.
const (
	MissingFile = "missing_fields.csv"
	SimilarFile = "similar_fields.csv"
)

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 4, 64)
}

// WriteCSV writes verdict rows with a header line.
func WriteCSV(w io.Writer, rows []verify.Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.RecordID,
			r.FieldPath,
			r.Value,
			string(r.Status),
			formatScore(r.Score),
			r.Evidence,
			r.DateFormat,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes verdict rows to path.
func WriteCSVFile(path string, rows []verify.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return f.Close()
}

// ReadCSV reads rows written by WriteCSV. Columns are located by header
// name, so extra columns are ignored.
func ReadCSV(r io.Reader) ([]verify.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range []string{"record_id", "field_path", "status"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("CSV is missing column %q", name)
		}
	}

	get := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []verify.Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		status, ok := matcher.ParseStatus(get(record, "status"))
		if !ok {
			return nil, fmt.Errorf("unknown status %q on CSV line %d", get(record, "status"), line)
		}
		row := verify.Row{
			RecordID:   get(record, "record_id"),
			FieldPath:  get(record, "field_path"),
			Value:      get(record, "value"),
			Status:     status,
			Evidence:   get(record, "evidence"),
			DateFormat: get(record, "date_format"),
		}
		if s := get(record, "score"); s != "" {
			if row.Score, err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("invalid score %q on CSV line %d: %w", s, line, err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadCSVFile reads rows from path.
func ReadCSVFile(path string) ([]verify.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteIssues writes the MISSING rows and the SIMILAR rows to two files in
// dir and returns their paths.
func WriteIssues(dir string, rows []verify.Row) (missingPath, similarPath string, err error) {
	var missing, similar []verify.Row
	for _, r := range rows {
		switch r.Status {
		case matcher.StatusMissing:
			missing = append(missing, r)
		case matcher.StatusSimilar:
			similar = append(similar, r)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create issues directory: %w", err)
	}
	missingPath = filepath.Join(dir, MissingFile)
	similarPath = filepath.Join(dir, SimilarFile)
	if err := WriteCSVFile(missingPath, missing); err != nil {
		return "", "", err
	}
	if err := WriteCSVFile(similarPath, similar); err != nil {
		return "", "", err
	}
	return missingPath, similarPath, nil
}
