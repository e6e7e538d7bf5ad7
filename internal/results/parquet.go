package results

import (
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

// parquetRow is the on-disk layout of a verdict row.
type parquetRow struct {
	RecordID   string  `parquet:"record_id"`
	FieldPath  string  `parquet:"field_path"`
	Value      string  `parquet:"value"`
	Status     string  `parquet:"status"`
	Score      float64 `parquet:"score"`
	Evidence   string  `parquet:"evidence"`
	DateFormat string  `parquet:"date_format"`
}

// WriteParquet writes verdict rows to a Parquet file.
func WriteParquet(path string, rows []verify.Row) error {
	out := make([]parquetRow, len(rows))
	for i, r := range rows {
		out[i] = parquetRow{
			RecordID:   r.RecordID,
			FieldPath:  r.FieldPath,
			Value:      r.Value,
			Status:     string(r.Status),
			Score:      r.Score,
			Evidence:   r.Evidence,
			DateFormat: r.DateFormat,
		}
	}
	if err := parquet.WriteFile(path, out); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}

// ReadParquet reads rows written by WriteParquet.
func ReadParquet(path string) ([]verify.Row, error) {
	in, err := parquet.ReadFile[parquetRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}

	rows := make([]verify.Row, len(in))
	for i, r := range in {
		status, ok := matcher.ParseStatus(r.Status)
		if !ok {
			return nil, fmt.Errorf("unknown status %q in row %d", r.Status, i)
		}
		rows[i] = verify.Row{
			RecordID:   r.RecordID,
			FieldPath:  r.FieldPath,
			Value:      r.Value,
			Status:     status,
			Score:      r.Score,
			Evidence:   r.Evidence,
			DateFormat: r.DateFormat,
		}
	}
	return rows, nil
}
