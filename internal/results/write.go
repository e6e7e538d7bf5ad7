// Package results writes and reads the verdict rows of a verification run.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

// Formats lists the output extensions Write understands.
var Formats = []string{".yaml", ".yml", ".json", ".csv", ".xlsx", ".parquet"}

// Write saves a run in the format given by the extension of path. CSV and
// Parquet files hold only the verdict rows.
func Write(path string, spec RunSpec) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return WriteYAML(path, spec)
	case ".json":
		data, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write JSON file: %w", err)
		}
		return nil
	case ".csv":
		return WriteCSVFile(path, spec.Report.Rows)
	case ".xlsx":
		return WriteXLSX(path, spec.Report)
	case ".parquet":
		return WriteParquet(path, spec.Report.Rows)
	default:
		return fmt.Errorf("unsupported output format: %s (supported: %s)", filepath.Ext(path), strings.Join(Formats, ", "))
	}
}

// ReadRows loads the verdict rows of a run written by Write.
func ReadRows(path string) ([]verify.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		spec, err := ReadYAML(path)
		if err != nil {
			return nil, err
		}
		return spec.Report.Rows, nil
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON file: %w", err)
		}
		var spec RunSpec
		if err := json.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("failed to parse JSON file: %w", err)
		}
		if spec.Report == nil {
			return nil, nil
		}
		return spec.Report.Rows, nil
	case ".csv":
		return ReadCSVFile(path)
	case ".parquet":
		return ReadParquet(path)
	default:
		return nil, fmt.Errorf("unsupported results format: %s", filepath.Ext(path))
	}
}
