package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader reads label bundles from JSONL or Parquet files.
type Loader struct {
	datasetPath string
}

// NewLoader creates a new bundle loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load loads every entry of the bundle.
func (l *Loader) Load() ([]Entry, error) {
	return l.LoadSample(0)
}

// LoadSample loads at most limit entries. A limit of 0 loads everything.
func (l *Loader) LoadSample(limit int) ([]Entry, error) {
	ext := strings.ToLower(filepath.Ext(l.datasetPath))

	switch ext {
	case ".parquet":
		return l.loadParquet(limit)
	case ".jsonl", ".json":
		return l.loadJSONL(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

// jsonlEntry accepts the label either as a JSON string or as an inline object.
type jsonlEntry struct {
	ID        string          `json:"id"`
	Label     json.RawMessage `json:"label"`
	Text      string          `json:"text"`
	TextPages []string        `json:"text_pages"`
}

func (j jsonlEntry) entry() (Entry, error) {
	e := Entry{ID: j.ID, Text: j.Text, TextPages: j.TextPages}

	raw := bytes.TrimSpace(j.Label)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &e.Label); err != nil {
			return Entry{}, err
		}
	} else {
		e.Label = string(raw)
	}
	return e, nil
}

func (l *Loader) loadJSONL(limit int) ([]Entry, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)

	// Documents can be long; allow large lines
	const maxCapacity = 10 * 1024 * 1024
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(entries) >= limit {
			break
		}
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var raw jsonlEntry
		if err := json.Unmarshal(line, &raw); err != nil {
			slog.Warn("Skipping malformed bundle line", "line", lineNum, "err", err)
			continue
		}
		e, err := raw.entry()
		if err != nil {
			slog.Warn("Skipping malformed bundle line", "line", lineNum, "err", err)
			continue
		}
		if e.ID == "" {
			slog.Warn("Skipping bundle line without id", "line", lineNum)
			continue
		}
		entries = append(entries, e)

		if lineNum%1000 == 0 {
			slog.Debug("Reading JSONL", "lines_read", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_entries", len(entries), "total_lines", lineNum)
	return entries, nil
}

func (l *Loader) loadParquet(limit int) ([]Entry, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Entry](pf)
	defer reader.Close()

	var entries []Entry
	rows := make([]Entry, 128)

	batchNum := 0
	for limit <= 0 || len(entries) < limit {
		n, err := reader.Read(rows)
		if n > 0 {
			batchNum++
			if limit > 0 {
				n = min(n, limit-len(entries))
			}
			entries = append(entries, rows[:n]...)
			slog.Debug("Read batch from Parquet", "batch", batchNum, "rows_in_batch", n, "total_rows_read", len(entries))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_entries", len(entries), "total_batches", batchNum)
	return entries, nil
}
