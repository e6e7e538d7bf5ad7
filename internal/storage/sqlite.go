package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/models"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

//go:embed schema.sql
var schema string

// SQLite stores runs in a SQLite database. Verdict rows live in their own
// table; the rest of the report is kept as JSON alongside the run.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// an in-memory database exists per connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	slog.Debug("Run database opened", "path", path)
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, run *models.Run) error {
	prepare(run)

	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	var rows []verify.Row
	report := []byte("null")
	if run.Report != nil {
		rows = run.Report.Rows
		trimmed := *run.Report
		trimmed.Rows = nil
		if report, err = json.Marshal(trimmed); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// pragmas apply to one pooled connection only, so do not rely on the cascade
	for _, q := range []string{`DELETE FROM verdicts WHERE run_id = ?`, `DELETE FROM runs WHERE id = ?`} {
		if _, err := tx.ExecContext(ctx, q, run.ID); err != nil {
			return fmt.Errorf("failed to replace run %s: %w", run.ID, err)
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, records, documents, summary, report) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(time.RFC3339Nano), run.Records, run.Documents, string(summary), string(report))
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO verdicts (run_id, seq, record_id, field_path, value, status, score, evidence, date_format)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare verdict insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, run.ID, i, row.RecordID, row.FieldPath, row.Value,
			string(row.Status), row.Score, row.Evidence, row.DateFormat); err != nil {
			return fmt.Errorf("failed to insert verdict %d of run %s: %w", i, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	slog.Info("Run saved", "id", run.ID, "rows", len(rows))
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*models.Run, error) {
	var (
		run              models.Run
		created, summary string
		report           string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, records, documents, summary, report FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &created, &run.Records, &run.Documents, &summary, &report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run %s: %w", id, err)
	}
	if err := decodeRun(&run, created, summary); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(report), &run.Report); err != nil {
		return nil, fmt.Errorf("failed to decode report of run %s: %w", id, err)
	}
	if run.Report == nil {
		return &run, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record_id, field_path, value, status, score, evidence, date_format
		 FROM verdicts WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read verdicts of run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row    verify.Row
			status string
		)
		if err := rows.Scan(&row.RecordID, &row.FieldPath, &row.Value, &status, &row.Score, &row.Evidence, &row.DateFormat); err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		row.Status = matcher.Status(status)
		run.Report.Rows = append(run.Report.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read verdicts of run %s: %w", id, err)
	}
	return &run, nil
}

func (s *SQLite) List(ctx context.Context) ([]models.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, records, documents, summary FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	result := []models.Run{}
	for rows.Next() {
		var (
			run              models.Run
			created, summary string
		)
		if err := rows.Scan(&run.ID, &created, &run.Records, &run.Documents, &summary); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := decodeRun(&run, created, summary); err != nil {
			return nil, err
		}
		result = append(result, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	sortNewestFirst(result)
	return result, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func decodeRun(run *models.Run, created, summary string) error {
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return fmt.Errorf("failed to parse creation time of run %s: %w", run.ID, err)
	}
	run.CreatedAt = t
	if err := json.Unmarshal([]byte(summary), &run.Summary); err != nil {
		return fmt.Errorf("failed to decode summary of run %s: %w", run.ID, err)
	}
	return nil
}

// Open returns a SQLite store for path, or a memory store when path is empty.
func Open(path string) (RunStore, error) {
	if path == "" {
		return NewMemory(), nil
	}
	return OpenSQLite(path)
}
