package models

import (
	"encoding/json"
	"time"

	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

// Run is a stored verification run
type Run struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Records   string         `json:"records,omitempty"`
	Documents string         `json:"documents,omitempty"`
	Summary   RunSummary     `json:"summary"`
	Report    *verify.Report `json:"report,omitempty"`
}

// RunSummary holds the headline numbers of a run, used in listings
type RunSummary struct {
	Records       int            `json:"records"`
	Checkable     int            `json:"checkable"`
	NotApplicable int            `json:"not_applicable"`
	Verified      int            `json:"verified"`
	WithMissing   int            `json:"with_missing"`
	WithSimilar   int            `json:"with_similar"`
	WithCheckDate int            `json:"with_check_date"`
	WithNA        int            `json:"with_na"`
	Unparseable   int            `json:"unparseable"`
	Counts        map[string]int `json:"counts"`
}

// Summarize extracts the headline numbers of a report
func Summarize(r *verify.Report) RunSummary {
	s := RunSummary{Counts: make(map[string]int)}
	if r == nil {
		return s
	}
	s.Records = r.Records
	s.Checkable = r.Checkable
	s.NotApplicable = r.NotApplicable
	s.Verified = len(r.Verified)
	s.WithMissing = len(r.WithMissing)
	s.WithSimilar = len(r.WithSimilar)
	s.WithCheckDate = len(r.WithCheckDate)
	s.WithNA = len(r.WithNA)
	s.Unparseable = len(r.Unparseable)
	for status, n := range r.Counts {
		s.Counts[string(status)] = n
	}
	return s
}

// MatchRequest asks for a single value, or every field of a record, to be
// matched against a text
type MatchRequest struct {
	Text   string          `json:"text"`
	Value  *string         `json:"value,omitempty"`
	Field  string          `json:"field,omitempty"`
	Record json.RawMessage `json:"record,omitempty"`
}

// MatchResponse carries a single verdict or the rows of a record
type MatchResponse struct {
	Verdict *matcher.Verdict `json:"verdict,omitempty"`
	Rows    []verify.Row     `json:"rows,omitempty"`
}

// RunEntry is one label and its document text submitted for verification
type RunEntry struct {
	ID     string          `json:"id"`
	Record json.RawMessage `json:"record"`
	Text   *string         `json:"text,omitempty"`
}

// RunRequest submits a batch of entries for verification
type RunRequest struct {
	Records   string     `json:"records,omitempty"`
	Documents string     `json:"documents,omitempty"`
	Entries   []RunEntry `json:"entries"`
}
