package verify

import (
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
)

// DefaultAccepted are the statuses that let a record count as verified.
// Numeric-format matches are excluded until reviewed.
var DefaultAccepted = []matcher.Status{
	matcher.StatusFound,
	matcher.StatusFoundCaseInsensitive,
	matcher.StatusFoundNormalized,
	matcher.StatusFoundDateAltFormat,
}

// Report aggregates the verdicts of a run.
type Report struct {
	Rows []Row `json:"rows" yaml:"rows"`

	// Counts holds per-status totals over checkable fields. N/A fields are
	// counted separately in NotApplicable.
	Counts        map[matcher.Status]int `json:"counts" yaml:"counts"`
	NotApplicable int                    `json:"not_applicable" yaml:"not_applicable"`
	Checkable     int                    `json:"checkable" yaml:"checkable"`

	// Records is the number of records that produced verdicts.
	Records int `json:"records" yaml:"records"`

	// Record partitions. A record may appear in several.
	WithMissing   []string `json:"with_missing" yaml:"with_missing"`
	WithNA        []string `json:"with_na" yaml:"with_na"`
	WithSimilar   []string `json:"with_similar" yaml:"with_similar"`
	WithCheckDate []string `json:"with_check_date" yaml:"with_check_date"`
	Verified      []string `json:"verified" yaml:"verified"`

	Unparseable     []Skip   `json:"unparseable" yaml:"unparseable"`
	TextUnavailable []string `json:"text_unavailable" yaml:"text_unavailable"`
}

// Aggregate merges per-record outcomes into a Report, keeping their order.
func Aggregate(outcomes []Outcome, accepted []matcher.Status) *Report {
	acceptedSet := make(map[matcher.Status]bool, len(accepted))
	for _, s := range accepted {
		acceptedSet[s] = true
	}

	r := &Report{Counts: make(map[matcher.Status]int)}
	for _, o := range outcomes {
		if o.Skipped != nil {
			r.Unparseable = append(r.Unparseable, *o.Skipped)
			continue
		}
		r.Records++
		if o.TextMissing {
			r.TextUnavailable = append(r.TextUnavailable, o.RecordID)
		}

		var hasMissing, hasNA, hasSimilar, hasCheckDate bool
		checked, acceptedFields := 0, 0
		for _, row := range o.Rows {
			r.Rows = append(r.Rows, row)

			switch row.Status {
			case matcher.StatusNA:
				r.NotApplicable++
				hasNA = true
				continue
			case matcher.StatusMissing:
				hasMissing = true
			case matcher.StatusSimilar:
				hasSimilar = true
			case matcher.StatusCheckDate:
				hasCheckDate = true
			}

			r.Counts[row.Status]++
			r.Checkable++
			checked++
			if acceptedSet[row.Status] {
				acceptedFields++
			}
		}

		if hasMissing {
			r.WithMissing = append(r.WithMissing, o.RecordID)
		}
		if hasNA {
			r.WithNA = append(r.WithNA, o.RecordID)
		}
		if hasSimilar {
			r.WithSimilar = append(r.WithSimilar, o.RecordID)
		}
		if hasCheckDate {
			r.WithCheckDate = append(r.WithCheckDate, o.RecordID)
		}
		if checked > 0 && acceptedFields == checked {
			r.Verified = append(r.Verified, o.RecordID)
		}
	}
	return r
}

// FromRows rebuilds a Report from previously written rows. Rows of one
// record must be contiguous, as every writer in this module produces them.
func FromRows(rows []Row, accepted []matcher.Status) *Report {
	var outcomes []Outcome
	for _, row := range rows {
		if n := len(outcomes); n == 0 || outcomes[n-1].RecordID != row.RecordID {
			outcomes = append(outcomes, Outcome{RecordID: row.RecordID})
		}
		last := &outcomes[len(outcomes)-1]
		last.Rows = append(last.Rows, row)
	}
	return Aggregate(outcomes, accepted)
}

// Percent returns the share of checkable fields with status s, in percent.
func (r *Report) Percent(s matcher.Status) float64 {
	if r.Checkable == 0 {
		return 0
	}
	return float64(r.Counts[s]) / float64(r.Checkable) * 100
}

// Found returns the number of checkable fields with any FOUND status.
func (r *Report) Found() int {
	n := 0
	for s, c := range r.Counts {
		if s.IsFound() {
			n += c
		}
	}
	return n
}

// WriteSummary writes a human-readable summary of the report.
func (r *Report) WriteSummary(w io.Writer) error {
	var b strings.Builder
	line := strings.Repeat("=", 60)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "LABEL VERIFICATION SUMMARY")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Records checked:    %d\n", r.Records)
	fmt.Fprintf(&b, "Unparseable:        %d\n", len(r.Unparseable))
	fmt.Fprintf(&b, "Text unavailable:   %d\n", len(r.TextUnavailable))
	fmt.Fprintf(&b, "Fields checked:     %d\n", r.Checkable)
	fmt.Fprintf(&b, "Fields N/A:         %d\n", r.NotApplicable)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "STATUS BREAKDOWN")
	fmt.Fprintln(&b, strings.Repeat("-", 60))
	for _, s := range matcher.Statuses {
		if s == matcher.StatusNA {
			continue
		}
		fmt.Fprintf(&b, "  %-24s %6d  (%.2f%%)\n", s, r.Counts[s], r.Percent(s))
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "RECORDS")
	fmt.Fprintln(&b, strings.Repeat("-", 60))
	fmt.Fprintf(&b, "  Verified:           %d\n", len(r.Verified))
	fmt.Fprintf(&b, "  With MISSING:       %d\n", len(r.WithMissing))
	fmt.Fprintf(&b, "  With SIMILAR:       %d\n", len(r.WithSimilar))
	fmt.Fprintf(&b, "  With CHECK_DATE:    %d\n", len(r.WithCheckDate))
	fmt.Fprintf(&b, "  With N/A:           %d\n", len(r.WithNA))
	fmt.Fprintln(&b, line)

	_, err := io.WriteString(w, b.String())
	return err
}
