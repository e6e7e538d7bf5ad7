package matcher

// Status classifies how a label value was found in a document.
type Status string

const (
	StatusNA                   Status = "N/A"
	StatusFound                Status = "FOUND"
	StatusFoundCaseInsensitive Status = "FOUND_CASE_INSENSITIVE"
	StatusFoundNormalized      Status = "FOUND_NORMALIZED"
	StatusFoundDateAltFormat   Status = "FOUND_DATE_ALT_FORMAT"
	StatusFoundNumericFormat   Status = "FOUND_NUMERIC_FORMAT"
	StatusCheckDate            Status = "CHECK_DATE"
	StatusSimilar              Status = "SIMILAR"
	StatusMissing              Status = "MISSING"
)

// Statuses lists every status in discovery order.
var Statuses = []Status{
	StatusNA,
	StatusFound,
	StatusFoundCaseInsensitive,
	StatusFoundNormalized,
	StatusFoundDateAltFormat,
	StatusFoundNumericFormat,
	StatusCheckDate,
	StatusSimilar,
	StatusMissing,
}

// ParseStatus returns the status named s.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// IsFound reports whether the status is one of the FOUND variants.
func (s Status) IsFound() bool {
	switch s {
	case StatusFound, StatusFoundCaseInsensitive, StatusFoundNormalized,
		StatusFoundDateAltFormat, StatusFoundNumericFormat:
		return true
	}
	return false
}

// Verdict is the outcome of matching one field against one document.
type Verdict struct {
	Status     Status  `json:"status" yaml:"status"`
	Score      float64 `json:"score" yaml:"score"`
	Evidence   string  `json:"evidence" yaml:"evidence"`
	DateFormat string  `json:"date_format,omitempty" yaml:"date_format,omitempty"`
}

// Checkable reports whether the field carried a value to check. N/A verdicts
// are not counted in totals.
func (v Verdict) Checkable() bool {
	return v.Status != StatusNA
}
