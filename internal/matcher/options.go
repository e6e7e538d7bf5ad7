package matcher

import "github.com/lehigh-university-libraries/labelaudit/internal/normalize"

// DefaultFuzzyThreshold is the minimum line similarity reported as SIMILAR.
const DefaultFuzzyThreshold = 0.6

// Options configures a Matcher. Keyword lists are compared after
// normalize.FieldName, so "Invoice_Date" matches "invoice date".
type Options struct {
	FuzzyThreshold float64

	// DateFields names fields whose values are retried under alternate date renderings.
	DateFields []string
	// PercentageFields names fields whose percentages are compared numerically.
	PercentageFields []string

	// NumericWordBoundary rejects numeric candidates embedded in a longer number.
	NumericWordBoundary   bool
	NumericExtraPrecision int
	NumericMaxPrecision   int
}

// DefaultOptions returns the options tuned for invoice labels.
func DefaultOptions() Options {
	return Options{
		FuzzyThreshold: DefaultFuzzyThreshold,
		DateFields: []string{
			"date",
			"invoice date",
			"issue date",
			"issued date",
			"due date",
			"order date",
			"delivery date",
			"payment date",
			"document date",
			"ngày",
			"ngày lập",
			"ngày hóa đơn",
		},
		PercentageFields: []string{
			"tax type",
			"tax rate",
			"gst",
			"gst rate",
			"vat",
			"vat rate",
		},
		NumericWordBoundary:   true,
		NumericExtraPrecision: normalize.DefaultExtraPrecision,
		NumericMaxPrecision:   normalize.DefaultMaxPrecision,
	}
}

func keywordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if k := normalize.FieldName(w); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}
