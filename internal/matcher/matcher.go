// Package matcher decides whether a label value is present in the text
// extracted from its source document, and in what surface form.
//
// A Matcher runs an ordered battery of strategies and returns the verdict of
// the first one that succeeds:
//
//  1. exact substring                       FOUND (1.0)
//  2. case-insensitive substring            FOUND_CASE_INSENSITIVE (0.9)
//  3. dash-unified, case-insensitive        FOUND (1.0)
//  4. percentage-normalized (keyword fields) FOUND (1.0)
//  5. whitespace-normalized                 FOUND_NORMALIZED (1.0)
//  6. alternate date renderings (keyword fields)
//     FOUND_DATE_ALT_FORMAT (0.95) or CHECK_DATE (0)
//  7. widened numeric precision             FOUND_NUMERIC_FORMAT (1.0)
//  8. best line similarity                  SIMILAR or MISSING
//
// Matching is pure: identical inputs always produce identical verdicts.
package matcher

import (
	"strings"

	"github.com/lehigh-university-libraries/labelaudit/internal/record"
)

// Matcher classifies field values against document text. It holds no
// mutable state and is safe for concurrent use.
type Matcher struct {
	opts       Options
	strategies []Strategy
}

// New creates a Matcher with the standard strategy battery.
func New(opts Options) *Matcher {
	dateFields := keywordSet(opts.DateFields)
	percentFields := keywordSet(opts.PercentageFields)

	return &Matcher{
		opts: opts,
		strategies: []Strategy{
			exactStrategy(),
			caseInsensitiveStrategy(),
			dashStrategy(),
			percentageStrategy(percentFields),
			whitespaceStrategy(),
			dateStrategy(dateFields),
			numericStrategy(opts),
			fuzzyStrategy(opts.FuzzyThreshold),
		},
	}
}

// NewWithStrategies creates a Matcher running the given strategies in order.
// If none of them produces a verdict the field is reported MISSING.
func NewWithStrategies(opts Options, strategies ...Strategy) *Matcher {
	return &Matcher{opts: opts, strategies: strategies}
}

// Options returns the options the matcher was built with.
func (m *Matcher) Options() Options {
	return m.opts
}

// Strategies returns the battery in evaluation order.
func (m *Matcher) Strategies() []Strategy {
	out := make([]Strategy, len(m.strategies))
	copy(out, m.strategies)
	return out
}

// Match classifies a scalar. Null and blank values yield N/A.
func (m *Matcher) Match(value record.Scalar, text, field string) Verdict {
	if value.IsEmpty() {
		return Verdict{Status: StatusNA}
	}
	return m.MatchString(value.String(), text, field)
}

// MatchString classifies a value given as text. field may be empty.
func (m *Matcher) MatchString(value, text, field string) Verdict {
	value = strings.TrimSpace(value)
	if value == "" {
		return Verdict{Status: StatusNA}
	}

	in := newInput(value, field, text)
	for _, s := range m.strategies {
		if v, ok := s.Match(in); ok {
			return v
		}
	}
	return Verdict{Status: StatusMissing}
}
