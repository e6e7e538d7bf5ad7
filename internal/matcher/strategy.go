package matcher

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lehigh-university-libraries/labelaudit/internal/normalize"
)

// Input is what a strategy sees for one field. Derived forms of the text are
// computed once per field and shared across strategies.
type Input struct {
	Value string
	Field string
	Text  string

	lowerValue string
	lowerText  string

	normText  *string
	foldText  *string
	dateOrder *normalize.DateOrder
}

// newInput folds value, field and text to NFC so that composed and
// decomposed accents compare equal whatever source the text came from.
func newInput(value, field, text string) *Input {
	value = norm.NFC.String(value)
	field = norm.NFC.String(field)
	text = norm.NFC.String(text)
	return &Input{
		Value:      value,
		Field:      field,
		Text:       text,
		lowerValue: strings.ToLower(value),
		lowerText:  strings.ToLower(text),
	}
}

// NormalizedText is the text with dashes unified and whitespace collapsed.
func (in *Input) NormalizedText() string {
	if in.normText == nil {
		s := normalize.Whitespace(normalize.UnifyDashes(in.Text))
		in.normText = &s
	}
	return *in.normText
}

// FoldedText is NormalizedText lowercased.
func (in *Input) FoldedText() string {
	if in.foldText == nil {
		s := normalize.Whitespace(normalize.UnifyDashes(in.lowerText))
		in.foldText = &s
	}
	return *in.foldText
}

// DateOrder is the day/month convention detected in the text.
func (in *Input) DateOrder() normalize.DateOrder {
	if in.dateOrder == nil {
		o := normalize.DetectDateOrder(in.Text)
		in.dateOrder = &o
	}
	return *in.dateOrder
}

// Strategy is one stage of the matching battery. Match returns ok=false to
// pass the field on to the next stage.
type Strategy struct {
	Name  string
	Match func(in *Input) (v Verdict, ok bool)
}

// ambiguousDateEvidence is the evidence attached to CHECK_DATE verdicts.
const ambiguousDateEvidence = "date not found and document day/month order is ambiguous; review manually"

func exactStrategy() Strategy {
	return Strategy{
		Name: "exact",
		Match: func(in *Input) (Verdict, bool) {
			if strings.Contains(in.Text, in.Value) {
				return Verdict{Status: StatusFound, Score: 1.0, Evidence: in.Value}, true
			}
			return Verdict{}, false
		},
	}
}

func caseInsensitiveStrategy() Strategy {
	return Strategy{
		Name: "case_insensitive",
		Match: func(in *Input) (Verdict, bool) {
			if strings.Contains(in.lowerText, in.lowerValue) {
				return Verdict{Status: StatusFoundCaseInsensitive, Score: 0.9, Evidence: in.Value}, true
			}
			return Verdict{}, false
		},
	}
}

// dashStrategy treats en/em dash differences as immaterial and reports FOUND.
func dashStrategy() Strategy {
	return Strategy{
		Name: "dash",
		Match: func(in *Input) (Verdict, bool) {
			if strings.Contains(normalize.UnifyDashes(in.lowerText), normalize.UnifyDashes(in.lowerValue)) {
				return Verdict{Status: StatusFound, Score: 1.0, Evidence: in.Value}, true
			}
			return Verdict{}, false
		},
	}
}

func percentageStrategy(fields map[string]struct{}) Strategy {
	return Strategy{
		Name: "percentage",
		Match: func(in *Input) (Verdict, bool) {
			if !strings.Contains(in.Value, "%") {
				return Verdict{}, false
			}
			if _, ok := fields[normalize.FieldName(in.Field)]; !ok {
				return Verdict{}, false
			}

			want := normalize.Percentage(in.Value)
			for _, occ := range normalize.Percentages(in.Text) {
				if occ.Normalized == want {
					return Verdict{Status: StatusFound, Score: 1.0, Evidence: occ.Raw}, true
				}
			}

			// The value may carry text around the percentage ("VAT 8%"); retry
			// it with and without a space before the sign.
			compact := strings.ToLower(strings.ReplaceAll(want, " %", "%"))
			spaced := strings.ReplaceAll(compact, "%", " %")
			for _, variant := range []string{compact, spaced} {
				if strings.Contains(in.lowerText, variant) {
					return Verdict{Status: StatusFound, Score: 1.0, Evidence: variant}, true
				}
			}
			return Verdict{}, false
		},
	}
}

// whitespaceStrategy scores a match that also needed case folding like the
// case-insensitive stage.
func whitespaceStrategy() Strategy {
	return Strategy{
		Name: "whitespace",
		Match: func(in *Input) (Verdict, bool) {
			value := normalize.Whitespace(normalize.UnifyDashes(in.Value))
			if value == "" {
				return Verdict{}, false
			}
			if strings.Contains(in.NormalizedText(), value) {
				return Verdict{Status: StatusFoundNormalized, Score: 1.0, Evidence: in.Value}, true
			}
			if strings.Contains(in.FoldedText(), strings.ToLower(value)) {
				return Verdict{Status: StatusFoundNormalized, Score: 0.9, Evidence: in.Value}, true
			}
			return Verdict{}, false
		},
	}
}

// dateStrategy retries date-valued fields under alternate renderings. A
// rendering must not be part of a longer number ("3/10/2023" in "13/10/2023").
// When none is present and the document gives no day/month hint the field is
// reported as CHECK_DATE instead of falling through to fuzzy matching.
func dateStrategy(fields map[string]struct{}) Strategy {
	return Strategy{
		Name: "date",
		Match: func(in *Input) (Verdict, bool) {
			if _, ok := fields[normalize.FieldName(in.Field)]; !ok {
				return Verdict{}, false
			}
			t, _, ok := normalize.ValidateDate(in.Value)
			if !ok {
				return Verdict{}, false
			}

			order := in.DateOrder()
			for _, rendering := range normalize.AlternateDates(t, order) {
				if normalize.ContainsNumber(in.lowerText, strings.ToLower(rendering)) {
					return Verdict{
						Status:     StatusFoundDateAltFormat,
						Score:      0.95,
						Evidence:   rendering,
						DateFormat: string(order),
					}, true
				}
			}

			// without text there is nothing to disambiguate; let it fall to MISSING
			if order == normalize.UnknownOrder && strings.TrimSpace(in.Text) != "" {
				return Verdict{
					Status:     StatusCheckDate,
					Score:      0,
					Evidence:   ambiguousDateEvidence,
					DateFormat: string(order),
				}, true
			}
			return Verdict{}, false
		},
	}
}

func numericStrategy(opts Options) Strategy {
	return Strategy{
		Name: "numeric",
		Match: func(in *Input) (Verdict, bool) {
			for _, candidate := range normalize.ExpandNumeric(in.Value, opts.NumericExtraPrecision, opts.NumericMaxPrecision) {
				var found bool
				if opts.NumericWordBoundary {
					found = normalize.ContainsNumber(in.Text, candidate)
				} else {
					found = strings.Contains(in.Text, candidate)
				}
				if found {
					return Verdict{Status: StatusFoundNumericFormat, Score: 1.0, Evidence: candidate}, true
				}
			}
			return Verdict{}, false
		},
	}
}

// fuzzyStrategy always produces a verdict: SIMILAR when the best line
// similarity reaches the threshold, MISSING otherwise.
func fuzzyStrategy(threshold float64) Strategy {
	return Strategy{
		Name: "fuzzy",
		Match: func(in *Input) (Verdict, bool) {
			bestRatio := 0.0
			bestLine := ""
			for _, line := range strings.Split(in.Text, "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				ratio := Similarity(in.lowerValue, strings.ToLower(line))
				if ratio > bestRatio {
					bestRatio = ratio
					bestLine = line
				}
			}

			if bestRatio >= threshold {
				return Verdict{Status: StatusSimilar, Score: bestRatio, Evidence: bestLine}, true
			}
			return Verdict{Status: StatusMissing, Score: bestRatio, Evidence: bestLine}, true
		},
	}
}
