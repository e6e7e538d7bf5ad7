// Package normalize holds the pure string transformations used to compare
// label values against extracted document text. Every function is total:
// input it cannot interpret is returned unchanged or yields no candidates.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// Whitespace collapses newlines, tabs and runs of spaces into single spaces
// and trims the ends. Values split across lines by extraction compare equal
// to their one-line form.
func Whitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var dashReplacer = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
)

// UnifyDashes maps en and em dashes to an ASCII hyphen-minus.
func UnifyDashes(s string) string {
	return dashReplacer.Replace(s)
}

var (
	percentValueRe = regexp.MustCompile(`^\s*([+-]?\d+(?:[.,]\d+)?)\s*%\s*$`)
	percentInTextRe = regexp.MustCompile(`[+-]?\d+(?:[.,]\d+)?\s*%`)
)

// Percentage canonicalizes "<number>%" so that "7.00%", "7%" and "7 %" all
// become "7%". Strings that are not a bare percentage are returned unchanged.
func Percentage(s string) string {
	m := percentValueRe.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return canonicalPercent(m[1])
}

func canonicalPercent(number string) string {
	f, err := strconv.ParseFloat(strings.ReplaceAll(number, ",", "."), 64)
	if err != nil {
		return number + "%"
	}
	return strconv.FormatFloat(f, 'f', -1, 64) + "%"
}

// PercentOccurrence is one percentage found in a text.
type PercentOccurrence struct {
	Raw        string
	Normalized string
}

// Percentages returns every percentage occurring in text, in text order,
// with its canonical form.
func Percentages(text string) []PercentOccurrence {
	matches := percentInTextRe.FindAllString(text, -1)
	out := make([]PercentOccurrence, 0, len(matches))
	for _, raw := range matches {
		number := strings.TrimSpace(strings.TrimSuffix(raw, "%"))
		out = append(out, PercentOccurrence{Raw: raw, Normalized: canonicalPercent(number)})
	}
	return out
}

// FieldName lowercases a field name and turns '_', '-' and '.' into spaces so
// "Invoice_Date" and "invoice date" name the same thing.
func FieldName(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(s)
	return Whitespace(s)
}
