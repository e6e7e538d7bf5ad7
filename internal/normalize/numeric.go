package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultExtraPrecision is how many decimal places a label value may be widened by.
	DefaultExtraPrecision = 3
	// DefaultMaxPrecision caps the widened precision.
	DefaultMaxPrecision = 5
)

var plainNumberRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// ExpandNumeric returns the renderings of a numeric label value that may be
// matched against a document: the literal itself, then the value formatted at
// every precision from its own up to min(own+extra, max). Precision is only
// ever widened, so "150.4" yields "150.40" and "150.400" but "150.41" never
// yields "150.4". Non-numeric input yields nil.
func ExpandNumeric(value string, extra, maxPrecision int) []string {
	literal := strings.TrimSpace(value)
	if !plainNumberRe.MatchString(literal) {
		return nil
	}

	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}

	precision := 0
	if i := strings.IndexByte(literal, '.'); i >= 0 {
		precision = len(literal) - i - 1
	}

	upper := min(precision+extra, maxPrecision)

	out := []string{literal}
	seen := map[string]bool{literal: true}
	for p := precision; p <= upper; p++ {
		s := strconv.FormatFloat(f, 'f', p, 64)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// ContainsNumber reports whether number occurs in text as a whole number,
// not as part of a longer one: "150.40" is not found inside "1150.40" or
// "150.405".
func ContainsNumber(text, number string) bool {
	if number == "" {
		return false
	}
	start := 0
	for {
		i := strings.Index(text[start:], number)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(number)
		if !extendsBefore(text, i) && !extendsAfter(text, end) {
			return true
		}
		start = i + 1
	}
}

func extendsBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	prev := text[i-1]
	if isDigit(prev) {
		return true
	}
	// "1.5" preceded by "3" reads as "31.5"; ".5" preceded by "3." reads as "3.5".
	return (prev == '.' || prev == ',') && i >= 2 && isDigit(text[i-2])
}

func extendsAfter(text string, end int) bool {
	if end >= len(text) {
		return false
	}
	next := text[end]
	if isDigit(next) {
		return true
	}
	return (next == '.' || next == ',') && end+1 < len(text) && isDigit(text[end+1])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
