package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date format labels reported by ValidateDate.
const (
	FormatDayMonthName = "DD Mon YYYY"
	FormatDMYSlash     = "DD/MM/YYYY"
	FormatISO          = "YYYY-MM-DD"
	FormatDMYDash      = "DD-MM-YYYY"
	FormatMDYSlash     = "MM/DD/YYYY"
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var dayMonthNameRe = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)\.?,?\s+(\d{4})$`)

// numericLayouts are tried in order after the month-name form. Single-digit
// layout elements accept both "3" and "03".
var numericLayouts = []struct {
	layout string
	label  string
}{
	{"2/1/2006", FormatDMYSlash},
	{"2006-1-2", FormatISO},
	{"2-1-2006", FormatDMYDash},
	{"1/2/2006", FormatMDYSlash},
}

// ValidateDate tries the supported date patterns in order and returns the
// first calendrically valid reading with its format label.
func ValidateDate(s string) (time.Time, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, "", false
	}

	if m := dayMonthNameRe.FindStringSubmatch(s); m != nil {
		if month, ok := monthNames[strings.ToLower(m[2])]; ok {
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			if t, ok := calendarDate(year, month, day); ok {
				return t, FormatDayMonthName, true
			}
		}
	}

	for _, l := range numericLayouts {
		if t, err := time.Parse(l.layout, s); err == nil {
			return t, l.label, true
		}
	}

	return time.Time{}, "", false
}

func calendarDate(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// DateOrder is the day/month convention a document uses for n/n/yyyy dates.
type DateOrder string

const (
	DayFirst     DateOrder = "DD/MM"
	MonthFirst   DateOrder = "MM/DD"
	UnknownOrder DateOrder = "UNKNOWN"
)

var slashDateRe = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/\d{2,4}`)

// DetectDateOrder scans text for n/n/yyyy dates and returns the convention
// given by the first one that is unambiguous: a first number above 12 means
// day-first, a second number above 12 means month-first.
func DetectDateOrder(text string) DateOrder {
	for _, m := range slashDateRe.FindAllStringSubmatch(text, -1) {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		if first > 12 {
			return DayFirst
		}
		if second > 12 {
			return MonthFirst
		}
	}
	return UnknownOrder
}

// AlternateDates renders t in every surface form a document might use. The
// fixed forms come first; unpadded and two-digit-year slash forms follow for
// the day/month order the document uses, or for both when it is unknown.
func AlternateDates(t time.Time, order DateOrder) []string {
	layouts := []string{
		"02 Jan 2006",
		"02 January 2006",
		"02/01/2006",
		"2006-01-02",
		"2006/01/02",
		"02-01-2006",
		"01/02/2006",
		"January 02, 2006",
		"02-Jan-2006",
		"02-Jan-06",
	}

	if order == DayFirst || order == UnknownOrder {
		layouts = append(layouts, "2/1/2006", "02/01/06", "2/1/06")
	}
	if order == MonthFirst || order == UnknownOrder {
		layouts = append(layouts, "1/2/2006", "01/02/06", "1/2/06")
	}

	out := make([]string, 0, len(layouts))
	seen := make(map[string]bool, len(layouts))
	for _, l := range layouts {
		s := t.Format(l)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
