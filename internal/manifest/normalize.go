package manifest

// normalize.go canonicalizes document numbers and dates.
//
// Carrier files are full of artifacts from spreadsheet typing:
//   - Numeric cells rendered as "123.0"
//   - Missing cells rendered as "nan" or "NaT"
//   - Date cells carrying a meaningless time of day
//   - Two-digit years and day-first ordering
//
// None of these functions fail. Unusable input yields "" so that one bad cell
// never invalidates an otherwise good file.

import (
	"strings"
	"time"
)

// DocNumberWidth is the fixed width of a canonical document number.
const DocNumberWidth = 6

// EmptyDocNumber is the all-zero sentinel rejected by the pipeline.
const EmptyDocNumber = "000000"

// dateOutputLayout renders canonical dates. Time is always midnight since
// source files carry no reliable time of day.
const dateOutputLayout = "02/01/2006 00:00"

// strictDateLayouts are tried in order by FormatDate; first success wins.
// dd/mm/yyyy, yyyy-mm-dd, dd-mm-yyyy, yyyy/mm/dd.
var strictDateLayouts = []string{
	"2/1/2006", "2006-1-2", "2-1-2006", "2006/1/2",
}

// Permissive layouts used by FormatDateLoose, day-first.
var (
	looseFourDigitYearLayouts = []string{
		"2/1/2006", "2-1-2006", "2.1.2006",
		"2006-1-2", "2006/1/2", "2006.1.2",
		"20060102",
		"2 Jan 2006", "2-Jan-2006", "2/Jan/2006", "Jan 2, 2006", "2 January 2006",
	}
	looseTwoDigitYearLayouts = []string{
		"2/1/06", "2-1-06", "2.1.06", "2-Jan-06",
	}
)

// now is the clock used for two-digit year expansion and year-less dates.
var now = time.Now

// missingMarkers are spreadsheet renderings of an absent value.
var missingMarkers = map[string]bool{
	"nan":  true,
	"nat":  true,
	"none": true,
	"null": true,
}

// isMissing reports whether a trimmed cell holds no value.
func isMissing(s string) bool {
	return s == "" || missingMarkers[strings.ToLower(s)]
}

// CleanDocNumber canonicalizes a document number to exactly six digits.
//
// The value is trimmed, a trailing ".0" is removed, every non-digit is
// dropped, and the remaining digits are left-padded with zeros and cut to
// the last six. Returns "" when no digits remain.
func CleanDocNumber(s string) string {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return ""
	}
	s = strings.TrimSuffix(s, ".0")

	digits := digitsOnly(s)
	if digits == "" {
		return ""
	}
	digits = padLeft(digits, DocNumberWidth)
	return digits[len(digits)-DocNumberWidth:]
}

// CleanTNTDocNumber canonicalizes a TNT "NOTA/SERIE" value.
//
// Anything after the first '-' is the series and is discarded. The digits are
// padded to six but never truncated: TNT numbers may legitimately be longer.
func CleanTNTDocNumber(s string) string {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return ""
	}
	s = strings.TrimSuffix(s, ".0")
	if i := strings.IndexByte(s, '-'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	digits := digitsOnly(s)
	if digits == "" {
		return ""
	}
	return padLeft(digits, DocNumberWidth)
}

// FormatDate renders a date cell as "dd/mm/yyyy 00:00".
// Only dd/mm/yyyy, yyyy-mm-dd, dd-mm-yyyy and yyyy/mm/dd are accepted.
// A trailing time of day is ignored. Unparseable input yields "".
func FormatDate(s string) string {
	s = stripTime(strings.TrimSpace(s))
	if isMissing(s) {
		return ""
	}
	for _, layout := range strictDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateOutputLayout)
		}
	}
	return ""
}

// FormatDateLoose renders a date cell as "dd/mm/yyyy 00:00" using a
// permissive day-first parser. Two-digit years belong to the current century.
// Unparseable input yields "".
func FormatDateLoose(s string) string {
	s = strings.TrimSpace(s)
	if isMissing(s) {
		return ""
	}
	s = stripClock(s)
	if i := strings.IndexByte(s, 'T'); i == 10 {
		s = s[:i]
	}

	for _, layout := range looseFourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateOutputLayout)
		}
	}

	century := now().Year() / 100 * 100
	for _, layout := range looseTwoDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// time.Parse maps 69-99 to the 1900s; pin to the current century.
		year := century + t.Year()%100
		t = time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return t.Format(dateOutputLayout)
	}
	return ""
}

// stripTime drops everything after the first space.
func stripTime(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// stripClock drops a trailing "hh:mm[:ss]" segment but keeps spaced dates
// such as "5 Mar 2024".
func stripClock(s string) string {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 || !strings.Contains(s[i:], ":") {
		return s
	}
	return strings.TrimSpace(s[:i])
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
