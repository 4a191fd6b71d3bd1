package manifest

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// excellenceLine matches a detail line: a 4-9 digit document number between
// blanks, then the expected and actual dd/mm tokens in that order.
var excellenceLine = regexp.MustCompile(`\s(\d{4,9})\s.*?(\d{2}/\d{2}).*?(\d{2}/\d{2})`)

func init() {
	Register(LayoutDefinition{
		Kind:    LayoutTxtExcellence,
		Extract: extractExcellence,
	})
}

// extractExcellence parses the fixed-width Excellence text report. Banner
// and header lines are skipped, as is any line that does not match or
// carries an impossible date. Dates take the current year.
func extractExcellence(l *Loader, path string) ([]RawRecord, error) {
	lines, err := l.ReadLines(path)
	if err != nil {
		return nil, err
	}

	year := now().Year()
	var out []RawRecord
	for _, line := range lines {
		if strings.Contains(line, "NFISCAL") || strings.Contains(line, "EXCELLENCE") {
			continue
		}
		m := excellenceLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		expected, ok := withYear(m[2], year)
		if !ok {
			continue
		}
		actual, ok := withYear(m[3], year)
		if !ok {
			continue
		}
		out = append(out, RawRecord{Doc: m[1], Expected: expected, Actual: actual})
	}
	return out, nil
}

// withYear completes a dd/mm token into a valid dd/mm/yyyy date.
func withYear(ddmm string, year int) (string, bool) {
	s := fmt.Sprintf("%s/%d", ddmm, year)
	if _, err := time.Parse("02/01/2006", s); err != nil {
		return "", false
	}
	return s, true
}
