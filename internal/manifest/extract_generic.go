package manifest

import "strings"

// genericHeaderRows bounds the search for a buried header row.
const genericHeaderRows = 30

// genericHeaderKeywords mark the header row of LT and AGE exports.
var genericHeaderKeywords = []string{"N.FISCAL", "NFISCAL", "NOTA FISCAL", "NR.NOTA", "N. NOTA", "NR_NFE"}

func init() {
	for _, kind := range []LayoutKind{LayoutLT, LayoutAGE} {
		Register(LayoutDefinition{
			Kind:        kind,
			Extract:     genericExtractor(kind),
			CleanDate:   FormatDateLoose,
			NeedsEngine: true,
		})
	}
}

// genericExtractor returns the column-sniffing extractor shared by the LT
// and AGE layouts. kind only labels errors.
func genericExtractor(kind LayoutKind) ExtractFunc {
	return func(l *Loader, path string) ([]RawRecord, error) {
		t, err := l.Load(path)
		if err != nil {
			return nil, err
		}
		if t.Width() < 2 {
			if retry, err := l.LoadText(path, 0); err == nil {
				t = retry
			}
		}

		// Row 0 is the default header; a keyword row among the following
		// rows takes precedence.
		header := 0
		for i := 1; i < len(t.Rows) && i <= genericHeaderRows; i++ {
			if containsAny(rowText(t.Rows[i]), genericHeaderKeywords...) {
				header = i
				break
			}
		}

		f := t.Frame(header)
		cols := normalizeColumns(f.Columns)

		doc := findColumn(cols, hasAny("N.FISCAL", "NFISCAL", "NOTA", "DOC", "NFE"))
		if doc < 0 {
			return nil, &ExtractionError{Layout: kind, Reason: "fiscal number column not found", Columns: cols}
		}
		expected := findColumn(cols, hasAny("PREV"))
		actual := findColumn(cols, deliveryColumn)
		if actual < 0 {
			actual = findColumn(cols, func(c string) bool {
				return strings.Contains(c, "DATA") && containsAny(c, "BAIXA", "REALIZ")
			})
		}

		return frameRecords(f, doc, expected, actual), nil
	}
}

// deliveryColumn matches an actual delivery column. "PREV" is excluded so
// the expected-date column never matches.
func deliveryColumn(c string) bool {
	return strings.Contains(c, "ENTREGA") && !strings.Contains(c, "PREV")
}
