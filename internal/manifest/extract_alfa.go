package manifest

import "strings"

// ALFA exports carry a report banner above a header row holding the literal
// tokens "Nro.Doc" and "Dt.Emtrega" (sic). Text exports are comma separated.
const (
	alfaDocToken  = "Nro.Doc"
	alfaDateToken = "Dt.Emtrega"
)

func init() {
	Register(LayoutDefinition{
		Kind:        LayoutAlfa,
		Extract:     extractAlfa,
		NeedsEngine: true,
	})
}

// extractAlfa reads an ALFA report. The delivery date fills both date
// fields since the layout has no separate expected date.
func extractAlfa(l *Loader, path string) ([]RawRecord, error) {
	t, err := l.LoadFirstSheet(path, ',')
	if err != nil {
		return nil, err
	}

	header, docCol, dateCol := -1, -1, -1
	for i, row := range t.Rows {
		docCol = exactCell(row, alfaDocToken)
		if docCol >= 0 {
			header = i
			dateCol = exactCell(row, alfaDateToken)
			break
		}
	}
	if header < 0 {
		return nil, &ExtractionError{Layout: LayoutAlfa, Reason: "header row with " + alfaDocToken + " not found"}
	}

	var out []RawRecord
	for _, row := range t.Rows[header+1:] {
		doc := strings.TrimSpace(Cell(row, docCol))
		if doc == "" || strings.Contains(doc, alfaDocToken) {
			continue
		}
		date := Cell(row, dateCol)
		out = append(out, RawRecord{Doc: doc, Expected: date, Actual: date})
	}
	return out, nil
}

// exactCell returns the index of the first cell equal to token after
// trimming, or -1.
func exactCell(row []string, token string) int {
	for i, v := range row {
		if strings.TrimSpace(v) == token {
			return i
		}
	}
	return -1
}
