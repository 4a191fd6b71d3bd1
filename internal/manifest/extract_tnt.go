package manifest

import "strings"

// tntHeaderRows bounds the search for the NOTA/SERIE header row.
const tntHeaderRows = 20

func init() {
	Register(LayoutDefinition{
		Kind:        LayoutTNT,
		Extract:     extractTNT,
		CleanDoc:    CleanTNTDocNumber,
		NeedsEngine: true,
	})
}

// isNotaSerie reports whether s names the TNT invoice/series column.
func isNotaSerie(s string) bool {
	return strings.Contains(s, "NOTA") && containsAny(s, "SERIE", "SÉRIE")
}

// extractTNT finds the NOTA/SERIE header within the first rows, then reads
// the first sheet again with that row promoted to column names.
func extractTNT(l *Loader, path string) ([]RawRecord, error) {
	head, err := l.LoadHead(path, tntHeaderRows)
	if err != nil {
		return nil, err
	}

	header := -1
	for i, row := range head.Rows {
		if isNotaSerie(rowText(row)) {
			header = i
			break
		}
	}
	if header < 0 {
		return nil, &ExtractionError{Layout: LayoutTNT, Reason: "header row NOTA/SERIE not found"}
	}

	t, err := l.LoadFirstSheet(path, 0)
	if err != nil {
		return nil, err
	}
	f := t.Frame(header)
	cols := normalizeColumns(f.Columns)

	doc := findColumn(cols, isNotaSerie)
	if doc < 0 {
		return nil, &ExtractionError{Layout: LayoutTNT, Reason: "column NOTA/SERIE not found", Columns: cols}
	}
	actual := findColumn(cols, func(c string) bool {
		return strings.Contains(c, "DATA") && strings.Contains(c, "FINALIZA")
	})
	expected := findColumn(cols, hasAny("PREVIS"))

	return frameRecords(Frame{Columns: cols, Rows: f.Rows}, doc, expected, actual), nil
}
