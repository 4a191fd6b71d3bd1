package manifest

func init() {
	Register(LayoutDefinition{
		Kind:        LayoutListaCargas,
		Extract:     extractListaCargas,
		NeedsEngine: true,
	})
}

// extractListaCargas reads a load list whose first row names the columns.
func extractListaCargas(l *Loader, path string) ([]RawRecord, error) {
	t, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	f := t.Frame(0)
	cols := normalizeColumns(f.Columns)

	doc := findColumn(cols, hasAny("NOTA", "NF", "DOCUMENTO", "NR_NOTA"))
	if doc < 0 {
		return nil, &ExtractionError{Layout: LayoutListaCargas, Reason: "document column not found", Columns: cols}
	}
	expected := findColumn(cols, hasAny("PREV"))
	actual := findColumn(cols, deliveryColumn)
	if actual < 0 {
		actual = findColumn(cols, hasAny("REALIZ", "BAIXA"))
	}

	return frameRecords(f, doc, expected, actual), nil
}
