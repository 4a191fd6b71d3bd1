package manifest

import "strings"

// LayoutKind identifies a carrier manifest convention.
type LayoutKind string

const (
	LayoutAlfa          LayoutKind = "ALFA"
	LayoutTNT           LayoutKind = "TNT"
	LayoutLT            LayoutKind = "LT"
	LayoutAGE           LayoutKind = "AGE"
	LayoutTxtExcellence LayoutKind = "TXT_EXCELLENCE"
	LayoutListaCargas   LayoutKind = "LISTA_CARGAS"
	LayoutUnknown       LayoutKind = "UNKNOWN"
	LayoutError         LayoutKind = "ERROR"
	LayoutPendingInit   LayoutKind = "PENDING_INIT"
)

// Extractable reports whether the kind names a concrete carrier layout.
// UNKNOWN, ERROR and PENDING_INIT are outcomes, not layouts.
func (k LayoutKind) Extractable() bool {
	switch k {
	case LayoutAlfa, LayoutTNT, LayoutLT, LayoutAGE, LayoutTxtExcellence, LayoutListaCargas:
		return true
	}
	return false
}

// ParseLayoutKind parses an operator supplied layout name.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseLayoutKind(s string) (LayoutKind, bool) {
	k := LayoutKind(strings.ToUpper(strings.TrimSpace(s)))
	switch k {
	case LayoutAlfa, LayoutTNT, LayoutLT, LayoutAGE, LayoutTxtExcellence, LayoutListaCargas,
		LayoutUnknown, LayoutError, LayoutPendingInit:
		return k, true
	}
	return "", false
}

// RawTable is a headerless grid of cell text as read from a file.
// Rows may be ragged. A RawTable is never mutated once loaded.
type RawTable struct {
	Rows [][]string
}

// Width returns the widest row length.
func (t RawTable) Width() int {
	w := 0
	for _, r := range t.Rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Head returns a table holding at most the first n rows. A non-positive n
// keeps every row.
func (t RawTable) Head(n int) RawTable {
	if n <= 0 || n >= len(t.Rows) {
		return t
	}
	return RawTable{Rows: t.Rows[:n]}
}

// Frame promotes row i to column names and returns the rows below it.
// An out of range index yields an empty frame.
func (t RawTable) Frame(i int) Frame {
	if i < 0 || i >= len(t.Rows) {
		return Frame{}
	}
	return Frame{Columns: t.Rows[i], Rows: t.Rows[i+1:]}
}

// Frame is a RawTable view with one row promoted to column names.
type Frame struct {
	Columns []string
	Rows    [][]string
}

// Cell returns row[col], or "" when the row is too short.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// RawRecord is one extracted row before normalization.
type RawRecord struct {
	Doc      string
	Expected string
	Actual   string
}

// Record is one row of the canonical schema.
type Record struct {
	Item         int    `json:"item"`
	DocNumber    string `json:"doc_number"`
	ExpectedDate string `json:"expected_date"`
	ActualDate   string `json:"actual_date"`
}

// Fields returns the three data columns in export order.
func (r Record) Fields() []string {
	return []string{r.DocNumber, r.ExpectedDate, r.ActualDate}
}

// Table is the canonical output of one processing request.
type Table struct {
	Source  string     `json:"source"`
	Layout  LayoutKind `json:"layout"`
	Records []Record   `json:"records"`
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Empty reports whether processing produced no usable rows.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// ColumnTitles are the display titles of the canonical columns.
var ColumnTitles = []string{"Nr. Doc.", "Data de Previsão de Entrega", "Data Entrega"}
