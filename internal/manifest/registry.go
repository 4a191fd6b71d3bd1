package manifest

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ExtractFunc reads path and returns its rows before normalization.
type ExtractFunc func(l *Loader, path string) ([]RawRecord, error)

// LayoutDefinition is the extraction strategy for one LayoutKind.
type LayoutDefinition struct {
	Kind LayoutKind

	Extract ExtractFunc

	// CleanDoc and CleanDate normalize the raw fields of every row.
	CleanDoc  func(string) string
	CleanDate func(string) string

	// NeedsEngine is false only for layouts read as plain text lines.
	NeedsEngine bool
}

var (
	layouts   = make(map[LayoutKind]LayoutDefinition)
	layoutsMu sync.RWMutex
)

// Register adds a layout strategy.
// Panics if the kind is not extractable or is already registered.
func Register(def LayoutDefinition) {
	layoutsMu.Lock()
	defer layoutsMu.Unlock()

	if !def.Kind.Extractable() {
		panic(fmt.Sprintf("layout kind is not extractable: %s", def.Kind))
	}
	if _, exists := layouts[def.Kind]; exists {
		panic(fmt.Sprintf("layout already registered: %s", def.Kind))
	}
	if def.CleanDoc == nil {
		def.CleanDoc = CleanDocNumber
	}
	if def.CleanDate == nil {
		def.CleanDate = FormatDate
	}
	layouts[def.Kind] = def
}

// Lookup returns the strategy registered for kind.
func Lookup(kind LayoutKind) (LayoutDefinition, bool) {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()

	def, ok := layouts[kind]
	return def, ok
}

// Layouts returns every registered strategy sorted by kind.
func Layouts() []LayoutDefinition {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()

	result := make([]LayoutDefinition, 0, len(layouts))
	for _, def := range layouts {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Kind < result[j].Kind })
	return result
}

/* ----------------------------------------
	Column lookup helpers
---------------------------------------- */

// normalizeColumns uppercases and trims column names.
func normalizeColumns(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	return out
}

// findColumn returns the index of the first column matching pred, or -1.
func findColumn(cols []string, pred func(string) bool) int {
	for i, c := range cols {
		if pred(c) {
			return i
		}
	}
	return -1
}

// hasAny returns a predicate matching columns that contain any keyword.
func hasAny(keywords ...string) func(string) bool {
	return func(c string) bool { return containsAny(c, keywords...) }
}

// frameRecords projects a frame onto the three raw fields.
// A negative column index yields an empty field.
func frameRecords(f Frame, doc, expected, actual int) []RawRecord {
	out := make([]RawRecord, 0, len(f.Rows))
	for _, row := range f.Rows {
		out = append(out, RawRecord{
			Doc:      Cell(row, doc),
			Expected: Cell(row, expected),
			Actual:   Cell(row, actual),
		})
	}
	return out
}
