package manifest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// cellTimeLayout renders spreadsheet date cells. The date normalizers strip
// the time part.
const cellTimeLayout = "2006-01-02 15:04:05"

// builtinDateFormats are the built-in number format IDs that render dates.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

/* ----------------------------------------
	XLSX (excelize)
---------------------------------------- */

type xlsxBook struct {
	f          *excelize.File
	sheets     []string
	dateStyles map[int]bool
}

func openXLSX(path string) (*xlsxBook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	return &xlsxBook{
		f:          f,
		sheets:     f.GetSheetList(),
		dateStyles: make(map[int]bool),
	}, nil
}

func (b *xlsxBook) SheetCount() int { return len(b.sheets) }

func (b *xlsxBook) Close() error { return b.f.Close() }

// Sheet reads raw cell values so numeric document numbers keep their digits,
// then renders date-styled serials as timestamps.
func (b *xlsxBook) Sheet(i, maxRows int) ([][]string, error) {
	if i < 0 || i >= len(b.sheets) {
		return nil, fmt.Errorf("sheet index %d out of range (%d sheets)", i, len(b.sheets))
	}
	name := b.sheets[i]

	rows, err := b.f.Rows(name)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}
	defer rows.Close()

	var out [][]string
	for rowNum := 1; rows.Next(); rowNum++ {
		if maxRows > 0 && len(out) >= maxRows {
			break
		}
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("sheet %q row %d: %w", name, rowNum, err)
		}
		for c, v := range cols {
			cols[c] = b.render(name, c+1, rowNum, v)
		}
		out = append(out, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}
	return out, nil
}

// render converts a date-styled serial number to cellTimeLayout.
func (b *xlsxBook) render(sheet string, col, row int, raw string) string {
	if raw == "" {
		return raw
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	styleID, err := b.f.GetCellStyle(sheet, axis)
	if err != nil || !b.isDateStyle(styleID) {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format(cellTimeLayout)
}

func (b *xlsxBook) isDateStyle(id int) bool {
	if v, ok := b.dateStyles[id]; ok {
		return v
	}
	isDate := false
	if st, err := b.f.GetStyle(id); err == nil && st != nil {
		isDate = builtinDateFormats[st.NumFmt]
		if st.CustomNumFmt != nil {
			isDate = isDate || customFormatIsDate(*st.CustomNumFmt)
		}
	}
	b.dateStyles[id] = isDate
	return isDate
}

// customFormatIsDate reports whether a custom number format renders a date.
// Quoted literals and bracketed sections (colors, locales) are ignored.
func customFormatIsDate(format string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(format) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(r)
		}
	}
	f := b.String()
	return strings.ContainsAny(f, "dy")
}

/* ----------------------------------------
	XLS (BIFF, extrame/xls)
---------------------------------------- */

type xlsBook struct {
	wb *xls.WorkBook
}

func openXLS(path string) (book *xlsBook, err error) {
	// The BIFF reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			book, err = nil, fmt.Errorf("open xls: %v", r)
		}
	}()

	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	return &xlsBook{wb: wb}, nil
}

func (b *xlsBook) SheetCount() int { return b.wb.NumSheets() }

func (b *xlsBook) Close() error { return nil }

func (b *xlsBook) Sheet(i, maxRows int) (out [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("xls sheet %d: %v", i, r)
		}
	}()

	sheet := b.wb.GetSheet(i)
	if sheet == nil {
		return nil, fmt.Errorf("sheet index %d out of range (%d sheets)", i, b.wb.NumSheets())
	}

	for r := 0; r <= int(sheet.MaxRow); r++ {
		if maxRows > 0 && len(out) >= maxRows {
			break
		}
		row := sheet.Row(r)
		if row == nil {
			out = append(out, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = xlsCell(row.Col(c))
		}
		out = append(out, cells)
	}
	return out, nil
}

// xlsCell renders RFC 3339 date cells in cellTimeLayout.
func xlsCell(v string) string {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.Format(cellTimeLayout)
	}
	return v
}
