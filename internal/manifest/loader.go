package manifest

// loader.go is the Tabular Loader: it turns a path into a best-effort
// headerless RawTable.
//
// Content sniffing decides the parser, not the extension:
//   - ZIP container (PK\x03\x04): XLSX via excelize
//   - OLE2 compound file (D0 CF 11 E0): legacy XLS
//   - anything else: delimited text, latin-1 tolerant
//
// A spreadsheet that fails to parse falls back to delimited text; only when
// both fail does a *ReadError surface.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Sheet selection keywords. A workbook's fourth sheet is preferred when its
// header mentions any of fourthSheetKeywords; otherwise the first sheet whose
// header has "CTRC" plus a fiscal number marker wins.
var (
	fourthSheetKeywords = []string{"CTRC", "N.FISCAL", "NFISCAL"}
	sheetFiscalKeywords = []string{"N.FISCAL", "NFISCAL"}
)

const (
	// fourthSheetIndex is the 0-based index of the carrier "4th sheet" convention.
	fourthSheetIndex = 3

	// scanSheets and scanRows bound the raw keyword scan of a workbook.
	scanSheets = 3
	scanRows   = 20

	// scanBytes bounds the raw keyword scan of a text file.
	scanBytes = 5000
)

var (
	errNotSpreadsheet = errors.New("not a spreadsheet")
	errEmptyWorkbook  = errors.New("workbook has no sheets")
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// fileFormat is the sniffed container format of an input file.
type fileFormat int

const (
	formatText fileFormat = iota
	formatXLSX
	formatXLS
)

// workbook is the read-only view shared by the XLSX and XLS readers.
type workbook interface {
	SheetCount() int
	// Sheet returns at most maxRows rows of sheet i; maxRows <= 0 reads all.
	Sheet(i, maxRows int) ([][]string, error)
	Close() error
}

// Loader reads manifest files into RawTables.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil logger uses slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads path with the full sheet-selection cascade, falling back to
// delimited text when the spreadsheet path fails.
func (l *Loader) Load(path string) (RawTable, error) {
	t, sheetErr := l.loadSelectedSheet(path)
	if sheetErr == nil {
		return t, nil
	}
	if !errors.Is(sheetErr, errNotSpreadsheet) {
		l.logger.Debug("loader.sheet.fallback", "file", filepath.Base(path), "error", sheetErr)
	}

	t, textErr := l.LoadText(path, 0)
	if textErr != nil {
		return RawTable{}, &ReadError{Path: path, Cause: fmt.Errorf("%w (text fallback: %v)", sheetErr, textErr)}
	}
	return t, nil
}

// LoadFirstSheet reads the first sheet of a workbook, or the whole file as
// delimited text with the given delimiter (0 sniffs it).
func (l *Loader) LoadFirstSheet(path string, delim rune) (RawTable, error) {
	return l.loadPlain(path, 0, delim)
}

// LoadHead reads at most n rows of the first sheet or of the text file.
func (l *Loader) LoadHead(path string, n int) (RawTable, error) {
	return l.loadPlain(path, n, 0)
}

func (l *Loader) loadPlain(path string, maxRows int, delim rune) (RawTable, error) {
	book, err := l.openWorkbook(path)
	if err == nil {
		defer book.Close()
		rows, err := book.Sheet(0, maxRows)
		if err == nil {
			return RawTable{Rows: rows}, nil
		}
		l.logger.Debug("loader.sheet.fallback", "file", filepath.Base(path), "error", err)
	}

	t, textErr := l.LoadText(path, delim)
	if textErr != nil {
		cause := textErr
		if err != nil && !errors.Is(err, errNotSpreadsheet) {
			cause = fmt.Errorf("%w (text fallback: %v)", err, textErr)
		}
		return RawTable{}, &ReadError{Path: path, Cause: cause}
	}
	return t.Head(maxRows), nil
}

// loadSelectedSheet applies the sheet-selection cascade to a workbook.
func (l *Loader) loadSelectedSheet(path string) (RawTable, error) {
	book, err := l.openWorkbook(path)
	if err != nil {
		return RawTable{}, err
	}
	defer book.Close()

	n := book.SheetCount()
	if n == 0 {
		return RawTable{}, errEmptyWorkbook
	}

	if n > fourthSheetIndex {
		rows, err := book.Sheet(fourthSheetIndex, 0)
		if err == nil && len(rows) > 0 && containsAny(headerText(rows[0]), fourthSheetKeywords...) {
			l.logger.Debug("loader.sheet.selected", "file", filepath.Base(path), "sheet", fourthSheetIndex, "rule", "fourth_sheet")
			return RawTable{Rows: rows}, nil
		}
	}

	for i := 0; i < n; i++ {
		head, err := book.Sheet(i, 1)
		if err != nil {
			return RawTable{}, fmt.Errorf("read sheet %d: %w", i, err)
		}
		if len(head) == 0 {
			continue
		}
		h := headerText(head[0])
		if strings.Contains(h, "CTRC") && containsAny(h, sheetFiscalKeywords...) {
			rows, err := book.Sheet(i, 0)
			if err != nil {
				return RawTable{}, fmt.Errorf("read sheet %d: %w", i, err)
			}
			l.logger.Debug("loader.sheet.selected", "file", filepath.Base(path), "sheet", i, "rule", "ctrc_header")
			return RawTable{Rows: rows}, nil
		}
	}

	rows, err := book.Sheet(0, 0)
	if err != nil {
		return RawTable{}, fmt.Errorf("read sheet 0: %w", err)
	}
	return RawTable{Rows: rows}, nil
}

// openWorkbook sniffs path and opens it with the matching reader.
func (l *Loader) openWorkbook(path string) (workbook, error) {
	format, err := sniffFormat(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case formatXLSX:
		book, err := openXLSX(path)
		if err != nil {
			return nil, err
		}
		return book, nil
	case formatXLS:
		book, err := openXLS(path)
		if err != nil {
			return nil, err
		}
		return book, nil
	}
	return nil, errNotSpreadsheet
}

// sniffFormat inspects the leading bytes of path.
func sniffFormat(path string) (fileFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return formatText, err
	}
	defer f.Close()

	head := make([]byte, len(oleMagic))
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return formatText, err
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return formatXLSX, nil
	case bytes.HasPrefix(head, oleMagic):
		return formatXLS, nil
	}
	return formatText, nil
}

// headerText joins a header row, uppercased, for keyword search.
func headerText(row []string) string {
	return strings.ToUpper(strings.Join(row, " "))
}

// rowText joins a row with spaces, uppercased.
func rowText(row []string) string {
	return headerText(row)
}

// containsAny reports whether s contains any of the substrings.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
