package manifest

import (
	"path/filepath"
	"strings"
)

// Scan returns the uppercased text used for content classification: the
// first 20 rows of up to the first 3 sheets of a workbook, or the first
// 5000 bytes of any other file. It is independent of the full Load path.
// Returns ErrUnreadableContent when nothing could be read.
func (l *Loader) Scan(path string) (string, error) {
	var b strings.Builder

	if book, err := l.openWorkbook(path); err == nil {
		for i := 0; i < book.SheetCount() && i < scanSheets; i++ {
			rows, err := book.Sheet(i, scanRows)
			if err != nil {
				l.logger.Debug("scan.sheet.skipped", "file", filepath.Base(path), "sheet", i, "error", err)
				continue
			}
			for _, row := range rows {
				b.WriteString(strings.Join(row, " "))
				b.WriteByte('\n')
			}
		}
		book.Close()
	}

	if b.Len() == 0 {
		text, err := readPrefix(path, scanBytes)
		if err != nil {
			l.logger.Debug("scan.text.failed", "file", filepath.Base(path), "error", err)
		}
		b.WriteString(text)
	}

	if b.Len() == 0 {
		return "", ErrUnreadableContent
	}
	return strings.ToUpper(b.String()), nil
}
