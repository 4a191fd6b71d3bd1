package manifest

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const warmupSheet = "Sheet1"

// WarmUp exercises the spreadsheet engine once: it writes a workbook to
// memory and reads it back. Hosts pass it to Readiness.Start.
func WarmUp() error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetCellValue(warmupSheet, "A1", "NR. DOC."); err != nil {
		return fmt.Errorf("warm up: set cell: %w", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("warm up: write: %w", err)
	}

	r, err := excelize.OpenReader(buf)
	if err != nil {
		return fmt.Errorf("warm up: open: %w", err)
	}
	defer r.Close()

	v, err := r.GetCellValue(warmupSheet, "A1")
	if err != nil {
		return fmt.Errorf("warm up: read: %w", err)
	}
	if v != "NR. DOC." {
		return fmt.Errorf("warm up: read back %q", v)
	}
	return nil
}
