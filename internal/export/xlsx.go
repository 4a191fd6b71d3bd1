package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/manifestnorm/internal/manifest"
)

const xlsxSheet = "Logistica"

// xlsxHeaders are the workbook column titles. Unlike the delimited export the
// workbook is for people, so it carries a header and the item number.
var xlsxHeaders = append([]string{"Item"}, manifest.ColumnTitles...)

// WriteXLSX renders records as a single-sheet workbook.
func WriteXLSX(records []manifest.Record) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(xlsxSheet, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}

	// Document numbers are written as strings so leading zeros survive.
	for i, r := range records {
		row := []any{r.Item, r.DocNumber, r.ExpectedDate, r.ActualDate}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(xlsxSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+1, err)
		}
	}

	_ = f.SetColWidth(xlsxSheet, "A", "A", 8)
	_ = f.SetColWidth(xlsxSheet, "B", "B", 14)
	_ = f.SetColWidth(xlsxSheet, "C", "D", 28)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf, nil
}
