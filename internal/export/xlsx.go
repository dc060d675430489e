package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kunal1274/fms-dev-sub000/internal/records"
)

// ContentTypeXLSX is the media type of WriteXLSX output.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const maxSheetName = 31

// WriteXLSX writes rows as a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, sheet string, cols []Column, rows []records.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if len(sheet) > maxSheetName {
		sheet = sheet[:maxSheetName]
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if len(cols) > 0 {
		last, err := excelize.CoordinatesToCellName(len(cols), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return err
		}
	}

	for i, rec := range rows {
		cells := Row(cols, rec)
		values := make([]any, len(cells))
		for j, v := range cells {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return err
		}
	}
	return f.Write(w)
}
