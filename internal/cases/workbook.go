package cases

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// OutputSheet is the sheet every generated workbook writes to.
const OutputSheet = "Sheet1"

// WriteWorkbook writes the header followed by rows to a fresh xlsx.
func WriteWorkbook(w io.Writer, columns []string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(OutputSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := r.Values(columns)
		line := make([]interface{}, len(values))
		for j, v := range values {
			line[j] = v
		}
		if err := f.SetSheetRow(OutputSheet, cell, &line); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if len(columns) > 0 && len(rows) > 0 {
		style, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(columns), len(rows)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(OutputSheet, "A2", last, style); err != nil {
			return err
		}
	}

	return f.Write(w)
}
