package cases

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TemplateSchemaError reports a template that could not be read as a
// spreadsheet with a header row.
type TemplateSchemaError struct {
	Path string
	Err  error
}

func (e *TemplateSchemaError) Error() string {
	return fmt.Sprintf("failed to read case template %s: %v (the file may not be a real .xlsx, may be damaged, or may be locked; re-save it as .xlsx and close any program holding it)", e.Path, e.Err)
}

func (e *TemplateSchemaError) Unwrap() error { return e.Err }

// ReadTemplateColumns returns the header row of the named sheet, or of the
// first sheet when sheet is empty. Blank header cells are named
// "Unnamed: <index>" so every column stays addressable.
func ReadTemplateColumns(path, sheet string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &TemplateSchemaError{Path: path, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &TemplateSchemaError{Path: path, Err: fmt.Errorf("workbook has no sheets")}
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, &TemplateSchemaError{Path: path, Err: fmt.Errorf("sheet %q not found", sheet)}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &TemplateSchemaError{Path: path, Err: err}
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, &TemplateSchemaError{Path: path, Err: fmt.Errorf("sheet %q has no header row", sheet)}
	}

	columns := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		name := strings.TrimSpace(cell)
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		columns[i] = name
	}
	return columns, nil
}
