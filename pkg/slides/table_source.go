package slides

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// TableSource points a table record at a spreadsheet. The first row of the
// sheet becomes the headers, the remaining rows the data.
type TableSource struct {
	Workbook string `json:"workbook" yaml:"workbook"`
	// Sheet defaults to the active sheet of the workbook
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
}

// LoadTableSource reads headers and rows from an XLSX sheet. Relative
// workbook paths are resolved against baseDir.
func LoadTableSource(src TableSource, baseDir string) ([]Cell, [][]Cell, error) {
	if src.Workbook == "" {
		return nil, nil, fmt.Errorf("table source has no workbook")
	}

	path := src.Workbook
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, NewDocumentError("open workbook", path, err)
	}
	defer f.Close()

	sheet := src.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, NewDocumentError("read sheet", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, NewDocumentError("read sheet", sheet, fmt.Errorf("sheet is empty"))
	}

	headers := Cells(rows[0]...)
	data := make([][]Cell, 0, len(rows)-1)
	for _, row := range rows[1:] {
		data = append(data, Cells(row...))
	}
	return headers, data, nil
}

// ResolveTableSources fills headers and rows of table records that have a
// Source and no inline headers. Other records are returned unchanged.
func ResolveTableSources(records []Record, baseDir string) ([]Record, error) {
	out := make([]Record, len(records))
	for i, record := range records {
		table, ok := record.(TableRecord)
		if !ok || table.Source == nil || len(table.Headers) > 0 {
			out[i] = record
			continue
		}

		headers, rows, err := LoadTableSource(*table.Source, baseDir)
		if err != nil {
			return nil, NewRecordError(i, string(KindTable), "failed to load table source", err)
		}
		table.Headers = headers
		table.Rows = rows
		out[i] = table
	}
	return out, nil
}
