package spreadsheet

import (
	"fmt"

	"github.com/extrame/xls"
)

// readXLS decodes a legacy BIFF workbook. The format does not expose cell
// types through this reader, so every cell comes back as a string and the
// normalizer coerces numbers and years itself.
func readXLS(path, sheet string) (string, [][]Cell, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	names := make([]string, 0, wb.NumSheets())
	for i := 0; i < wb.NumSheets(); i++ {
		if s := wb.GetSheet(i); s != nil {
			names = append(names, s.Name)
		}
	}
	name, err := pickSheet(names, sheet)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}

	var ws *xls.WorkSheet
	for i := 0; i < wb.NumSheets(); i++ {
		if s := wb.GetSheet(i); s != nil && s.Name == name {
			ws = s
			break
		}
	}
	if ws == nil {
		return "", nil, fmt.Errorf("%w: %s: sheet %q", ErrUnreadable, path, name)
	}

	records := make([][]Cell, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]Cell, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = StringCell(row.Col(c))
		}
		records = append(records, cells)
	}
	return name, records, nil
}
