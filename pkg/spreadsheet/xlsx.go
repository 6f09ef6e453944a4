package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Built-in number formats that render a date or a time.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 30: true, 36: true, 45: true, 46: true, 47: true, 50: true, 57: true,
}

type xlsxReader struct {
	f         *excelize.File
	sheet     string
	dateStyle map[int]bool
	date1904  bool
}

func readXLSX(path, sheet string) (string, [][]Cell, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	defer func() { _ = f.Close() }()

	name, err := pickSheet(f.GetSheetList(), sheet)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: sheet %q: %v", ErrUnreadable, path, name, err)
	}

	x := &xlsxReader{f: f, sheet: name, dateStyle: map[int]bool{}}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		x.date1904 = *props.Date1904
	}

	records := make([][]Cell, len(rows))
	for r, rec := range rows {
		cells := make([]Cell, len(rec))
		for c, raw := range rec {
			cells[c] = x.cell(c+1, r+1, raw)
		}
		records[r] = cells
	}
	return name, records, nil
}

// cell types a raw value. Numbers stored without an explicit type are the
// common case, so an unset type is treated like a number when it parses.
func (x *xlsxReader) cell(col, row int, raw string) Cell {
	if strings.TrimSpace(raw) == "" {
		return Empty
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return StringCell(raw)
	}
	typ, err := x.f.GetCellType(x.sheet, ref)
	if err != nil {
		return StringCell(raw)
	}

	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return StringCell(raw)
		}
		if x.isDate(ref) {
			if t, err := excelize.ExcelDateToTime(n, x.date1904); err == nil {
				return DateCell(t)
			}
		}
		return NumberCell(n)
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
				return DateCell(t)
			}
		}
		return StringCell(raw)
	case excelize.CellTypeBool:
		if raw == "1" {
			return StringCell("true")
		}
		return StringCell("false")
	default:
		return StringCell(raw)
	}
}

func (x *xlsxReader) isDate(ref string) bool {
	idx, err := x.f.GetCellStyle(x.sheet, ref)
	if err != nil || idx == 0 {
		return false
	}
	if v, ok := x.dateStyle[idx]; ok {
		return v
	}
	v := false
	if st, err := x.f.GetStyle(idx); err == nil && st != nil {
		if st.CustomNumFmt != nil {
			v = isDateLayout(*st.CustomNumFmt)
		} else {
			v = builtinDateFormats[st.NumFmt]
		}
	}
	x.dateStyle[idx] = v
	return v
}

// isDateLayout reports whether a custom number format renders a calendar
// date: it mentions a day or a year outside quoted literals and brackets.
func isDateLayout(layout string) bool {
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(layout) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case r == 'y' || r == 'd':
			return true
		}
	}
	return false
}

func pickSheet(names []string, want string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("%w: workbook has no sheets", ErrEmptyFile)
	}
	if want == "" {
		return names[0], nil
	}
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), strings.TrimSpace(want)) {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: sheet %q not found (available: %s)", ErrUnreadable, want, strings.Join(names, ", "))
}
