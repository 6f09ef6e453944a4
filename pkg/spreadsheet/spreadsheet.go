// Package spreadsheet decodes brand import files (.xlsx, .xls, .csv) into a
// header and an ordered list of typed rows.
package spreadsheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("empty file")
	ErrUnreadable        = errors.New("unreadable file")
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// Row is one data row. Row is the 1-based ordinal among data rows (the
// first row under the header is 1); Line is the physical line or sheet row
// number.
type Row struct {
	Row   int
	Line  int
	Cells []Cell
}

// Cell returns the cell at column i, or Empty when the row is shorter.
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r.Cells) {
		return Empty
	}
	return r.Cells[i]
}

func (r Row) blank() bool {
	for _, c := range r.Cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

type Table struct {
	Path   string
	Format Format
	Sheet  string
	Header []string
	Rows   []Row
}

type Options struct {
	// Sheet selects a worksheet by name for .xlsx/.xls files. The first
	// sheet is used when empty.
	Sheet string
}

// formats maps an extension to its decoder format and to the MIME types
// its content must descend from.
var formats = map[string]struct {
	format  Format
	lineage []string
}{
	".xlsx": {FormatXLSX, []string{"application/zip"}},
	".xlsm": {FormatXLSX, []string{"application/zip"}},
	".xls":  {FormatXLS, []string{"application/x-ole-storage"}},
	".csv":  {FormatCSV, []string{"text/plain"}},
}

// Load reads the file at path. Every error it returns wraps one of
// ErrFileNotFound, ErrUnsupportedFormat, ErrEmptyFile or ErrUnreadable;
// all of them prevent any row from being processed.
func Load(path string, opts Options) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	ff, ok := formats[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (expected .xlsx, .xls or .csv)", ErrUnsupportedFormat, ext)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	if !descendsFrom(mt, ff.lineage) {
		return nil, fmt.Errorf("%w: %s has %s content, not %s", ErrUnsupportedFormat, path, mt.String(), ff.format)
	}

	var raw [][]Cell
	var lines []int
	var sheet string
	switch ff.format {
	case FormatXLSX:
		sheet, raw, err = readXLSX(path, opts.Sheet)
	case FormatXLS:
		sheet, raw, err = readXLS(path, opts.Sheet)
	case FormatCSV:
		raw, lines, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}

	t, err := buildTable(raw, lines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	t.Format = ff.format
	t.Sheet = sheet
	return t, nil
}

func descendsFrom(mt *mimetype.MIME, lineage []string) bool {
	for m := mt; m != nil; m = m.Parent() {
		for _, want := range lineage {
			if m.Is(want) {
				return true
			}
		}
	}
	return false
}

// buildTable picks the first non-blank record as the header and numbers the
// remaining records. lines holds the physical line of each record; when nil
// the record index + 1 is used (sheet row numbers).
func buildTable(records [][]Cell, lines []int) (*Table, error) {
	lineOf := func(i int) int {
		if lines != nil && i < len(lines) {
			return lines[i]
		}
		return i + 1
	}

	headerAt := -1
	for i, rec := range records {
		if !(Row{Cells: rec}).blank() {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, fmt.Errorf("%w: missing header", ErrEmptyFile)
	}

	header := make([]string, len(records[headerAt]))
	for i, c := range records[headerAt] {
		header[i] = c.Text()
	}

	t := &Table{Header: header}
	for i := headerAt + 1; i < len(records); i++ {
		row := Row{
			Row:   i - headerAt,
			Line:  lineOf(i),
			Cells: records[i],
		}
		if row.blank() {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows found", ErrEmptyFile)
	}
	return t, nil
}
