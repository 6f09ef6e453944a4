package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV returns the records of a CSV file as string cells along with the
// line each record starts on. French spreadsheet exports are commonly
// semicolon separated and Windows-1252 encoded; both are handled.
func readCSV(path string) ([][]Cell, []int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	if !utf8.Valid(raw) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: invalid encoding: %v", ErrUnreadable, path, err)
		}
		raw = decoded
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.Comma = detectDelimiter(raw)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]Cell
	var lines []int
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
		}
		line, _ := r.FieldPos(0)
		cells := make([]Cell, len(rec))
		for i, v := range rec {
			cells[i] = StringCell(v)
		}
		records = append(records, cells)
		lines = append(lines, line)
	}
	return records, lines, nil
}

// detectDelimiter looks at the first non-blank line and picks whichever of
// ';', ',' or tab occurs most often outside quotes. Ties go to ','.
func detectDelimiter(raw []byte) rune {
	line := firstNonBlankLine(raw)
	counts := map[rune]int{}
	inQuotes := false
	for _, r := range string(line) {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case r == ';' || r == ',' || r == '\t':
			counts[r]++
		}
	}
	best := ','
	for _, cand := range []rune{';', '\t'} {
		if counts[cand] > counts[best] {
			best = cand
		}
	}
	return best
}

func firstNonBlankLine(raw []byte) []byte {
	for len(raw) > 0 {
		i := bytes.IndexByte(raw, '\n')
		var line []byte
		if i < 0 {
			line, raw = raw, nil
		} else {
			line, raw = raw[:i], raw[i+1:]
		}
		if len(bytes.TrimSpace(line)) > 0 {
			return line
		}
	}
	return nil
}
