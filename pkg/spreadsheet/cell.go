package spreadsheet

import (
	"strconv"
	"strings"
	"time"
)

// CellKind tells which field of a Cell holds its value.
type CellKind int

const (
	KindEmpty CellKind = iota
	KindString
	KindNumber
	KindDate
)

func (k CellKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "empty"
	}
}

// Cell is a decoded spreadsheet value. Exactly one of Str, Num or Time is
// meaningful, as selected by Kind.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Time time.Time
}

// Empty is the zero Cell.
var Empty = Cell{}

// StringCell trims v and returns Empty when nothing is left.
func StringCell(v string) Cell {
	v = strings.TrimSpace(v)
	if v == "" {
		return Empty
	}
	return Cell{Kind: KindString, Str: v}
}

func NumberCell(v float64) Cell {
	return Cell{Kind: KindNumber, Num: v}
}

func DateCell(t time.Time) Cell {
	return Cell{Kind: KindDate, Time: t.UTC()}
}

func (c Cell) IsEmpty() bool { return c.Kind == KindEmpty }

// Text renders the cell the way an operator would read it in the sheet.
// Integral numbers are printed without a decimal part.
func (c Cell) Text() string {
	switch c.Kind {
	case KindString:
		return c.Str
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case KindDate:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 {
			return c.Time.Format("2006-01-02")
		}
		return c.Time.Format(time.RFC3339)
	default:
		return ""
	}
}
