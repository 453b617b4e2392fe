package table

import (
	"strconv"
	"strings"
)

// Kind discriminates the cell value types a Table can hold.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
	// KindUndefined marks a derived numeric result that exists but has no
	// usable value (a growth rate whose denominator was zero). Loaders never
	// produce it; only derived columns carry it.
	KindUndefined
)

// Value is one table cell: a number, a string, null, or undefined.
// The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Num returns a numeric cell.
func Num(f float64) Value { return Value{kind: KindNumber, num: f} }

// Str returns a string cell.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Null returns a missing cell.
func Null() Value { return Value{} }

// Undefined returns the sentinel for an unrepresentable derived value.
func Undefined() Value { return Value{kind: KindUndefined} }

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// Number returns the cell as a float64; ok is false for non-numeric cells.
func (v Value) Number() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text returns the cell as a string; ok is false for non-string cells.
func (v Value) Text() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// String renders the cell for display and CSV output. Null renders empty,
// undefined renders "undefined", numbers render without exponent notation.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	case KindUndefined:
		return "undefined"
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	default:
		return true
	}
}

// Compare imposes a total order used when sorting rows: null sorts first,
// then undefined, then numbers by magnitude, then strings lexicographically.
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		if rank(v.kind) < rank(o.kind) {
			return -1
		}
		return 1
	}
	switch v.kind {
	case KindNumber:
		switch {
		case v.num < o.num:
			return -1
		case v.num > o.num:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(v.str, o.str)
	default:
		return 0
	}
}

func rank(k Kind) int {
	switch k {
	case KindNull:
		return 0
	case KindUndefined:
		return 1
	case KindNumber:
		return 2
	default:
		return 3
	}
}

// Row maps column names to cell values. Rows held by a Table are shared
// between derived Tables and must be treated as read-only; transforms that
// change a row copy it first (see Table.WithColumn).
type Row map[string]Value

// Table is an ordered sequence of rows over one shared column set.
// Pipeline stages never mutate a Table they receive; every transform
// produces a new Table (filters share the underlying rows, column-adding
// transforms copy them).
type Table struct {
	name string
	cols []string
	rows []Row
}

// New returns an empty table with the given display name and column order.
func New(name string, cols []string) *Table {
	return &Table{name: name, cols: append([]string(nil), cols...)}
}

func (t *Table) Name() string { return t.name }

// Columns returns the column names in order. The slice is a copy.
func (t *Table) Columns() []string { return append([]string(nil), t.cols...) }

func (t *Table) NumRows() int { return len(t.rows) }
func (t *Table) NumCols() int { return len(t.cols) }

// HasColumn reports whether name is part of the table's column set.
// Matching is exact; resolution across naming conventions is Resolve's job.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.cols {
		if c == name {
			return true
		}
	}
	return false
}

// Row returns row i. The map is shared with the table; callers must not
// modify it.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Value returns the cell at row i and the given column; missing columns
// read as null.
func (t *Table) Value(i int, col string) Value { return t.rows[i][col] }

// AppendRow adds a row during table construction. Cells for columns absent
// from the row are left null; keys outside the column set are ignored by
// all readers.
func (t *Table) AppendRow(r Row) { t.rows = append(t.rows, r) }

// WithRows derives a new table with the same name and columns over the given
// rows. Row maps are shared, which is safe under the read-only discipline.
func (t *Table) WithRows(rows []Row) *Table {
	return &Table{name: t.name, cols: t.cols, rows: rows}
}

// WithColumn derives a new table carrying one extra column whose cells come
// from vals (one per row, in order). Every row map is copied so the input
// table and its rows stay untouched. A column that already exists is
// replaced in place of being duplicated.
func (t *Table) WithColumn(name string, vals []Value) *Table {
	cols := t.cols
	if !t.HasColumn(name) {
		cols = append(append([]string(nil), t.cols...), name)
	}
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		nr := make(Row, len(r)+1)
		for k, v := range r {
			nr[k] = v
		}
		if i < len(vals) {
			nr[name] = vals[i]
		}
		rows[i] = nr
	}
	return &Table{name: t.name, cols: cols, rows: rows}
}
