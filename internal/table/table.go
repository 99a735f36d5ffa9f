// Package table defines the in-memory tabular model shared by the decoders,
// the merge core, and the publishers.
//
// A Table is an ordered list of column names plus an ordered list of rows.
// Every row has exactly len(Columns) cells. A cell holds one of:
//
//	nil, string, float64, int64, bool, time.Time
//
// nil and "" are both treated as "no value" by the merge core and are
// rendered as an empty cell by the publishers.
package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Table is a named, column-ordered grid of scalar cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// New returns an empty table with a private copy of columns.
func New(name string, columns []string) *Table {
	return &Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
	}
}

// FromRecords builds a table from row maps. Keys not present in columns are
// ignored; missing keys become nil cells.
func FromRecords(name string, columns []string, recs []map[string]any) *Table {
	t := New(name, columns)
	for _, rec := range recs {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = rec[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Append adds a row, padding with nil or truncating to the table width.
func (t *Table) Append(cells ...any) {
	row := make([]any, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows. A nil table has zero rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Width returns the number of columns. A nil table has zero columns.
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Index returns the position of the column with the exact name, or -1.
func (t *Table) Index(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the values of the named column, or nil if the
// column does not exist.
func (t *Table) Column(name string) []any {
	idx := t.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// Cell returns the value at row r of the named column.
func (t *Table) Cell(r int, column string) (any, bool) {
	idx := t.Index(column)
	if idx < 0 || r < 0 || r >= t.Len() {
		return nil, false
	}
	return t.Rows[r][idx], true
}

// Clone returns a deep copy of the grid. Cell values are scalars and are
// shared.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := New(t.Name, t.Columns)
	out.Rows = make([][]any, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]any(nil), row...)
	}
	return out
}

// Records returns every row as a column-name keyed map.
func (t *Table) Records() []map[string]any {
	if t == nil {
		return nil
	}
	out := make([]map[string]any, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for j, c := range t.Columns {
			m[c] = row[j]
		}
		out[i] = m
	}
	return out
}

// Head returns a table holding at most n leading rows.
func (t *Table) Head(n int) *Table {
	if t == nil {
		return nil
	}
	if n > len(t.Rows) || n < 0 {
		n = len(t.Rows)
	}
	out := New(t.Name, t.Columns)
	out.Rows = make([][]any, n)
	for i := 0; i < n; i++ {
		out.Rows[i] = append([]any(nil), t.Rows[i]...)
	}
	return out
}

// IsEmpty reports whether v counts as "no value".
func IsEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}

// Text renders a cell the way a spreadsheet cell would display it.
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
