// Package frame provides the column-oriented table that every data source
// returns, and the adapter that turns it into row-oriented JSON.
//
// A Frame is the Go stand-in for the data.frame the AFL data packages
// return: named columns of equal length, values of mixed scalar types, with
// explicit missing values (NA) and categorical columns (Factor).
package frame

import "fmt"

// naType marks a missing value.
type naType struct{}

func (naType) String() string { return "NA" }

// NA is the missing-value marker. Columns may also hold plain nil.
var NA = naType{}

// IsNA reports whether v is a missing value.
func IsNA(v any) bool {
	if v == nil {
		return true
	}
	_, ok := v.(naType)
	return ok
}

// Factor is a categorical value: an index into Levels. A negative Code is NA.
type Factor struct {
	Code   int
	Levels []string
}

// Label returns the level for the factor code, and false when the value is
// missing or the code is out of range.
func (f Factor) Label() (string, bool) {
	if f.Code < 0 || f.Code >= len(f.Levels) {
		return "", false
	}
	return f.Levels[f.Code], true
}

// Frame is a named, ordered, column-oriented table.
type Frame struct {
	names []string
	cols  map[string][]any
	nrow  int
}

// New returns an empty frame.
func New() *Frame {
	return &Frame{cols: make(map[string][]any)}
}

// AddColumn appends a column. The first column fixes the row count; every
// later column must match it. Re-adding an existing name replaces the values
// in place and keeps the column position.
func (f *Frame) AddColumn(name string, values []any) error {
	_, exists := f.cols[name]
	if exists && len(f.names) == 1 {
		f.cols[name] = values
		f.nrow = len(values)
		return nil
	}
	if len(f.names) > 0 && len(values) != f.nrow {
		return fmt.Errorf("column %q has %d values, frame has %d rows", name, len(values), f.nrow)
	}
	if !exists {
		f.names = append(f.names, name)
	}
	f.cols[name] = values
	f.nrow = len(values)
	return nil
}

// Names returns the column names in frame order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// NCol returns the number of columns.
func (f *Frame) NCol() int { return len(f.names) }

// NRow returns the number of rows.
func (f *Frame) NRow() int { return f.nrow }

// Column returns the raw values of a column.
func (f *Frame) Column(name string) ([]any, bool) {
	v, ok := f.cols[name]
	return v, ok
}

// Value returns the raw value at (row, column), or NA when either is unknown.
func (f *Frame) Value(row int, name string) any {
	col, ok := f.cols[name]
	if !ok || row < 0 || row >= len(col) {
		return NA
	}
	return col[row]
}

// Row returns a single row as column name → normalised value.
func (f *Frame) Row(i int) map[string]any {
	row := make(map[string]any, len(f.names))
	for _, name := range f.names {
		row[name] = Normalize(f.Value(i, name))
	}
	return row
}

// Filter returns a new frame holding only the rows for which keep returns true.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	var idx []int
	for i := 0; i < f.nrow; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	out := New()
	for _, name := range f.names {
		src := f.cols[name]
		vals := make([]any, len(idx))
		for j, i := range idx {
			vals[j] = src[i]
		}
		_ = out.AddColumn(name, vals)
	}
	return out
}

// Bind stacks frames row-wise. Columns are the union of all inputs in
// first-seen order; cells a frame does not have are NA.
func Bind(frames ...*Frame) *Frame {
	out := New()
	total := 0
	for _, fr := range frames {
		if fr == nil {
			continue
		}
		for _, name := range fr.names {
			if _, ok := out.cols[name]; !ok {
				out.names = append(out.names, name)
				out.cols[name] = nil
			}
		}
		total += fr.nrow
	}
	for _, name := range out.names {
		vals := make([]any, 0, total)
		for _, fr := range frames {
			if fr == nil {
				continue
			}
			col, ok := fr.cols[name]
			if !ok {
				for i := 0; i < fr.nrow; i++ {
					vals = append(vals, NA)
				}
				continue
			}
			vals = append(vals, col...)
		}
		out.cols[name] = vals
	}
	out.nrow = total
	return out
}

// WithConstant returns f with an extra column holding v in every row.
func (f *Frame) WithConstant(name string, v any) *Frame {
	vals := make([]any, f.nrow)
	for i := range vals {
		vals[i] = v
	}
	_ = f.AddColumn(name, vals)
	return f
}
