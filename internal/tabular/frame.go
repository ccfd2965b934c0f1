// Package tabular implements the in-memory tabular batch that flows through
// the ingestion pipeline. Cells are held as strings exactly as read from the
// CSV; numeric access coerces on demand, yielding NaN for malformed text
// rather than failing.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// Frame is an ordered set of named columns over string cells.
type Frame struct {
	cols  []string
	index map[string]int
	rows  [][]string
}

// New creates an empty Frame with the given column headers. Duplicate
// headers keep the first occurrence's index.
func New(cols []string) *Frame {
	f := &Frame{cols: append([]string(nil), cols...), index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if _, ok := f.index[c]; !ok {
			f.index[c] = i
		}
	}
	return f
}

// ReadCSV parses CSV content into a Frame. Short rows are padded with empty
// cells; long rows are truncated to the header width.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	f := New(header)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row %d: %w", len(f.rows)+2, err)
		}
		row := make([]string, len(header))
		copy(row, rec)
		f.rows = append(f.rows, row)
	}
	return f, nil
}

// Columns returns the column headers in order.
func (f *Frame) Columns() []string { return append([]string(nil), f.cols...) }

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// Has reports whether a column exists.
func (f *Frame) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// Cell returns the raw cell value, or "" if the column does not exist.
func (f *Frame) Cell(row int, col string) string {
	i, ok := f.index[col]
	if !ok || i >= len(f.rows[row]) {
		return ""
	}
	return f.rows[row][i]
}

// SetCell writes a raw cell value. No-op if the column does not exist.
func (f *Frame) SetCell(row int, col, val string) {
	if i, ok := f.index[col]; ok && i < len(f.rows[row]) {
		f.rows[row][i] = val
	}
}

// Float coerces a cell to float64. Missing columns, empty cells, and
// malformed text all yield NaN.
func (f *Frame) Float(row int, col string) float64 {
	s := strings.TrimSpace(f.Cell(row, col))
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// RenameColumns rewrites headers through the given lookup. Headers absent
// from the lookup pass through unchanged.
func (f *Frame) RenameColumns(lookup map[string]string) {
	index := make(map[string]int, len(f.cols))
	for i, c := range f.cols {
		if canonical, ok := lookup[c]; ok {
			f.cols[i] = canonical
		}
		if _, dup := index[f.cols[i]]; !dup {
			index[f.cols[i]] = i
		}
	}
	f.index = index
}

// AddColumn appends a column of raw values. vals must have Len() entries.
func (f *Frame) AddColumn(col string, vals []string) error {
	if len(vals) != len(f.rows) {
		return fmt.Errorf("column %s: %d values for %d rows", col, len(vals), len(f.rows))
	}
	if f.Has(col) {
		for i, v := range vals {
			f.SetCell(i, col, v)
		}
		return nil
	}
	f.index[col] = len(f.cols)
	f.cols = append(f.cols, col)
	for i := range f.rows {
		f.rows[i] = append(f.rows[i], vals[i])
	}
	return nil
}

// AddFloatColumn appends a numeric column, formatting NaN as "NaN".
func (f *Frame) AddFloatColumn(col string, vals []float64) error {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = FormatFloat(v)
	}
	return f.AddColumn(col, out)
}

// Filter returns a new Frame containing the rows for which keep returns
// true. Column order is preserved; the receiver is unchanged.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	out := New(f.cols)
	for i := range f.rows {
		if keep(i) {
			row := make([]string, len(f.rows[i]))
			copy(row, f.rows[i])
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// FormatFloat renders a float the way cells are stored.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// dateLayouts are the accepted observation date formats, in match order.
var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006/1/2"}

// ParseDate parses an observation date cell. Returns the zero time and
// false when the cell is empty or unparseable.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateBounds returns the min and max parseable dates in the named column.
// ok is false when no row has a parseable date.
func (f *Frame) DateBounds(col string) (min, max time.Time, ok bool) {
	for i := 0; i < f.Len(); i++ {
		t, parsed := ParseDate(f.Cell(i, col))
		if !parsed {
			continue
		}
		if !ok || t.Before(min) {
			min = t
		}
		if !ok || t.After(max) {
			max = t
		}
		ok = true
	}
	return min, max, ok
}
