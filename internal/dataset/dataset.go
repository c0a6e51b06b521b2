// Package dataset provides the typed, immutable table the analyzers work on.
//
// A Dataset is an ordered list of named columns sharing one row count. Every
// operation that derives data from a Dataset returns a new value; nothing in
// this package mutates a Dataset after construction.
package dataset

import (
	"fmt"
)

// Dataset is an ordered collection of equally long, uniquely named columns.
type Dataset struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New assembles a dataset from columns. Column names must be unique and all
// columns must have the same length.
func New(cols ...*Column) (*Dataset, error) {
	ds := &Dataset{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, &SchemaError{Reason: fmt.Sprintf("column %d is nil", i)}
		}
		if _, dup := ds.index[c.name]; dup {
			return nil, &SchemaError{Reason: fmt.Sprintf("duplicate column %q", c.name)}
		}
		if i == 0 {
			ds.rows = c.Len()
		} else if c.Len() != ds.rows {
			return nil, &SchemaError{Reason: fmt.Sprintf("column %q has %d rows, expected %d", c.name, c.Len(), ds.rows)}
		}
		ds.index[c.name] = i
		ds.cols = append(ds.cols, c)
	}
	return ds, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.rows }

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int { return len(d.cols) }

// Names returns the column names in schema order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.name
	}
	return out
}

// Kinds returns the column kinds in schema order.
func (d *Dataset) Kinds() []Kind {
	out := make([]Kind, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.kind
	}
	return out
}

// Has reports whether the dataset has a column with the given name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, &UnknownAttributeError{Name: name, Available: d.Names()}
	}
	return d.cols[i], nil
}

// Take returns a new dataset holding the given rows, in the given order.
// Row indices may repeat.
func (d *Dataset) Take(rows []int) *Dataset {
	out := &Dataset{index: make(map[string]int, len(d.cols)), rows: len(rows)}
	for i, c := range d.cols {
		out.cols = append(out.cols, c.take(rows))
		out.index[c.name] = i
	}
	return out
}

// Header returns the column names, suitable as a CSV header.
func (d *Dataset) Header() []string { return d.Names() }

// Record renders row i as strings in schema order.
func (d *Dataset) Record(i int) []string {
	rec := make([]string, len(d.cols))
	for j, c := range d.cols {
		rec[j] = c.String(i)
	}
	return rec
}

// Concat appends the rows of b to the rows of a. Both datasets must have
// the same column names and kinds in the same order.
func Concat(a, b *Dataset) (*Dataset, error) {
	if len(a.cols) != len(b.cols) {
		return nil, &SchemaError{Reason: fmt.Sprintf("cannot concat %d columns with %d columns", len(a.cols), len(b.cols))}
	}
	cols := make([]*Column, len(a.cols))
	for i, ca := range a.cols {
		cb := b.cols[i]
		if ca.name != cb.name || ca.kind != cb.kind {
			return nil, &SchemaError{Reason: fmt.Sprintf("column %d differs: %s(%s) vs %s(%s)", i, ca.name, ca.kind, cb.name, cb.kind)}
		}
		c := &Column{name: ca.name, kind: ca.kind}
		if ca.kind == Numeric {
			c.nums = make([]float64, 0, len(ca.nums)+len(cb.nums))
			c.nums = append(append(c.nums, ca.nums...), cb.nums...)
			if ca.raw != nil || cb.raw != nil {
				c.raw = make([]string, 0, len(c.nums))
				c.raw = append(append(c.raw, ca.rawStrings()...), cb.rawStrings()...)
			}
		} else {
			c.strs = make([]string, 0, len(ca.strs)+len(cb.strs))
			c.strs = append(append(c.strs, ca.strs...), cb.strs...)
		}
		cols[i] = c
	}
	return New(cols...)
}
