package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the value type held by a column.
type Kind int

const (
	Categorical Kind = iota
	Numeric
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is an immutable, named sequence of values of a single kind.
// Missing cells are NaN in numeric columns and "" in categorical ones.
// Numeric columns read from records keep the source text of every cell in
// raw, so rendering returns exactly what was read.
type Column struct {
	name string
	kind Kind
	nums []float64
	strs []string
	raw  []string
}

// NumericColumn builds a numeric column from a copy of vals.
func NumericColumn(name string, vals []float64) *Column {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	return &Column{name: name, kind: Numeric, nums: cp}
}

// CategoricalColumn builds a categorical column from a copy of vals.
func CategoricalColumn(name string, vals []string) *Column {
	cp := make([]string, len(vals))
	copy(cp, vals)
	return &Column{name: name, kind: Categorical, strs: cp}
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.kind == Numeric {
		return len(c.nums)
	}
	return len(c.strs)
}

// Missing reports whether row i holds no value.
func (c *Column) Missing(i int) bool {
	if c.kind == Numeric {
		return math.IsNaN(c.nums[i])
	}
	return c.strs[i] == ""
}

// Key returns the categorical key of row i. Numeric values are formatted in
// their shortest exact form, so 1.0 and 1 share the key "1".
func (c *Column) Key(i int) (string, bool) {
	if c.Missing(i) {
		return "", false
	}
	if c.kind == Numeric {
		return formatFloat(c.nums[i]), true
	}
	return c.strs[i], true
}

// Float returns the numeric value of row i; false for categorical columns
// and missing cells.
func (c *Column) Float(i int) (float64, bool) {
	if c.kind != Numeric || math.IsNaN(c.nums[i]) {
		return 0, false
	}
	return c.nums[i], true
}

// String renders row i for display and export. Numeric cells read from
// records render as their source text. Missing cells render empty.
func (c *Column) String(i int) string {
	if c.raw != nil {
		return c.raw[i]
	}
	k, _ := c.Key(i)
	return k
}

// NormalizeKey maps a user supplied label into the key space of the column.
func (c *Column) NormalizeKey(label string) string {
	label = strings.TrimSpace(label)
	if c.kind != Numeric {
		return label
	}
	if f, err := strconv.ParseFloat(label, 64); err == nil {
		return formatFloat(f)
	}
	return label
}

// Floats returns a copy of the numeric values.
func (c *Column) Floats() ([]float64, error) {
	if c.kind != Numeric {
		return nil, &KindMismatchError{Column: c.name, Want: Numeric, Have: c.kind}
	}
	out := make([]float64, len(c.nums))
	copy(out, c.nums)
	return out, nil
}

// Strings returns a copy of the categorical values.
func (c *Column) Strings() ([]string, error) {
	if c.kind != Categorical {
		return nil, &KindMismatchError{Column: c.name, Want: Categorical, Have: c.kind}
	}
	out := make([]string, len(c.strs))
	copy(out, c.strs)
	return out, nil
}

func (c *Column) take(rows []int) *Column {
	out := &Column{name: c.name, kind: c.kind}
	if c.kind == Numeric {
		out.nums = make([]float64, len(rows))
		for i, r := range rows {
			out.nums[i] = c.nums[r]
		}
		if c.raw != nil {
			out.raw = make([]string, len(rows))
			for i, r := range rows {
				out.raw[i] = c.raw[r]
			}
		}
		return out
	}
	out.strs = make([]string, len(rows))
	for i, r := range rows {
		out.strs[i] = c.strs[r]
	}
	return out
}

// rawStrings returns the rendered text of every row.
func (c *Column) rawStrings() []string {
	if c.raw != nil {
		return c.raw
	}
	out := make([]string, c.Len())
	for i := range out {
		out[i] = c.String(i)
	}
	return out
}

// formatFloat renders f in its shortest exact form without an exponent.
func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
