package table

import "slices"

// Column is a single named, typed column.
//
// Exactly one of Floats or Strings is populated, depending on Kind. Missing is
// either nil (nothing missing) or has the same length as the values slice; the
// value stored at a missing position is meaningless.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
	Missing []bool
}

// NewNumeric creates a numeric column. missing may be nil.
func NewNumeric(name string, values []float64, missing []bool) *Column {
	return &Column{Name: name, Kind: Numeric, Floats: values, Missing: missing}
}

// NewCategorical creates a categorical column. missing may be nil.
func NewCategorical(name string, values []string, missing []bool) *Column {
	return &Column{Name: name, Kind: Categorical, Strings: values, Missing: missing}
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	if c.Kind == Numeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// IsMissing reports whether row i is missing.
func (c *Column) IsMissing(i int) bool {
	return c.Missing != nil && c.Missing[i]
}

// MissingCount returns the number of missing rows.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// Present returns the numeric values that are not missing, in row order.
func (c *Column) Present() []float64 {
	if c.Missing == nil {
		return slices.Clone(c.Floats)
	}
	out := make([]float64, 0, len(c.Floats))
	for i, v := range c.Floats {
		if !c.Missing[i] {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	return &Column{
		Name:    c.Name,
		Kind:    c.Kind,
		Floats:  slices.Clone(c.Floats),
		Strings: slices.Clone(c.Strings),
		Missing: slices.Clone(c.Missing),
	}
}
