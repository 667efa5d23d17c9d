package table

import (
	"fmt"
	"slices"
)

// Table is an ordered collection of equally long columns.
type Table struct {
	rows  int
	cols  []*Column
	index map[string]int
}

// New creates an empty table whose columns must all have the given row count.
func New(rows int) *Table {
	return &Table{rows: rows, index: make(map[string]int)}
}

// FromColumns builds a table from columns, validating lengths and names.
func FromColumns(cols ...*Column) (*Table, error) {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	t := New(rows)
	for _, c := range cols {
		if err := t.Append(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Rows returns the row count.
func (t *Table) Rows() int { return t.rows }

// Cols returns the column count.
func (t *Table) Cols() int { return len(t.cols) }

// Shape returns rows and columns.
func (t *Table) Shape() (int, int) { return t.rows, len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order. The slice is a copy; the columns are shared.
func (t *Table) Columns() []*Column { return slices.Clone(t.cols) }

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Has reports whether a column with the given name exists.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Append adds c as the last column.
func (t *Table) Append(c *Column) error {
	if c == nil {
		return fmt.Errorf("append nil column")
	}
	if !c.Kind.Valid() {
		return fmt.Errorf("column %q has invalid kind %q", c.Name, c.Kind)
	}
	if _, dup := t.index[c.Name]; dup {
		return fmt.Errorf("duplicate column %q", c.Name)
	}
	if c.Len() != t.rows {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.rows)
	}
	if c.Missing != nil && len(c.Missing) != t.rows {
		return fmt.Errorf("column %q missing mask has %d rows, table has %d", c.Name, len(c.Missing), t.rows)
	}
	t.index[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// Remove detaches the named column and returns it.
func (t *Table) Remove(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	c := t.cols[i]
	t.cols = slices.Delete(t.cols, i, i+1)
	t.reindex()
	return c, true
}

// ByKind returns the columns of kind k in table order.
func (t *Table) ByKind(k Kind) []*Column {
	var out []*Column
	for _, c := range t.cols {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// MissingCells counts missing cells over all columns.
func (t *Table) MissingCells() int {
	n := 0
	for _, c := range t.cols {
		n += c.MissingCount()
	}
	return n
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.rows)
	for _, c := range t.cols {
		out.cols = append(out.cols, c.Clone())
	}
	out.reindex()
	return out
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		t.index[c.Name] = i
	}
}
