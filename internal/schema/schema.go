// Package schema declares which columns of the housing table are numeric and
// which are categorical.
//
// Kinds are declared up front in configuration. Columns the configuration does not
// mention are resolved exactly once, when the raw file is loaded, and the result is
// persisted next to the processed table so later stages never guess again.
package schema

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Deshan-5/house-price-ml/internal/config"
	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

// Schema is the declared shape of a table.
type Schema struct {
	ID       string
	Target   string
	Strict   bool
	Declared map[string]table.Kind
}

// FromConfig builds the declared schema from the configuration section.
func FromConfig(c config.SchemaConfig) Schema {
	s := Schema{
		ID:       CanonicalName(c.IDColumn),
		Target:   CanonicalName(c.TargetColumn),
		Strict:   c.Strict,
		Declared: make(map[string]table.Kind, len(c.Columns)),
	}
	for name, kind := range c.Columns {
		s.Declared[CanonicalName(name)] = kind
	}
	return s
}

// CanonicalName trims and NFC-normalizes a column name so that visually identical
// headers written by different tools compare equal.
func CanonicalName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// Sample is the raw text of one column as read from disk.
type Sample struct {
	Name    string
	Cells   []string
	Missing []bool
}

// Field is one resolved column.
type Field struct {
	Name     string     `yaml:"name"`
	Kind     table.Kind `yaml:"kind"`
	Inferred bool       `yaml:"inferred,omitempty"`
}

// Resolved is the concrete, ordered schema of a loaded table.
type Resolved struct {
	ID     string  `yaml:"id_column,omitempty"`
	Target string  `yaml:"target_column"`
	Fields []Field `yaml:"columns"`
}

// Resolve assigns a kind to every sampled column.
//
// Declared kinds always win. The target is numeric. Undeclared columns are an
// error in strict mode (the identifier excepted); otherwise a column is numeric
// iff every present cell parses as a finite number. A column with no present
// cells at all is numeric.
func (s Schema) Resolve(samples []Sample) (*Resolved, error) {
	r := &Resolved{ID: s.ID, Target: s.Target, Fields: make([]Field, 0, len(samples))}
	for _, smp := range samples {
		name := smp.Name
		if name == s.Target {
			r.Fields = append(r.Fields, Field{Name: name, Kind: table.Numeric})
			continue
		}
		if kind, ok := s.Declared[name]; ok {
			r.Fields = append(r.Fields, Field{Name: name, Kind: kind})
			continue
		}
		if s.Strict && name != s.ID {
			return nil, ferrors.ConfigError("column not declared in strict schema").
				WithContext("column", name).Build()
		}
		r.Fields = append(r.Fields, Field{Name: name, Kind: InferKind(smp.Cells, smp.Missing), Inferred: true})
	}
	return r, nil
}

// InferKind applies the resolution rule for undeclared columns.
func InferKind(cells []string, missing []bool) table.Kind {
	for i, c := range cells {
		if missing != nil && missing[i] {
			continue
		}
		if _, ok := ParseNumber(c); !ok {
			return table.Categorical
		}
	}
	return table.Numeric
}

// ParseNumber parses a finite float64 cell value.
func ParseNumber(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Kind returns the kind of the named column.
func (r *Resolved) Kind(name string) (table.Kind, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Kind, true
		}
	}
	return "", false
}

// Names returns the column names in file order.
func (r *Resolved) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Inferred returns the names of columns whose kind was inferred.
func (r *Resolved) Inferred() []string {
	var out []string
	for _, f := range r.Fields {
		if f.Inferred {
			out = append(out, f.Name)
		}
	}
	return out
}

// Without returns a copy of r without the named columns.
func (r *Resolved) Without(names ...string) *Resolved {
	out := &Resolved{ID: r.ID, Target: r.Target}
	for _, f := range r.Fields {
		if !slices.Contains(names, f.Name) {
			out.Fields = append(out.Fields, f)
		}
	}
	return out
}

// Declared turns a resolved schema back into a strict declared schema, which
// is how downstream stages load artifacts written by upstream ones.
func (r *Resolved) Declared() Schema {
	s := Schema{ID: r.ID, Target: r.Target, Strict: true, Declared: make(map[string]table.Kind, len(r.Fields))}
	for _, f := range r.Fields {
		s.Declared[f.Name] = f.Kind
	}
	return s
}

// FromTable describes an in-memory table.
func FromTable(t *table.Table, id, target string) *Resolved {
	r := &Resolved{ID: id, Target: target}
	for _, c := range t.Columns() {
		r.Fields = append(r.Fields, Field{Name: c.Name, Kind: c.Kind})
	}
	return r
}
