package features

import (
	"gonum.org/v1/gonum/mat"

	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

// Matrix is a dense feature matrix. Data is nil when there are no feature
// columns. Target is nil when the transformed table had no target column.
type Matrix struct {
	Names      []string
	Data       *mat.Dense
	Target     []float64
	TargetName string

	rows int
}

// Dims returns the row count and the number of feature columns.
func (m *Matrix) Dims() (int, int) {
	return m.rows, len(m.Names)
}

// Col returns a copy of the named feature column.
func (m *Matrix) Col(name string) ([]float64, bool) {
	for j, n := range m.Names {
		if n == name {
			return mat.Col(nil, j, m.Data), true
		}
	}
	return nil, false
}

// ToTable converts the matrix into an all-numeric table, target last when present.
func (m *Matrix) ToTable() (*table.Table, error) {
	t := table.New(m.rows)
	for j, name := range m.Names {
		if err := t.Append(table.NewNumeric(name, mat.Col(nil, j, m.Data), nil)); err != nil {
			return nil, ferrors.InputError("feature name collides with another column").
				WithContext("column", name).WithCause(err).Build()
		}
	}
	if m.Target != nil {
		if err := t.Append(table.NewNumeric(m.TargetName, append([]float64(nil), m.Target...), nil)); err != nil {
			return nil, ferrors.InputError("feature name collides with the target column").
				WithContext("column", m.TargetName).WithCause(err).Build()
		}
	}
	return t, nil
}
