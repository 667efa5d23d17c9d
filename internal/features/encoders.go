package features

import (
	"math"

	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"github.com/Deshan-5/house-price-ml/internal/config"
	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

// Standardizer rescales one numeric column to zero mean and unit variance.
type Standardizer struct {
	Column string  `json:"column"`
	Mean   float64 `json:"mean"`
	Scale  float64 `json:"scale"`
	// Constant marks a column with zero variance at fit time; Scale is 1.
	Constant bool `json:"constant,omitempty"`
}

// FitStandardizer computes the mean and population standard deviation of col.
func FitStandardizer(col *table.Column, policy config.ZeroVariancePolicy) (Standardizer, error) {
	s := Standardizer{Column: col.Name}
	values := col.Floats
	if len(values) == 0 {
		return s, ferrors.InputError("cannot fit a column without rows").WithContext("column", col.Name).Build()
	}
	if constant(values) {
		if policy == config.ZeroVarianceFail {
			return s, ferrors.StatisticError("numeric column has zero variance").
				WithContext("column", col.Name).Build()
		}
		s.Mean, s.Scale, s.Constant = values[0], 1, true
		return s, nil
	}
	s.Mean, s.Scale = stat.PopMeanStdDev(values, nil)
	if !finite(s.Mean) || !finite(s.Scale) {
		return s, ferrors.StatisticError("numeric column mean or standard deviation overflows").
			WithContext("column", col.Name).Build()
	}
	return s, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// Apply standardizes a single value.
func (s Standardizer) Apply(v float64) float64 {
	return (v - s.Mean) / s.Scale
}

// OneHotEncoder expands one categorical column into indicator columns, one per
// category seen at fit time, in order of first appearance.
type OneHotEncoder struct {
	Column     string   `json:"column"`
	Categories []string `json:"categories"`
}

// FitOneHotEncoder collects the vocabulary of col.
func FitOneHotEncoder(col *table.Column) OneHotEncoder {
	e := OneHotEncoder{Column: col.Name}
	seen := make(map[string]bool)
	for _, v := range col.Strings {
		if !seen[v] {
			seen[v] = true
			e.Categories = append(e.Categories, v)
		}
	}
	return e
}

// Names returns the indicator column names, <column>_<category>.
func (e OneHotEncoder) Names() []string {
	names := make([]string, len(e.Categories))
	for i, c := range e.Categories {
		names[i] = e.Column + "_" + c
	}
	return names
}

// Encode returns one indicator vector per category over values. A value not
// seen at fit time is 0 in every vector.
func (e OneHotEncoder) Encode(values []string) ([][]float64, error) {
	s := series.Strings(values)
	out := make([][]float64, len(e.Categories))
	for k, c := range e.Categories {
		ind := s.Compare(series.CompFunc, func(el series.Element) bool { return el.String() == c })
		if ind.Err != nil {
			return nil, ferrors.InternalError("failed to encode categorical column").
				WithContext("column", e.Column).WithCause(ind.Err).Build()
		}
		out[k] = ind.Float()
	}
	return out, nil
}
