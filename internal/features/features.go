// Package features fits and applies the feature transform: numeric columns are
// standardized, categorical columns are one-hot encoded, and the target is
// carried through as the final column.
//
// Fitting and applying are separate steps. Fit learns Params from the cleaned
// training table; Params.Transform applies them to any table with the same
// columns, including scoring data without a target.
package features

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Deshan-5/house-price-ml/internal/config"
	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/logfields"
	"github.com/Deshan-5/house-price-ml/internal/logging"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

// ParamsVersion is the format version written into feature_params.json.
const ParamsVersion = 1

// Options controls fitting.
type Options struct {
	TargetColumn string
	ZeroVariance config.ZeroVariancePolicy
	Logger       *slog.Logger
}

// OptionsFromConfig derives Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		TargetColumn: cfg.Schema.TargetColumn,
		ZeroVariance: cfg.Features.ZeroVariance,
		Logger:       logger,
	}
}

// Params are the fitted transform parameters.
type Params struct {
	Version     int             `json:"version"`
	Target      string          `json:"target"`
	Numeric     []Standardizer  `json:"numeric"`
	Categorical []OneHotEncoder `json:"categorical"`
	Warnings    []string        `json:"warnings,omitempty"`
}

// Names returns the feature names in output order, without the target.
func (p *Params) Names() []string {
	names := make([]string, 0, p.Width())
	for _, s := range p.Numeric {
		names = append(names, s.Column)
	}
	for _, e := range p.Categorical {
		names = append(names, e.Names()...)
	}
	return names
}

// Width returns the number of feature columns.
func (p *Params) Width() int {
	n := len(p.Numeric)
	for _, e := range p.Categorical {
		n += len(e.Categories)
	}
	return n
}

// Fit learns standardization and encoding parameters from a cleaned table.
func Fit(t *table.Table, opts Options) (*Params, error) {
	logger := logging.OrDefault(opts.Logger)

	target, ok := t.Column(opts.TargetColumn)
	if !ok {
		return nil, ferrors.InputError("target column not found").WithContext("column", opts.TargetColumn).Build()
	}
	if target.Kind != table.Numeric {
		return nil, ferrors.InputError("target column must be numeric").WithContext("column", target.Name).Build()
	}
	if t.Rows() == 0 {
		return nil, ferrors.InputError("cannot fit features on an empty table").Build()
	}

	p := &Params{Version: ParamsVersion, Target: opts.TargetColumn, Numeric: []Standardizer{}, Categorical: []OneHotEncoder{}}
	for _, col := range t.Columns() {
		if col.Name == opts.TargetColumn {
			continue
		}
		switch col.Kind {
		case table.Numeric:
			if err := checkFinite(col); err != nil {
				return nil, err
			}
			s, err := FitStandardizer(col, opts.ZeroVariance)
			if err != nil {
				return nil, err
			}
			if s.Constant {
				p.Warnings = append(p.Warnings, fmt.Sprintf("column %s has zero variance; standardized to 0", col.Name))
				logger.Warn("Numeric column has zero variance", logfields.Column(col.Name))
			}
			p.Numeric = append(p.Numeric, s)
		case table.Categorical:
			if err := checkPresent(col); err != nil {
				return nil, err
			}
			p.Categorical = append(p.Categorical, FitOneHotEncoder(col))
		}
	}

	logger.Debug("Fitted feature parameters",
		slog.Int("numeric", len(p.Numeric)),
		slog.Int("categorical", len(p.Categorical)),
		slog.Int("width", p.Width()),
		logfields.ColumnList(p.Names()))
	return p, nil
}

// Transform applies p to t. The target column is optional; when present it is
// carried into the matrix unchanged. Columns of t that p does not know are
// ignored.
func (p *Params) Transform(t *table.Table) (*Matrix, error) {
	rows := t.Rows()
	if rows == 0 {
		return nil, ferrors.InputError("cannot transform an empty table").Build()
	}
	m := &Matrix{Names: p.Names(), TargetName: p.Target}
	if len(m.Names) > 0 {
		m.Data = mat.NewDense(rows, len(m.Names), nil)
	}

	j := 0
	for _, s := range p.Numeric {
		col, err := lookup(t, s.Column, table.Numeric)
		if err != nil {
			return nil, err
		}
		if err := checkFinite(col); err != nil {
			return nil, err
		}
		for i, v := range col.Floats {
			m.Data.Set(i, j, s.Apply(v))
		}
		j++
	}
	for _, e := range p.Categorical {
		col, err := lookup(t, e.Column, table.Categorical)
		if err != nil {
			return nil, err
		}
		if err := checkPresent(col); err != nil {
			return nil, err
		}
		indicators, err := e.Encode(col.Strings)
		if err != nil {
			return nil, err
		}
		for k, ind := range indicators {
			m.Data.SetCol(j+k, ind)
		}
		j += len(e.Categories)
	}

	if target, ok := t.Column(p.Target); ok {
		if target.Kind != table.Numeric {
			return nil, ferrors.InputError("target column must be numeric").WithContext("column", target.Name).Build()
		}
		m.Target = append([]float64(nil), target.Floats...)
	}
	m.rows = rows
	return m, nil
}

// Build fits parameters on t and applies them to the same table.
func Build(t *table.Table, opts Options) (*Matrix, *Params, error) {
	p, err := Fit(t, opts)
	if err != nil {
		return nil, nil, err
	}
	m, err := p.Transform(t)
	if err != nil {
		return nil, nil, err
	}
	r, c := m.Dims()
	logging.OrDefault(opts.Logger).Info("Built feature matrix", logfields.Shape(r, c)...)
	return m, p, nil
}

func lookup(t *table.Table, name string, kind table.Kind) (*table.Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, ferrors.InputError("feature column not found").WithContext("column", name).Build()
	}
	if col.Kind != kind {
		return nil, ferrors.InputError("feature column has unexpected kind").
			WithContext("column", name).
			WithContext("expected", kind.String()).
			WithContext("actual", col.Kind.String()).
			Build()
	}
	return col, nil
}

func checkFinite(col *table.Column) error {
	for i, v := range col.Floats {
		if col.IsMissing(i) || math.IsNaN(v) || math.IsInf(v, 0) {
			return ferrors.InputError("non-finite value in numeric column").
				WithContext("column", col.Name).WithContext("row", i+1).Build()
		}
	}
	return nil
}

func checkPresent(col *table.Column) error {
	for i := range col.Strings {
		if col.IsMissing(i) {
			return ferrors.InputError("missing value in categorical column").
				WithContext("column", col.Name).WithContext("row", i+1).Build()
		}
	}
	return nil
}
