// Package preprocess turns the raw record set into the cleaned record set.
//
// The identifier column is dropped, the target is detached, numeric gaps are
// filled with the column median and categorical gaps with a sentinel label,
// and the target is reattached as the last column.
package preprocess

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/go-gota/gota/series"

	"github.com/Deshan-5/house-price-ml/internal/config"
	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/logfields"
	"github.com/Deshan-5/house-price-ml/internal/logging"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

// DefaultMissingLabel replaces missing categorical values.
const DefaultMissingLabel = "Missing"

// Options controls a preprocessing pass.
type Options struct {
	IDColumn          string
	TargetColumn      string
	MissingLabel      string
	EmptyNumeric      config.EmptyNumericPolicy
	EmptyNumericValue float64
	Logger            *slog.Logger
}

// OptionsFromConfig derives Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		IDColumn:          cfg.Schema.IDColumn,
		TargetColumn:      cfg.Schema.TargetColumn,
		MissingLabel:      cfg.Preprocess.MissingLabel,
		EmptyNumeric:      cfg.Preprocess.EmptyNumeric,
		EmptyNumericValue: cfg.Preprocess.EmptyNumericValue,
		Logger:            logger,
	}
}

// NumericFill records how one numeric column was imputed.
type NumericFill struct {
	Column  string  `json:"column"`
	Value   float64 `json:"value"`
	Missing int     `json:"missing"`
	// Empty is set when the column had no values to take a median from.
	Empty bool `json:"empty,omitempty"`
}

// CategoricalFill records how one categorical column was imputed.
type CategoricalFill struct {
	Column  string `json:"column"`
	Label   string `json:"label"`
	Missing int    `json:"missing"`
}

// Summary describes what a preprocessing pass changed.
type Summary struct {
	DroppedID   bool              `json:"dropped_id"`
	Rows        int               `json:"rows"`
	Columns     int               `json:"columns"`
	Numeric     []NumericFill     `json:"numeric,omitempty"`
	Categorical []CategoricalFill `json:"categorical,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
}

// ImputedCells counts every cell that was filled.
func (s *Summary) ImputedCells() int {
	n := 0
	for _, f := range s.Numeric {
		n += f.Missing
	}
	for _, f := range s.Categorical {
		n += f.Missing
	}
	return n
}

// Preprocess returns the cleaned version of raw. raw is not modified.
func Preprocess(raw *table.Table, opts Options) (*table.Table, *Summary, error) {
	logger := logging.OrDefault(opts.Logger)
	label := opts.MissingLabel
	if label == "" {
		label = DefaultMissingLabel
	}

	t := raw.Clone()
	summary := &Summary{}

	if opts.IDColumn != "" {
		_, summary.DroppedID = t.Remove(opts.IDColumn)
	}

	target, ok := t.Remove(opts.TargetColumn)
	if !ok {
		return nil, nil, ferrors.InputError("target column not found").
			WithContext("column", opts.TargetColumn).Build()
	}
	if err := checkTarget(target); err != nil {
		return nil, nil, err
	}

	for _, col := range t.Columns() {
		missing := col.MissingCount()
		if missing == 0 {
			col.Missing = nil
			continue
		}
		switch col.Kind {
		case table.Numeric:
			fill, err := fillNumeric(col, opts)
			if err != nil {
				return nil, nil, err
			}
			if fill.Empty {
				msg := fmt.Sprintf("column %s has no values; filled with %s", col.Name, formatFloat(fill.Value))
				summary.Warnings = append(summary.Warnings, msg)
				logger.Warn("Numeric column entirely missing", logfields.Column(col.Name), logfields.Fill(fill.Value))
			}
			summary.Numeric = append(summary.Numeric, fill)
			logger.Debug("Filled numeric column", logfields.Column(col.Name), logfields.Fill(fill.Value), logfields.Missing(missing))
		case table.Categorical:
			for i := range col.Strings {
				if col.Missing[i] {
					col.Strings[i] = label
				}
			}
			col.Missing = nil
			summary.Categorical = append(summary.Categorical, CategoricalFill{Column: col.Name, Label: label, Missing: missing})
			logger.Debug("Filled categorical column", logfields.Column(col.Name), logfields.Fill(label), logfields.Missing(missing))
		}
	}

	target.Missing = nil
	if err := t.Append(target); err != nil {
		return nil, nil, ferrors.InternalError("failed to reattach target").WithCause(err).Build()
	}

	summary.Rows, summary.Columns = t.Shape()
	logger.Info("Preprocessed table",
		append(logfields.Shape(t.Shape()),
			slog.Int("numeric_filled", len(summary.Numeric)),
			slog.Int("categorical_filled", len(summary.Categorical)),
			slog.Bool("dropped_id", summary.DroppedID))...)
	return t, summary, nil
}

func checkTarget(target *table.Column) error {
	if target.Kind != table.Numeric {
		return ferrors.InputError("target column must be numeric").
			WithContext("column", target.Name).Build()
	}
	for i := range target.Floats {
		if target.IsMissing(i) {
			return ferrors.InputError("missing target value").
				WithContext("column", target.Name).WithContext("row", i+1).Build()
		}
	}
	return nil
}

func fillNumeric(col *table.Column, opts Options) (NumericFill, error) {
	fill := NumericFill{Column: col.Name, Missing: col.MissingCount()}
	present := col.Present()
	if len(present) == 0 {
		if opts.EmptyNumeric == config.EmptyNumericFail {
			return fill, ferrors.StatisticError("numeric column has no values to take a median from").
				WithContext("column", col.Name).Build()
		}
		fill.Value = opts.EmptyNumericValue
		fill.Empty = true
	} else {
		fill.Value = Median(present)
	}
	for i := range col.Floats {
		if col.Missing[i] {
			col.Floats[i] = fill.Value
		}
	}
	col.Missing = nil
	return fill, nil
}

// Median returns the median of values, averaging the two middle values for an
// even count. It returns NaN for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	return series.Floats(values).Median()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
