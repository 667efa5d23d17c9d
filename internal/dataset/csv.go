// Package dataset moves tables between CSV or Arrow files and memory.
//
// CSV files are read through a gota frame with type detection disabled, so every
// cell arrives as text. Kinds are then applied from the resolved schema rather
// than from whatever the parser would have guessed.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/unicode/norm"

	"github.com/Deshan-5/house-price-ml/internal/config"
	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/fsutil"
	"github.com/Deshan-5/house-price-ml/internal/logfields"
	"github.com/Deshan-5/house-price-ml/internal/logging"
	"github.com/Deshan-5/house-price-ml/internal/schema"
	"github.com/Deshan-5/house-price-ml/internal/table"
)


// ReadOptions controls how a CSV file is interpreted.
type ReadOptions struct {
	NAValues []string
	Logger   *slog.Logger
}

// ReadSamples reads a CSV file as raw text columns, one Sample per header.
func ReadSamples(path string, opts ReadOptions) ([]schema.Sample, error) {
	data, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSamples(path, data, opts.NAValues)
}

// LoadTable reads a CSV file, resolves every column's kind against s and
// returns the typed table together with the resolved schema.
func LoadTable(path string, s schema.Schema, opts ReadOptions) (*table.Table, *schema.Resolved, error) {
	logger := logging.OrDefault(opts.Logger)

	samples, err := ReadSamples(path, opts)
	if err != nil {
		return nil, nil, err
	}
	resolved, err := s.Resolve(samples)
	if err != nil {
		return nil, nil, err
	}
	for _, name := range resolved.Inferred() {
		kind, _ := resolved.Kind(name)
		logger.Debug("Inferred column kind", logfields.Column(name), slog.String("kind", kind.String()))
	}

	t, err := convert(path, samples, resolved)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Loaded table", append([]any{logfields.Path(path)}, logfields.Shape(t.Shape())...)...)
	return t, resolved, nil
}

func parseSamples(path string, data []byte, naValues []string) ([]schema.Sample, error) {
	if naValues == nil {
		naValues = config.DefaultNAValues()
	}
	header, err := readHeader(path, data)
	if err != nil {
		return nil, err
	}
	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(naValues),
	)
	if df.Err != nil {
		return nil, ferrors.InputError("malformed CSV file").WithContext("path", path).WithCause(df.Err).Build()
	}
	if df.Nrow() == 0 {
		return nil, ferrors.InputError("CSV file has no data rows").WithContext("path", path).Build()
	}

	// gota renames empty and repeated headers, so columns are taken by
	// position and named from the header as written.
	names := df.Names()
	if len(names) != len(header) {
		return nil, ferrors.InputError("malformed CSV header").WithContext("path", path).Build()
	}
	samples := make([]schema.Sample, 0, len(names))
	for i, name := range header {
		col := df.Col(names[i])
		cells := col.Records()
		missing := col.IsNaN()
		for i, c := range cells {
			if slices.Contains(naValues, c) {
				missing[i] = true
			}
		}
		samples = append(samples, schema.Sample{Name: name, Cells: cells, Missing: missing})
	}
	return samples, nil
}

// readHeader returns the canonical column names of the first CSV record and
// rejects empty or repeated names.
func readHeader(path string, data []byte) ([]string, error) {
	record, err := csv.NewReader(bytes.NewReader(data)).Read()
	if errors.Is(err, io.EOF) {
		return nil, ferrors.InputError("CSV file is empty").WithContext("path", path).Build()
	}
	if err != nil {
		return nil, ferrors.InputError("malformed CSV header").WithContext("path", path).WithCause(err).Build()
	}
	names := make([]string, len(record))
	seen := make(map[string]bool, len(record))
	for i, raw := range record {
		name := schema.CanonicalName(raw)
		if name == "" {
			return nil, ferrors.InputError("empty column name in header").
				WithContext("path", path).WithContext("position", i+1).Build()
		}
		if seen[name] {
			return nil, ferrors.InputError("duplicate column name in header").
				WithContext("path", path).WithContext("column", name).Build()
		}
		seen[name] = true
		names[i] = name
	}
	return names, nil
}

func convert(path string, samples []schema.Sample, resolved *schema.Resolved) (*table.Table, error) {
	t := table.New(len(samples[0].Cells))
	for _, smp := range samples {
		kind, _ := resolved.Kind(smp.Name)
		var col *table.Column
		switch kind {
		case table.Numeric:
			values := make([]float64, len(smp.Cells))
			for i, cell := range smp.Cells {
				if smp.Missing[i] {
					continue
				}
				v, ok := schema.ParseNumber(cell)
				if !ok {
					return nil, ferrors.InputError("non-numeric value in numeric column").
						WithContext("path", path).
						WithContext("column", smp.Name).
						WithContext("row", i+1).
						WithContext("value", cell).
						Build()
				}
				values[i] = v
			}
			col = table.NewNumeric(smp.Name, values, smp.Missing)
		default:
			values := make([]string, len(smp.Cells))
			for i, cell := range smp.Cells {
				if !smp.Missing[i] {
					values[i] = norm.NFC.String(cell)
				}
			}
			col = table.NewCategorical(smp.Name, values, smp.Missing)
		}
		if err := t.Append(col); err != nil {
			return nil, ferrors.InternalError("failed to assemble table").WithCause(err).Build()
		}
	}
	return t, nil
}

// TableArtifact writes t as CSV. Numbers use the shortest decimal form that
// round-trips and missing cells are written empty.
func TableArtifact(path string, t *table.Table) fsutil.Artifact {
	return fsutil.Artifact{Path: path, Fill: func(w io.Writer) error { return EncodeCSV(w, t) }}
}

// EncodeCSV writes t as CSV with a header row.
func EncodeCSV(w io.Writer, t *table.Table) error {
	cols := t.Columns()
	ss := make([]series.Series, len(cols))
	for i, c := range cols {
		ss[i] = series.New(Records(c), series.String, c.Name)
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return ferrors.InternalError("failed to build frame").WithCause(df.Err).Build()
	}
	if err := df.WriteCSV(w, dataframe.WriteHeader(true)); err != nil {
		return ferrors.FileSystemError("failed to write CSV").WithCause(err).Build()
	}
	return nil
}

// Records renders a column as text cells.
func Records(c *table.Column) []string {
	out := make([]string, c.Len())
	for i := range out {
		if c.IsMissing(i) {
			continue
		}
		if c.Kind == table.Numeric {
			out[i] = FormatFloat(c.Floats[i])
		} else {
			out[i] = c.Strings[i]
		}
	}
	return out
}

// FormatFloat formats v in shortest round-trip form.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
