package features

import (
	"context"

	"github.com/Deshan-5/house-price-ml/internal/dataset"
	"github.com/Deshan-5/house-price-ml/internal/fsutil"
	"github.com/Deshan-5/house-price-ml/internal/logfields"
	"github.com/Deshan-5/house-price-ml/internal/logging"
	"github.com/Deshan-5/house-price-ml/internal/schema"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

// Artifacts names the files the feature stage reads and writes. Arrow is
// optional.
type Artifacts struct {
	Processed string
	Schema    string
	Features  string
	Params    string
	Arrow     string
}

// Result is the outcome of a feature stage.
type Result struct {
	Matrix *Matrix
	Params *Params
	Table  *table.Table
}

// Run loads the cleaned table written by the preprocessing stage, fits and
// applies the transform, and writes the feature table and its parameters.
func Run(ctx context.Context, a Artifacts, read dataset.ReadOptions, opts Options) (*Result, error) {
	logger := logging.OrDefault(opts.Logger)

	resolved, err := schema.ReadFile(a.Schema)
	if err != nil {
		return nil, err
	}
	cleaned, _, err := dataset.LoadTable(a.Processed, resolved.Declared(), read)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, p, err := Build(cleaned, opts)
	if err != nil {
		return nil, err
	}
	out, err := save(m, a.Features, a.Arrow, p.Artifact(a.Params))
	if err != nil {
		return nil, err
	}
	logger.Info("Saved feature table", logfields.Path(a.Features))
	logger.Debug("Saved feature params", logfields.Path(a.Params))
	return &Result{Matrix: m, Params: p, Table: out}, nil
}

// ApplyArtifacts names the files read and written when stored parameters are
// applied to another cleaned table.
type ApplyArtifacts struct {
	Input  string
	Params string
	Output string
	Arrow  string
}

// Apply transforms a cleaned table with previously fitted parameters.
func Apply(ctx context.Context, a ApplyArtifacts, read dataset.ReadOptions, opts Options) (*Result, error) {
	logger := logging.OrDefault(opts.Logger)

	p, err := ReadParams(a.Params)
	if err != nil {
		return nil, err
	}
	input, _, err := dataset.LoadTable(a.Input, p.Schema(), read)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := p.Transform(input)
	if err != nil {
		return nil, err
	}
	out, err := save(m, a.Output, a.Arrow)
	if err != nil {
		return nil, err
	}
	r, c := m.Dims()
	logger.Info("Applied feature params", append([]any{logfields.Path(a.Output)}, logfields.Shape(r, c)...)...)
	return &Result{Matrix: m, Params: p, Table: out}, nil
}

// save writes the feature table, its optional Arrow stream and any extra
// artifacts as one atomic set.
func save(m *Matrix, csvPath, arrowPath string, extra ...fsutil.Artifact) (*table.Table, error) {
	out, err := m.ToTable()
	if err != nil {
		return nil, err
	}
	artifacts := []fsutil.Artifact{dataset.TableArtifact(csvPath, out)}
	if arrowPath != "" {
		artifacts = append(artifacts, dataset.ArrowArtifact(arrowPath, out))
	}
	if err := fsutil.WriteAllAtomic(append(artifacts, extra...)...); err != nil {
		return nil, err
	}
	return out, nil
}
