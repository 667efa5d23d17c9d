package preprocess

import (
	"context"

	"github.com/Deshan-5/house-price-ml/internal/dataset"
	"github.com/Deshan-5/house-price-ml/internal/fsutil"
	"github.com/Deshan-5/house-price-ml/internal/logfields"
	"github.com/Deshan-5/house-price-ml/internal/logging"
	"github.com/Deshan-5/house-price-ml/internal/schema"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

// Artifacts names the files the preprocessing stage reads and writes.
type Artifacts struct {
	Raw       string
	Processed string
	Schema    string
}

// Result is the outcome of a preprocessing stage.
type Result struct {
	Table   *table.Table
	Schema  *schema.Resolved
	Summary *Summary
}

// LoadRaw reads the raw record set and resolves its schema.
func LoadRaw(path string, sc schema.Schema, read dataset.ReadOptions) (*table.Table, *schema.Resolved, error) {
	return dataset.LoadTable(path, sc, read)
}

// Run loads the raw file, preprocesses it and writes the cleaned table together
// with its resolved schema. Each artifact is written atomically.
func Run(ctx context.Context, a Artifacts, sc schema.Schema, read dataset.ReadOptions, opts Options) (*Result, error) {
	logger := logging.OrDefault(opts.Logger)

	raw, resolved, err := LoadRaw(a.Raw, sc, read)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned, summary, err := Preprocess(raw, opts)
	if err != nil {
		return nil, err
	}

	out := resolved.Without(opts.IDColumn, opts.TargetColumn)
	out.Fields = append(out.Fields, schema.Field{Name: opts.TargetColumn, Kind: table.Numeric})
	out.ID = ""

	if err := fsutil.WriteAllAtomic(dataset.TableArtifact(a.Processed, cleaned), out.Artifact(a.Schema)); err != nil {
		return nil, err
	}
	logger.Info("Saved processed table", logfields.Path(a.Processed))
	logger.Debug("Saved resolved schema", logfields.Path(a.Schema))

	return &Result{Table: cleaned, Schema: out, Summary: summary}, nil
}
