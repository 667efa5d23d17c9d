package pipeline

import (
	"context"

	"github.com/Deshan-5/house-price-ml/internal/features"
	"github.com/Deshan-5/house-price-ml/internal/preprocess"
	"github.com/Deshan-5/house-price-ml/internal/schema"
)

// PreprocessStage cleans the raw file and writes the processed table and schema.
func PreprocessStage(ctx context.Context, st *State) error {
	cfg := st.Config
	res, err := preprocess.Run(ctx,
		preprocess.Artifacts{
			Raw:       cfg.RawFilePath(),
			Processed: cfg.ProcessedFilePath(),
			Schema:    cfg.SchemaFilePath(),
		},
		schema.FromConfig(cfg.Schema),
		st.readOptions(),
		preprocess.OptionsFromConfig(cfg, st.Logger),
	)
	if err != nil {
		return err
	}
	st.Preprocessed = res
	st.SetShape(res.Table.Shape())
	st.setImputed(res.Summary)
	for _, w := range res.Summary.Warnings {
		st.Warn(w)
	}
	return nil
}

// BuildFeaturesStage fits the feature transform on the processed table and
// writes the feature table and parameters.
func BuildFeaturesStage(ctx context.Context, st *State) error {
	cfg := st.Config
	res, err := features.Run(ctx,
		features.Artifacts{
			Processed: cfg.ProcessedFilePath(),
			Schema:    cfg.SchemaFilePath(),
			Features:  cfg.FeaturesFilePath(),
			Params:    cfg.ParamsFilePath(),
			Arrow:     cfg.ArrowFilePath(),
		},
		st.readOptions(),
		features.OptionsFromConfig(cfg, st.Logger),
	)
	if err != nil {
		return err
	}
	st.Features = res
	st.SetShape(res.Table.Shape())
	for _, w := range res.Params.Warnings {
		st.Warn(w)
	}
	return nil
}

// ApplyFeaturesStage applies stored feature parameters to another cleaned file.
func ApplyFeaturesStage(ctx context.Context, st *State) error {
	req := st.Apply
	if req.Params == "" {
		req.Params = st.Config.ParamsFilePath()
	}
	res, err := features.Apply(ctx,
		features.ApplyArtifacts{Input: req.Input, Params: req.Params, Output: req.Output, Arrow: req.Arrow},
		st.readOptions(),
		features.OptionsFromConfig(st.Config, st.Logger),
	)
	if err != nil {
		return err
	}
	st.Features = res
	st.SetShape(res.Table.Shape())
	return nil
}
