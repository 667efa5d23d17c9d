package config

import (
	"strings"

	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

// ValidateConfig checks required keys and cross-field constraints.
func ValidateConfig(c *Config) error {
	if strings.TrimSpace(c.Data.RawPath) == "" {
		return configErr("missing required key", nil).WithContext("key", "data.raw_path").Build()
	}
	if strings.TrimSpace(c.Data.ProcessedPath) == "" {
		return configErr("missing required key", nil).WithContext("key", "data.processed_path").Build()
	}
	if c.Schema.TargetColumn == c.Schema.IDColumn {
		return configErr("target and identifier column must differ", nil).
			WithContext("column", c.Schema.TargetColumn).Build()
	}
	if kind, ok := c.Schema.Columns[c.Schema.TargetColumn]; ok && kind != table.Numeric {
		return configErr("target column must be numeric", nil).WithContext("column", c.Schema.TargetColumn).Build()
	}
	for _, v := range c.Data.NAValues {
		if v == c.Preprocess.MissingLabel {
			return configErr("missing label must not be one of data.na_values", nil).
				WithContext("label", v).Build()
		}
	}

	artifacts := []struct{ key, name string }{
		{"data.processed_file", c.Data.ProcessedFile},
		{"data.features_file", c.Data.FeaturesFile},
		{"data.schema_file", c.Data.SchemaFile},
		{"features.params_file", c.Features.ParamsFile},
		{"features.arrow_file", c.Features.ArrowFile},
		{"report.file", c.Report.File},
	}
	seen := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		if a.name == "" {
			continue
		}
		if other, dup := seen[a.name]; dup {
			return configErr("artifact file names must be distinct", nil).
				WithContext("key", a.key).WithContext("other", other).WithContext("file", a.name).Build()
		}
		seen[a.name] = a.key
	}
	return nil
}

func configErr(msg string, cause error) *ferrors.ErrorBuilder {
	b := ferrors.ConfigError(msg)
	if cause != nil {
		b = b.WithCause(cause)
	}
	return b
}
