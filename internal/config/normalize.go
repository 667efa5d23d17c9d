package config

import (
	"fmt"
	"strings"

	"github.com/Deshan-5/house-price-ml/internal/table"
)

// NormalizationResult captures adjustments made while canonicalizing the document.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated fields in place. Values that differ only
// in case or surrounding whitespace are rewritten; unknown values are configuration
// errors.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	res := &NormalizationResult{}

	var err error
	if c.Logging.Level, err = normalizeEnum("logging.level", c.Logging.Level, logLevels, res); err != nil {
		return nil, err
	}
	if c.Logging.Format, err = normalizeEnum("logging.format", c.Logging.Format, logFormats, res); err != nil {
		return nil, err
	}
	if c.Preprocess.EmptyNumeric, err = normalizeEnum("preprocess.empty_numeric", c.Preprocess.EmptyNumeric, emptyNumericPolicies, res); err != nil {
		return nil, err
	}
	if c.Features.ZeroVariance, err = normalizeEnum("features.zero_variance", c.Features.ZeroVariance, zeroVariancePolicies, res); err != nil {
		return nil, err
	}

	for name, kind := range c.Schema.Columns {
		k, perr := table.ParseKind(string(kind))
		if perr != nil {
			return nil, configErr("invalid column kind", perr).WithContext("column", name).Build()
		}
		if k != kind {
			res.Warnings = append(res.Warnings, warnChanged("schema.columns."+name, kind, k))
			c.Schema.Columns[name] = k
		}
	}

	c.Schema.IDColumn = strings.TrimSpace(c.Schema.IDColumn)
	c.Schema.TargetColumn = strings.TrimSpace(c.Schema.TargetColumn)
	return res, nil
}

// normalizeEnum maps raw onto one of allowed. The empty string passes through so
// defaults can fill it in afterwards.
func normalizeEnum[T ~string](field string, raw T, allowed map[string]T, res *NormalizationResult) (T, error) {
	key := strings.ToLower(strings.TrimSpace(string(raw)))
	if key == "" {
		return "", nil
	}
	v, ok := allowed[key]
	if !ok {
		return raw, configErr(fmt.Sprintf("invalid value %q", string(raw)), nil).WithContext("key", field).Build()
	}
	if v != raw {
		res.Warnings = append(res.Warnings, warnChanged(field, raw, v))
	}
	return v, nil
}

func warnChanged[T ~string](field string, from, to T) string {
	return fmt.Sprintf("normalized %s from '%s' to '%s'", field, string(from), string(to))
}
