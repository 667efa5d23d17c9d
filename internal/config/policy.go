package config

// EmptyNumericPolicy decides what the preprocessor does with a numeric column
// that has no values at all (its median is undefined).
type EmptyNumericPolicy string

const (
	// EmptyNumericFill fills the column with PreprocessConfig.EmptyNumericValue.
	EmptyNumericFill EmptyNumericPolicy = "fill"
	// EmptyNumericFail aborts the stage.
	EmptyNumericFail EmptyNumericPolicy = "fail"
)

var emptyNumericPolicies = map[string]EmptyNumericPolicy{
	"fill": EmptyNumericFill,
	"fail": EmptyNumericFail,
}

// ZeroVariancePolicy decides how a numeric column with zero standard deviation
// is standardized.
type ZeroVariancePolicy string

const (
	// ZeroVarianceZero uses a scale of 1, so every standardized value is 0.
	ZeroVarianceZero ZeroVariancePolicy = "zero"
	// ZeroVarianceFail aborts the stage.
	ZeroVarianceFail ZeroVariancePolicy = "fail"
)

var zeroVariancePolicies = map[string]ZeroVariancePolicy{
	"zero": ZeroVarianceZero,
	"fail": ZeroVarianceFail,
}
