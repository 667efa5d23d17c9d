// Package errors provides the classified error type used across the housing pipeline.
//
// Every failure that leaves a stage carries a category (configuration, input data,
// degenerate statistic, filesystem, internal), a severity and a small bag of context
// values such as the offending path or column name. The CLI adapter maps categories
// to process exit codes.
//
// Example usage:
//
//	err := errors.InputError("target column missing").
//		WithContext("column", "SalePrice").
//		WithContext("path", path).
//		Build()
package errors
