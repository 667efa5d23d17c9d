// Package table holds the in-memory record set passed between pipeline stages.
//
// A Table is an ordered list of equally long, named columns. Each column is either
// numeric (float64 values) or categorical (string values) and carries its own
// missing mask, so "missing" never has to be encoded in the value itself. Row order
// is significant and is preserved by every operation in this package.
package table
