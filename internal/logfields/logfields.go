package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyPath       = "path"
	KeyRows       = "rows"
	KeyColumns    = "columns"
	KeyColumn     = "column"
	KeyFill       = "fill"
	KeyMissing    = "missing"
	KeyOutcome    = "outcome"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Rows(n int) slog.Attr            { return slog.Int(KeyRows, n) }
func Columns(n int) slog.Attr         { return slog.Int(KeyColumns, n) }
func Column(name string) slog.Attr    { return slog.String(KeyColumn, name) }
func Fill(v any) slog.Attr            { return slog.Any(KeyFill, v) }
func Missing(n int) slog.Attr         { return slog.Int(KeyMissing, n) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }

// ColumnList reports a set of column names under the columns key.
func ColumnList(names []string) slog.Attr { return slog.Any(KeyColumns, names) }

// Shape groups rows and columns as they are reported at every load/save step.
func Shape(rows, cols int) []any {
	return []any{Rows(rows), Columns(cols)}
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
