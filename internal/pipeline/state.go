package pipeline

import (
	"log/slog"

	"github.com/Deshan-5/house-price-ml/internal/config"
	"github.com/Deshan-5/house-price-ml/internal/dataset"
	"github.com/Deshan-5/house-price-ml/internal/features"
	"github.com/Deshan-5/house-price-ml/internal/preprocess"
)

// ApplyRequest names the files of an apply_features stage. Params defaults to
// the configured params file.
type ApplyRequest struct {
	Input  string
	Output string
	Params string
	Arrow  string
}

// State is shared by the stages of one run.
type State struct {
	Config *config.Config
	Logger *slog.Logger
	Report *Report
	Apply  ApplyRequest

	Preprocessed *preprocess.Result
	Features     *features.Result

	current *StageReport
}

func (s *State) readOptions() dataset.ReadOptions {
	return dataset.ReadOptions{NAValues: s.Config.Data.NAValues, Logger: s.Logger}
}

// Warn records a non-fatal issue against the running stage.
func (s *State) Warn(msg string) {
	stage := StageName("")
	if s.current != nil {
		stage = s.current.Name
	}
	s.Report.AddIssue(stage, SeverityWarning, "", msg)
}

// SetShape records the shape of the table the running stage produced.
func (s *State) SetShape(rows, columns int) {
	if s.current != nil {
		s.current.Rows, s.current.Columns = rows, columns
	}
}

func (s *State) setImputed(summary *preprocess.Summary) {
	if s.current == nil {
		return
	}
	for _, f := range summary.Numeric {
		s.current.ImputedNumeric += f.Missing
	}
	for _, f := range summary.Categorical {
		s.current.ImputedCategorical += f.Missing
	}
}
