package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Deshan-5/house-price-ml/internal/fsutil"
	"github.com/Deshan-5/house-price-ml/internal/version"
)

// Outcome is the typed enumeration of final run result states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a discrete problem encountered during a run.
type Issue struct {
	Stage    StageName     `json:"stage"`
	Severity IssueSeverity `json:"severity"`
	Category string        `json:"category,omitempty"`
	Message  string        `json:"message"`
}

// StageReport records one stage execution.
type StageReport struct {
	Name               StageName     `json:"name"`
	Result             StageResult   `json:"result"`
	Duration           time.Duration `json:"-"`
	DurationMS         float64       `json:"duration_ms"`
	Rows               int           `json:"rows"`
	Columns            int           `json:"columns"`
	ImputedNumeric     int           `json:"imputed_numeric,omitempty"`
	ImputedCategorical int           `json:"imputed_categorical,omitempty"`
	Error              string        `json:"error,omitempty"`
}

// Report captures the result of one pipeline run.
type Report struct {
	SchemaVersion int           `json:"schema_version"`
	RunID         string        `json:"run_id"`
	Command       string        `json:"command"`
	Version       string        `json:"version"`
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	Stages        []StageReport `json:"stages"`
	Issues        []Issue       `json:"issues,omitempty"`
	Outcome       Outcome       `json:"outcome"`
}

// NewReport constructs a new Report.
func NewReport(runID, command string) *Report {
	return &Report{
		SchemaVersion: 1,
		RunID:         runID,
		Command:       command,
		Version:       version.Version,
		Start:         time.Now(),
		Stages:        []StageReport{},
	}
}

// AddIssue appends an issue.
func (r *Report) AddIssue(stage StageName, severity IssueSeverity, category, msg string) {
	r.Issues = append(r.Issues, Issue{Stage: stage, Severity: severity, Category: category, Message: msg})
}

// Warnings returns the warning issues.
func (r *Report) Warnings() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Severity == SeverityWarning {
			out = append(out, is)
		}
	}
	return out
}

// Stage returns the report of the named stage, if it ran.
func (r *Report) Stage(name StageName) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return StageReport{}, false
}

// Finish sets the end time of the report and derives the outcome.
func (r *Report) Finish() {
	r.End = time.Now()
	r.DeriveOutcome()
}

// DeriveOutcome sets the Outcome field based on stage results and issues.
func (r *Report) DeriveOutcome() {
	failed := false
	for _, s := range r.Stages {
		switch s.Result {
		case StageResultCanceled:
			r.Outcome = OutcomeCanceled
			return
		case StageResultFatal:
			failed = true
		}
	}
	if failed {
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings()) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("run=%s command=%s duration=%s stages=%d warnings=%d outcome=%s",
		r.RunID, r.Command, dur.Truncate(time.Millisecond), len(r.Stages), len(r.Warnings()), r.Outcome)
}

// Persist writes the report as JSON to path, atomically.
func (r *Report) Persist(path string) error {
	if r.End.IsZero() {
		r.Finish()
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	return fsutil.WriteFileAtomic(path, append(data, '\n'))
}
