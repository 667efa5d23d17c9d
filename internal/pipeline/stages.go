package pipeline

import (
	"context"
	"fmt"
)

// Stage is a discrete unit of work in a pipeline run.
type Stage func(ctx context.Context, st *State) error

// StageName is a strongly-typed identifier for a pipeline stage.
type StageName string

// Canonical stage names.
const (
	StagePreprocess    StageName = "preprocess"
	StageBuildFeatures StageName = "build_features"
	StageApplyFeatures StageName = "apply_features"
)

// StageResult is the recorded result of one stage execution.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// StageErrorKind classifies the outcome of a stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Run must abort.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying the failing stage and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// NewFatalStageError creates a new fatal stage error.
func NewFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func NewCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ Defs []StageDef }

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{Defs: make([]StageDef, 0, 4)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(name StageName, fn Stage) *Pipeline {
	p.Defs = append(p.Defs, StageDef{Name: name, Fn: fn})
	return p
}

// AddIf appends a stage only if cond is true.
func (p *Pipeline) AddIf(cond bool, name StageName, fn Stage) *Pipeline {
	if cond {
		p.Add(name, fn)
	}
	return p
}

// Build returns a copy of the stage definitions slice.
func (p *Pipeline) Build() []StageDef {
	out := make([]StageDef, len(p.Defs))
	copy(out, p.Defs)
	return out
}

// Preprocess is the pipeline for `housing preprocess`.
func Preprocess() []StageDef {
	return NewPipeline().Add(StagePreprocess, PreprocessStage).Build()
}

// Features is the pipeline for `housing features`.
func Features() []StageDef {
	return NewPipeline().Add(StageBuildFeatures, BuildFeaturesStage).Build()
}

// Full is the pipeline for `housing run`.
func Full() []StageDef {
	return NewPipeline().
		Add(StagePreprocess, PreprocessStage).
		Add(StageBuildFeatures, BuildFeaturesStage).
		Build()
}

// ApplyOnly is the pipeline for `housing apply`.
func ApplyOnly() []StageDef {
	return NewPipeline().Add(StageApplyFeatures, ApplyFeaturesStage).Build()
}
