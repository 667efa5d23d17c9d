package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Deshan-5/house-price-ml/internal/config"
	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/logfields"
	"github.com/Deshan-5/house-price-ml/internal/logging"
)

// RunStages executes stages in order, recording timing and stopping on the
// first error. Cancellation is checked before every stage.
func RunStages(ctx context.Context, st *State, stages []StageDef, obs Observer) error {
	if obs == nil {
		obs = NoopObserver{}
	}
	logger := logging.OrDefault(st.Logger)
	// Observers still record the failure after the run context is canceled.
	obsCtx := context.WithoutCancel(ctx)

	for _, def := range stages {
		if err := ctx.Err(); err != nil {
			se := NewCanceledStageError(def.Name, canceled(err))
			sr := StageReport{Name: def.Name, Result: StageResultCanceled, Error: se.Err.Error()}
			st.Report.Stages = append(st.Report.Stages, sr)
			st.Report.AddIssue(def.Name, SeverityError, string(ferrors.CategoryCanceled), se.Err.Error())
			obs.OnStageComplete(obsCtx, st.Report, sr)
			return se
		}

		obs.OnStageStart(obsCtx, st.Report, def.Name)
		logger.Debug("Stage started", logfields.Stage(string(def.Name)))

		st.current = &StageReport{Name: def.Name}
		warningsBefore := len(st.Report.Warnings())
		t0 := time.Now()
		err := def.Fn(ctx, st)
		sr := *st.current
		st.current = nil
		sr.Duration = time.Since(t0)
		sr.DurationMS = float64(sr.Duration.Microseconds()) / 1000

		var se *StageError
		switch {
		case err == nil && len(st.Report.Warnings()) > warningsBefore:
			sr.Result = StageResultWarning
		case err == nil:
			sr.Result = StageResultSuccess
		case isCancellation(ctx, err):
			se = NewCanceledStageError(def.Name, canceled(err))
			sr.Result = StageResultCanceled
		default:
			se = NewFatalStageError(def.Name, err)
			sr.Result = StageResultFatal
		}
		if se != nil {
			sr.Error = se.Err.Error()
			st.Report.AddIssue(def.Name, SeverityError, string(ferrors.GetCategory(se.Err)), se.Err.Error())
		}
		st.Report.Stages = append(st.Report.Stages, sr)
		obs.OnStageComplete(obsCtx, st.Report, sr)

		attrs := []any{
			logfields.Stage(string(def.Name)),
			logfields.Outcome(string(sr.Result)),
			logfields.DurationMS(sr.DurationMS),
		}
		if se != nil {
			logger.Error("Stage failed", append(attrs, logfields.Error(se.Err))...)
			return se
		}
		logger.Info("Stage completed", append(attrs, logfields.Shape(sr.Rows, sr.Columns)...)...)
	}
	return nil
}

func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

func canceled(err error) error {
	if ferrors.HasCategory(err, ferrors.CategoryCanceled) {
		return err
	}
	return ferrors.NewError(ferrors.CategoryCanceled, "run canceled").WithCause(err).Build()
}

// Runner executes pipelines for one configuration.
type Runner struct {
	cfg       *config.Config
	logger    *slog.Logger
	observers Observers
	newID     func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger stages receive.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, o) }
}

// WithRunID fixes the run id generator, for tests.
func WithRunID(fn func() string) Option {
	return func(r *Runner) { r.newID = fn }
}

// NewRunner creates a Runner.
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, newID: uuid.NewString}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDefault(r.logger)
	return r
}

// Run executes stages as one run and persists the run report. The report is
// returned even when a stage fails.
func (r *Runner) Run(ctx context.Context, command string, stages []StageDef, apply ApplyRequest) (*Report, error) {
	report := NewReport(r.newID(), command)
	logger := r.logger.With(logfields.RunID(report.RunID))
	st := &State{Config: r.cfg, Logger: logger, Report: report, Apply: apply}

	obsCtx := context.WithoutCancel(ctx)
	r.observers.OnRunStart(obsCtx, report)
	logger.Info("Run started", slog.String("command", command))

	err := RunStages(ctx, st, stages, r.observers)

	report.Finish()
	r.observers.OnRunComplete(obsCtx, report)

	if perr := report.Persist(r.cfg.ReportFilePath()); perr != nil {
		logger.Error("Failed to persist run report", logfields.Error(perr))
		if err == nil {
			err = perr
		}
	}
	logger.Info("Run finished", logfields.Outcome(string(report.Outcome)), slog.String("summary", report.Summary()))
	return report, err
}
