package pipeline

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/Deshan-5/house-price-ml/internal/ledger"
	"github.com/Deshan-5/house-price-ml/internal/logfields"
	"github.com/Deshan-5/house-price-ml/internal/logging"
	"github.com/Deshan-5/house-price-ml/internal/metrics"
)

// Observer receives callbacks around stage execution and the run lifecycle.
type Observer interface {
	OnRunStart(ctx context.Context, report *Report)
	OnStageStart(ctx context.Context, report *Report, stage StageName)
	OnStageComplete(ctx context.Context, report *Report, stage StageReport)
	OnRunComplete(ctx context.Context, report *Report)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(context.Context, *Report)                   {}
func (NoopObserver) OnStageStart(context.Context, *Report, StageName)      {}
func (NoopObserver) OnStageComplete(context.Context, *Report, StageReport) {}
func (NoopObserver) OnRunComplete(context.Context, *Report)                {}

// Observers fans callbacks out in order.
type Observers []Observer

func (o Observers) OnRunStart(ctx context.Context, r *Report) {
	for _, ob := range o {
		ob.OnRunStart(ctx, r)
	}
}

func (o Observers) OnStageStart(ctx context.Context, r *Report, stage StageName) {
	for _, ob := range o {
		ob.OnStageStart(ctx, r, stage)
	}
}

func (o Observers) OnStageComplete(ctx context.Context, r *Report, stage StageReport) {
	for _, ob := range o {
		ob.OnStageComplete(ctx, r, stage)
	}
}

func (o Observers) OnRunComplete(ctx context.Context, r *Report) {
	for _, ob := range o {
		ob.OnRunComplete(ctx, r)
	}
}

// RecorderObserver adapts metrics.Recorder into an Observer.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (RecorderObserver) OnRunStart(context.Context, *Report)              {}
func (RecorderObserver) OnStageStart(context.Context, *Report, StageName) {}

func (r RecorderObserver) OnStageComplete(_ context.Context, _ *Report, s StageReport) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveStageDuration(string(s.Name), s.Duration)
	r.Recorder.IncStageResult(string(s.Name), resultLabel(s.Result))
	if s.Result == StageResultSuccess || s.Result == StageResultWarning {
		r.Recorder.SetStageShape(string(s.Name), s.Rows, s.Columns)
	}
	r.Recorder.AddImputedCells("numeric", s.ImputedNumeric)
	r.Recorder.AddImputedCells("categorical", s.ImputedCategorical)
}

func (r RecorderObserver) OnRunComplete(_ context.Context, report *Report) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveRunDuration(report.End.Sub(report.Start))
	r.Recorder.IncRunOutcome(metrics.OutcomeLabel(report.Outcome))
}

func resultLabel(res StageResult) metrics.ResultLabel {
	switch res {
	case StageResultSuccess:
		return metrics.ResultSuccess
	case StageResultWarning:
		return metrics.ResultWarning
	case StageResultCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}

// LedgerObserver appends the run and its stage events to a ledger. Ledger
// failures are logged and never fail the run.
type LedgerObserver struct {
	Store  ledger.Store
	Logger *slog.Logger
}

func (l LedgerObserver) warn(err error) {
	if err != nil {
		logging.OrDefault(l.Logger).Warn("Ledger write failed", logfields.Error(err))
	}
}

func (l LedgerObserver) OnRunStart(ctx context.Context, r *Report) {
	l.warn(l.Store.BeginRun(ctx, ledger.Run{ID: r.RunID, Command: r.Command, Version: r.Version, Started: r.Start}))
}

func (l LedgerObserver) OnStageStart(ctx context.Context, r *Report, stage StageName) {
	l.warn(l.Store.RecordStage(ctx, ledger.StageEvent{RunID: r.RunID, Stage: string(stage), Kind: ledger.EventStarted}))
}

func (l LedgerObserver) OnStageComplete(ctx context.Context, r *Report, s StageReport) {
	l.warn(l.Store.RecordStage(ctx, ledger.StageEvent{
		RunID:    r.RunID,
		Stage:    string(s.Name),
		Kind:     ledger.EventFinished,
		Result:   string(s.Result),
		Duration: s.Duration,
		Rows:     s.Rows,
		Columns:  s.Columns,
		Message:  s.Error,
		Metadata: stageMetadata(s),
	}))
}

func stageMetadata(s StageReport) map[string]string {
	if s.ImputedNumeric == 0 && s.ImputedCategorical == 0 {
		return nil
	}
	return map[string]string{
		"imputed_numeric":     strconv.Itoa(s.ImputedNumeric),
		"imputed_categorical": strconv.Itoa(s.ImputedCategorical),
	}
}

func (l LedgerObserver) OnRunComplete(ctx context.Context, r *Report) {
	l.warn(l.Store.FinishRun(ctx, r.RunID, string(r.Outcome), r.End))
}
