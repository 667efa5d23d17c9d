package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "housing"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	reg           *prom.Registry
	stageDuration *prom.HistogramVec
	runDuration   prom.Histogram
	stageResults  *prom.CounterVec
	runOutcome    *prom.CounterVec
	stageRows     *prom.GaugeVec
	stageColumns  *prom.GaugeVec
	imputedCells  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"})
		pr.stageRows = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_output_rows",
			Help:      "Rows in the table produced by the last execution of a stage",
		}, []string{"stage"})
		pr.stageColumns = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_output_columns",
			Help:      "Columns in the table produced by the last execution of a stage",
		}, []string{"stage"})
		pr.imputedCells = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "imputed_cells_total",
			Help:      "Missing cells filled by the preprocessor, by column kind",
		}, []string{"kind"})
		reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults, pr.runOutcome, pr.stageRows, pr.stageColumns, pr.imputedCells)
	})
	return pr
}

// Registry returns the registry the metrics are registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetStageShape(stage string, rows, columns int) {
	if p == nil || p.stageRows == nil {
		return
	}
	p.stageRows.WithLabelValues(stage).Set(float64(rows))
	p.stageColumns.WithLabelValues(stage).Set(float64(columns))
}

func (p *PrometheusRecorder) AddImputedCells(kind string, n int) {
	if p == nil || p.imputedCells == nil || n <= 0 {
		return
	}
	p.imputedCells.WithLabelValues(kind).Add(float64(n))
}
