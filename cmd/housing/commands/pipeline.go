package commands

import (
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/Deshan-5/house-price-ml/internal/config"
	"github.com/Deshan-5/house-price-ml/internal/ledger"
	"github.com/Deshan-5/house-price-ml/internal/logfields"
	"github.com/Deshan-5/house-price-ml/internal/metrics"
	"github.com/Deshan-5/house-price-ml/internal/pipeline"
)

// PreprocessCmd implements the 'preprocess' command.
type PreprocessCmd struct{}

func (p *PreprocessCmd) Run(g *Global, root *CLI) error {
	return runPipeline(g, root, "preprocess", pipeline.Preprocess(), pipeline.ApplyRequest{})
}

// FeaturesCmd implements the 'features' command.
type FeaturesCmd struct{}

func (f *FeaturesCmd) Run(g *Global, root *CLI) error {
	return runPipeline(g, root, "features", pipeline.Features(), pipeline.ApplyRequest{})
}

// RunCmd implements the 'run' command.
type RunCmd struct{}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	return runPipeline(g, root, "run", pipeline.Full(), pipeline.ApplyRequest{})
}

// ApplyCmd implements the 'apply' command.
type ApplyCmd struct {
	Input  string `required:"" type:"existingfile" help:"Cleaned CSV file to transform"`
	Output string `required:"" help:"Feature CSV file to write"`
	Params string `help:"Feature params file (defaults to the configured params file)"`
	Arrow  string `help:"Also write an Arrow IPC stream to this path"`
}

func (a *ApplyCmd) Run(g *Global, root *CLI) error {
	req := pipeline.ApplyRequest{Input: a.Input, Output: a.Output, Params: a.Params, Arrow: a.Arrow}
	return runPipeline(g, root, "apply", pipeline.ApplyOnly(), req)
}

func runPipeline(g *Global, root *CLI, command string, stages []pipeline.StageDef, req pipeline.ApplyRequest) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	logger := g.Logger()

	opts := []pipeline.Option{pipeline.WithLogger(logger)}

	var reg *prom.Registry
	if cfg.Metrics.Textfile != "" {
		reg = prom.NewRegistry()
		opts = append(opts, pipeline.WithObserver(pipeline.RecorderObserver{Recorder: metrics.NewPrometheusRecorder(reg)}))
	}

	if cfg.Ledger.Path != "" {
		store, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, pipeline.WithObserver(pipeline.LedgerObserver{Store: store, Logger: logger}))
	}

	report, runErr := pipeline.NewRunner(cfg, opts...).Run(g.Ctx, command, stages, req)

	if reg != nil {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
			logger.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
		}
	}

	printReport(g, cfg, report)
	return runErr
}

func printReport(g *Global, cfg *config.Config, report *pipeline.Report) {
	for _, s := range report.Stages {
		g.Printf("%-15s %-9s %6d rows %5d cols %9.1f ms\n", s.Name, s.Result, s.Rows, s.Columns, s.DurationMS)
	}
	for _, w := range report.Warnings() {
		g.Printf("warning: %s: %s\n", w.Stage, w.Message)
	}
	g.Printf("run %s %s (report: %s)\n", report.RunID, report.Outcome, cfg.ReportFilePath())
}
