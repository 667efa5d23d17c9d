package commands

import (
	"time"

	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/ledger"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of runs to list" default:"10"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if cfg.Ledger.Path == "" {
		return ferrors.ConfigError("run ledger is not enabled").WithContext("key", "ledger.path").Build()
	}
	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(g.Ctx, h.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		g.Printf("no runs recorded\n")
		return nil
	}
	for _, r := range runs {
		outcome := r.Outcome
		if outcome == "" {
			outcome = "running"
		}
		g.Printf("%s  %s  %-10s %-9s %s\n", r.Started.Format(time.RFC3339), r.ID, r.Command, outcome, stagesLine(r))
	}
	return nil
}

func stagesLine(r ledger.Run) string {
	line := ""
	for _, ev := range r.Stages {
		if ev.Kind != ledger.EventFinished {
			continue
		}
		if line != "" {
			line += ","
		}
		line += ev.Stage + "=" + ev.Result
	}
	return line
}
