package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/Deshan-5/house-price-ml/internal/config"
	"github.com/Deshan-5/house-price-ml/internal/logging"
)

// Global carries process-wide state into every command.
type Global struct {
	Ctx  context.Context
	Out  io.Writer
	Err  io.Writer
	Logs *logging.Provider
}

// Logger returns the process logger.
func (g *Global) Logger() *slog.Logger {
	return g.Logs.Logger()
}

// Printf writes a user-facing line to stdout.
func (g *Global) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(g.Out, format, args...)
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml" env:"HOUSING_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Preprocess PreprocessCmd `cmd:"" help:"Clean the raw training table"`
	Features   FeaturesCmd   `cmd:"" help:"Build the feature matrix from the cleaned table"`
	Run        RunCmd        `cmd:"" help:"Run preprocessing and feature building"`
	Apply      ApplyCmd      `cmd:"" help:"Apply stored feature parameters to another cleaned table"`
	Schema     SchemaCmd     `cmd:"" help:"Print the resolved schema of the raw table as YAML"`
	Init       InitCmd       `cmd:"" help:"Initialize a new configuration file"`
	History    HistoryCmd    `cmd:"" help:"List recent runs from the ledger"`
}

// AfterApply runs after flag parsing; set up logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	g.Logs = logging.NewProvider(g.Err, c.Verbose)
	return nil
}

// loadConfig loads the configuration file and hands its logging section to the
// provider before anything logs.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	g.Logs.Configure(cfg.Logging)
	logger := g.Logger()
	for _, w := range cfg.Warnings {
		logger.Warn("Configuration value normalized", slog.String("detail", w))
	}
	logger.Debug("Loaded configuration", slog.String("path", root.Config))
	return cfg, nil
}
