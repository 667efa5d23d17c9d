// Package logging builds the process logger from configuration.
//
// The logger is created lazily by a Provider: the CLI knows the --verbose flag
// before it has read the configuration file, so the handler is only built the
// first time a stage asks for it. Stages receive the *slog.Logger explicitly and
// never touch global logging state.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/Deshan-5/house-price-ml/internal/config"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "HOUSING_LOG_LEVEL"

// Provider lazily builds a single *slog.Logger.
type Provider struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
	cfg     config.LoggingConfig
	logger  *slog.Logger
}

// NewProvider creates a provider writing to w (stderr when nil).
func NewProvider(w io.Writer, verbose bool) *Provider {
	if w == nil {
		w = os.Stderr
	}
	return &Provider{
		w:       w,
		verbose: verbose,
		cfg:     config.LoggingConfig{Level: config.LogLevelInfo, Format: config.LogFormatText},
	}
}

// Configure records the logging section of the configuration. It has no effect
// once Logger has been called.
func (p *Provider) Configure(cfg config.LoggingConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.logger != nil {
		return
	}
	p.cfg = cfg
}

// Logger returns the process logger, building it on first use.
func (p *Provider) Logger() *slog.Logger {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.logger == nil {
		p.logger = New(p.w, p.cfg, p.verbose)
	}
	return p.logger
}

// New builds a logger. --verbose wins over the environment, which wins over config.
func New(w io.Writer, cfg config.LoggingConfig, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: Level(cfg.Level, verbose)}
	var h slog.Handler
	if cfg.Format == config.LogFormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Level resolves the effective slog level.
func Level(configured config.LogLevel, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	if env := strings.TrimSpace(os.Getenv(EnvLevel)); env != "" {
		configured = config.LogLevel(strings.ToLower(env))
	}
	switch configured {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn, "warning":
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OrDefault returns l, or slog.Default when l is nil.
func OrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
