package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deshan-5/house-price-ml/internal/config"
)

func TestLevelPrecedence(t *testing.T) {
	t.Setenv(EnvLevel, "")
	assert.Equal(t, slog.LevelInfo, Level(config.LogLevelInfo, false))
	assert.Equal(t, slog.LevelWarn, Level(config.LogLevelWarn, false))
	assert.Equal(t, slog.LevelDebug, Level(config.LogLevelError, true))

	t.Setenv(EnvLevel, "ERROR")
	assert.Equal(t, slog.LevelError, Level(config.LogLevelDebug, false))
	assert.Equal(t, slog.LevelDebug, Level(config.LogLevelInfo, true))
}

func TestProviderBuildsOnceFromConfig(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	p := NewProvider(&buf, false)
	p.Configure(config.LoggingConfig{Level: config.LogLevelDebug, Format: config.LogFormatJSON})

	l := p.Logger()
	l.Debug("loaded raw data", "rows", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "loaded raw data", rec["msg"])
	assert.EqualValues(t, 2, rec["rows"])

	// Configuration after first use is ignored.
	p.Configure(config.LoggingConfig{Level: config.LogLevelError, Format: config.LogFormatText})
	assert.Same(t, l, p.Logger())
}

func TestTextFormatAndDiscard(t *testing.T) {
	t.Setenv(EnvLevel, "")
	var buf bytes.Buffer
	New(&buf, config.LoggingConfig{Level: config.LogLevelInfo, Format: config.LogFormatText}, false).
		Info("saved", "path", "/tmp/x.csv")
	assert.Contains(t, buf.String(), "path=/tmp/x.csv")

	assert.NotPanics(t, func() { Discard().Error("dropped") })
	assert.Same(t, slog.Default(), OrDefault(nil))
}
