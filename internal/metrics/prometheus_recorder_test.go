package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("preprocess", 150*time.Millisecond)
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.IncStageResult("preprocess", ResultSuccess)
	pr.IncStageResult("build_features", ResultWarning)
	pr.IncRunOutcome("warning")
	pr.SetStageShape("build_features", 1460, 288)
	pr.AddImputedCells("numeric", 348)
	pr.AddImputedCells("categorical", 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	assert.Equal(t, 1.0, testutil.ToFloat64(pr.stageResults.WithLabelValues("build_features", "warning")))
	assert.Equal(t, 288.0, testutil.ToFloat64(pr.stageColumns.WithLabelValues("build_features")))
	assert.Equal(t, 348.0, testutil.ToFloat64(pr.imputedCells.WithLabelValues("numeric")))
	assert.Equal(t, 1, testutil.CollectAndCount(pr.imputedCells))
	assert.Same(t, reg, pr.Registry())
}

func TestNilPrometheusRecorder(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveStageDuration("preprocess", time.Second)
		pr.IncRunOutcome("failed")
		pr.SetStageShape("preprocess", 1, 1)
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncRunOutcome("success")

	path := filepath.Join(t.TempDir(), "housing.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `housing_run_outcomes_total{outcome="success"} 1`))
}

func TestWriteTextfileBadDirectory(t *testing.T) {
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "housing.prom"), prom.NewRegistry())
	require.Error(t, err)
}
