// Package metrics provides the observability hooks for pipeline runs.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default, so callers never nil-check:
//
//	recorder := metrics.Recorder(metrics.NoopRecorder{})
//	if cfg.Metrics.Textfile != "" {
//	    recorder = metrics.NewPrometheusRecorder(prom.NewRegistry())
//	}
//
// A batch run has no scrape endpoint, so the Prometheus registry is flushed to a
// node exporter textfile with WriteTextfile once the run has finished.
package metrics
