package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"

	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
)

// WriteTextfile writes every metric gathered from reg to path in the text
// exposition format read by the node exporter textfile collector. The client
// library writes to a temporary file and renames it into place.
func WriteTextfile(path string, reg prom.Gatherer) error {
	if err := prom.WriteToTextfile(path, reg); err != nil {
		return ferrors.FileSystemError("failed to write metrics textfile").
			WithContext("path", path).WithCause(err).Build()
	}
	return nil
}
