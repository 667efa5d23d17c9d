package schema

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/fsutil"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

// Marshal renders the resolved schema as YAML.
func (r *Resolved) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

// Encode writes the YAML form of r to w.
func (r *Resolved) Encode(w io.Writer) error {
	data, err := r.Marshal()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return ferrors.FileSystemError("failed to write schema").WithCause(err).Build()
	}
	return nil
}

// Artifact persists the resolved schema at path.
func (r *Resolved) Artifact(path string) fsutil.Artifact {
	return fsutil.Artifact{Path: path, Fill: r.Encode}
}

// ReadFile loads a schema written by Artifact.
func ReadFile(path string) (*Resolved, error) {
	data, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Resolved
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, ferrors.InputError("malformed schema file").WithContext("path", path).WithCause(err).Build()
	}
	for _, f := range r.Fields {
		if !f.Kind.Valid() {
			return nil, ferrors.InputError("invalid column kind in schema file").
				WithContext("path", path).WithContext("column", f.Name).Build()
		}
	}
	if k, ok := r.Kind(r.Target); ok && k != table.Numeric {
		return nil, ferrors.InputError("target column must be numeric").
			WithContext("path", path).WithContext("column", r.Target).Build()
	}
	return &r, nil
}
