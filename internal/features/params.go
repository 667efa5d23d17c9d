package features

import (
	"encoding/json"
	"fmt"
	"io"

	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/fsutil"
	"github.com/Deshan-5/house-price-ml/internal/schema"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

// Marshal renders p as indented JSON.
func (p *Params) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal feature params: %w", err)
	}
	return append(data, '\n'), nil
}

// Encode writes the JSON form of p to w.
func (p *Params) Encode(w io.Writer) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return ferrors.FileSystemError("failed to write feature params").WithCause(err).Build()
	}
	return nil
}

// Artifact persists p at path.
func (p *Params) Artifact(path string) fsutil.Artifact {
	return fsutil.Artifact{Path: path, Fill: p.Encode}
}

// ReadParams loads parameters written by Artifact.
func ReadParams(path string) (*Params, error) {
	data, err := fsutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, ferrors.InputError("malformed feature params").WithContext("path", path).WithCause(err).Build()
	}
	if p.Version != ParamsVersion {
		return nil, ferrors.InputError("unsupported feature params version").
			WithContext("path", path).WithContext("version", p.Version).Build()
	}
	for _, s := range p.Numeric {
		if s.Scale == 0 {
			return nil, ferrors.InputError("feature params have a zero scale").
				WithContext("path", path).WithContext("column", s.Column).Build()
		}
	}
	return &p, nil
}

// Schema returns the declared schema of the tables p can transform. Columns
// p does not know are left to inference.
func (p *Params) Schema() schema.Schema {
	s := schema.Schema{Target: p.Target, Declared: make(map[string]table.Kind, len(p.Numeric)+len(p.Categorical))}
	for _, n := range p.Numeric {
		s.Declared[n.Column] = table.Numeric
	}
	for _, e := range p.Categorical {
		s.Declared[e.Column] = table.Categorical
	}
	return s
}
