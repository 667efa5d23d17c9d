package commands

import (
	"github.com/Deshan-5/house-price-ml/internal/dataset"
	"github.com/Deshan-5/house-price-ml/internal/schema"
)

// SchemaCmd implements the 'schema' command.
type SchemaCmd struct{}

func (s *SchemaCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	samples, err := dataset.ReadSamples(cfg.RawFilePath(), dataset.ReadOptions{NAValues: cfg.Data.NAValues, Logger: g.Logger()})
	if err != nil {
		return err
	}
	resolved, err := schema.FromConfig(cfg.Schema).Resolve(samples)
	if err != nil {
		return err
	}
	data, err := resolved.Marshal()
	if err != nil {
		return err
	}
	_, err = g.Out.Write(data)
	return err
}
