package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Deshan-5/house-price-ml/internal/table"
)

// Config is the pipeline configuration document.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Schema     SchemaConfig     `yaml:"schema"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Features   FeaturesConfig   `yaml:"features"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Ledger     LedgerConfig     `yaml:"ledger"`
	Report     ReportConfig     `yaml:"report"`

	// Warnings lists values rewritten during normalization.
	Warnings []string `yaml:"-"`
}

// DataConfig locates the raw and processed artifacts.
type DataConfig struct {
	RawPath       string   `yaml:"raw_path"`
	ProcessedPath string   `yaml:"processed_path"`
	RawFile       string   `yaml:"raw_file,omitempty"`
	ProcessedFile string   `yaml:"processed_file,omitempty"`
	FeaturesFile  string   `yaml:"features_file,omitempty"`
	SchemaFile    string   `yaml:"schema_file,omitempty"`
	NAValues      []string `yaml:"na_values,omitempty"` // cell values read as missing
}

// SchemaConfig declares the identifier, target and column kinds.
type SchemaConfig struct {
	IDColumn     string                `yaml:"id_column"`
	TargetColumn string                `yaml:"target_column"`
	Strict       bool                  `yaml:"strict,omitempty"` // reject undeclared columns
	Columns      map[string]table.Kind `yaml:"columns,omitempty"`
}

// PreprocessConfig controls imputation.
type PreprocessConfig struct {
	MissingLabel      string             `yaml:"missing_label"`
	EmptyNumeric      EmptyNumericPolicy `yaml:"empty_numeric"`
	EmptyNumericValue float64            `yaml:"empty_numeric_value"`
}

// FeaturesConfig controls scaling, encoding and feature artifacts.
type FeaturesConfig struct {
	ZeroVariance ZeroVariancePolicy `yaml:"zero_variance"`
	ParamsFile   string             `yaml:"params_file,omitempty"`
	ArrowFile    string             `yaml:"arrow_file,omitempty"` // optional Arrow IPC stream of the matrix
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// LedgerConfig enables the SQLite run ledger.
type LedgerConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ReportConfig names the run report artifact.
type ReportConfig struct {
	File string `yaml:"file,omitempty"`
}

// Load loads, normalizes, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, configErr("configuration file not found", err).WithContext("path", configPath).Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, configErr("failed to read config file", err).WithContext("path", configPath).Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a configuration document held in memory. Environment variables
// are expanded before decoding.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, configErr("failed to unmarshal config", err).Build()
	}

	res, err := NormalizeConfig(&cfg)
	if err != nil {
		return nil, err
	}
	cfg.Warnings = res.Warnings
	applyDefaults(&cfg)
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RawFilePath is the full path of the raw input table.
func (c *Config) RawFilePath() string {
	return filepath.Join(c.Data.RawPath, c.Data.RawFile)
}

// ProcessedFilePath is the full path of the cleaned table.
func (c *Config) ProcessedFilePath() string {
	return c.processed(c.Data.ProcessedFile)
}

// FeaturesFilePath is the full path of the feature matrix.
func (c *Config) FeaturesFilePath() string {
	return c.processed(c.Data.FeaturesFile)
}

// SchemaFilePath is the full path of the resolved schema written by the preprocessor.
func (c *Config) SchemaFilePath() string {
	return c.processed(c.Data.SchemaFile)
}

// ParamsFilePath is the full path of the fitted feature parameters.
func (c *Config) ParamsFilePath() string {
	return c.processed(c.Features.ParamsFile)
}

// ArrowFilePath is the full path of the Arrow feature stream, or "" when disabled.
func (c *Config) ArrowFilePath() string {
	if c.Features.ArrowFile == "" {
		return ""
	}
	return c.processed(c.Features.ArrowFile)
}

// ReportFilePath is the full path of the run report.
func (c *Config) ReportFilePath() string {
	return c.processed(c.Report.File)
}

// processed resolves name against the processed directory unless it is absolute.
func (c *Config) processed(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Data.ProcessedPath, name)
}

// Example returns the configuration written by Init.
func Example() *Config {
	cfg := &Config{
		Data: DataConfig{
			RawPath:       "data/raw",
			ProcessedPath: "data/processed",
			NAValues:      DefaultNAValues(),
		},
		Schema: SchemaConfig{
			IDColumn:     "Id",
			TargetColumn: "SalePrice",
			Columns: map[string]table.Kind{
				"MSSubClass": table.Categorical,
				"MoSold":     table.Categorical,
			},
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Ledger:  LedgerConfig{Path: "data/processed/runs.db"},
	}
	applyDefaults(cfg)
	return cfg
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return configErr("configuration file already exists (use --force to overwrite)", nil).
			WithContext("path", configPath).Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return configErr("failed to create config directory", err).WithContext("path", dir).Build()
		}
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return configErr("failed to write config file", err).WithContext("path", configPath).Build()
	}
	return nil
}
