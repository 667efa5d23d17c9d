package config

// DefaultNAValues returns the cell values read as missing when data.na_values
// is not set. The list matches the usual spreadsheet and dataframe spellings.
func DefaultNAValues() []string {
	return []string{
		"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
		"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
	}
}

// applyDefaults fills every optional field left empty by the document.
func applyDefaults(c *Config) {
	d := &c.Data
	if d.RawFile == "" {
		d.RawFile = "train.csv"
	}
	if d.ProcessedFile == "" {
		d.ProcessedFile = "train_processed.csv"
	}
	if d.FeaturesFile == "" {
		d.FeaturesFile = "train_features.csv"
	}
	if d.SchemaFile == "" {
		d.SchemaFile = "train_schema.yaml"
	}
	if d.NAValues == nil {
		d.NAValues = DefaultNAValues()
	}

	if c.Schema.IDColumn == "" {
		c.Schema.IDColumn = "Id"
	}
	if c.Schema.TargetColumn == "" {
		c.Schema.TargetColumn = "SalePrice"
	}

	if c.Preprocess.MissingLabel == "" {
		c.Preprocess.MissingLabel = "Missing"
	}
	if c.Preprocess.EmptyNumeric == "" {
		c.Preprocess.EmptyNumeric = EmptyNumericFill
	}

	if c.Features.ZeroVariance == "" {
		c.Features.ZeroVariance = ZeroVarianceZero
	}
	if c.Features.ParamsFile == "" {
		c.Features.ParamsFile = "feature_params.json"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}

	if c.Report.File == "" {
		c.Report.File = "run_report.json"
	}
}
