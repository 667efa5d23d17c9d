package features

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Deshan-5/house-price-ml/internal/config"
	"github.com/Deshan-5/house-price-ml/internal/dataset"
	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/fsutil"
	"github.com/Deshan-5/house-price-ml/internal/logging"
	"github.com/Deshan-5/house-price-ml/internal/schema"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

func opts() Options {
	return Options{TargetColumn: "SalePrice", ZeroVariance: config.ZeroVarianceZero, Logger: logging.Discard()}
}

func mustTable(t *testing.T, cols ...*table.Column) *table.Table {
	t.Helper()
	tbl, err := table.FromColumns(cols...)
	require.NoError(t, err)
	return tbl
}

func cleaned(t *testing.T) *table.Table {
	return mustTable(t,
		table.NewNumeric("LotArea", []float64{100, 300, 200, 400}, nil),
		table.NewCategorical("Street", []string{"Pave", "Grvl", "Pave", "Dirt"}, nil),
		table.NewNumeric("YearBuilt", []float64{1990, 2000, 2010, 1970}, nil),
		table.NewCategorical("Alley", []string{"Missing", "Missing", "Pave", "Missing"}, nil),
		table.NewNumeric("SalePrice", []float64{4, 3, 2, 1}, nil),
	)
}

func TestStandardizeScenario(t *testing.T) {
	tbl := mustTable(t,
		table.NewNumeric("LotArea", []float64{100, 300}, nil),
		table.NewNumeric("SalePrice", []float64{200000, 150000}, nil),
	)
	m, p, err := Build(tbl, opts())
	require.NoError(t, err)

	col, ok := m.Col("LotArea")
	require.True(t, ok)
	assert.Equal(t, []float64{-1, 1}, col)
	assert.Equal(t, Standardizer{Column: "LotArea", Mean: 200, Scale: 100}, p.Numeric[0])
	assert.Equal(t, []float64{200000, 150000}, m.Target)
}

func TestBuildLayout(t *testing.T) {
	m, p, err := Build(cleaned(t), opts())
	require.NoError(t, err)

	want := []string{"LotArea", "YearBuilt", "Street_Pave", "Street_Grvl", "Street_Dirt", "Alley_Missing", "Alley_Pave"}
	assert.Equal(t, want, m.Names)
	assert.Equal(t, want, p.Names())
	r, c := m.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 7, c)

	out, err := m.ToTable()
	require.NoError(t, err)
	assert.Equal(t, append(want, "SalePrice"), out.Names())
	price, _ := out.Column("SalePrice")
	assert.Equal(t, []float64{4, 3, 2, 1}, price.Floats)
}

func TestStandardizedMoments(t *testing.T) {
	m, _, err := Build(cleaned(t), opts())
	require.NoError(t, err)
	for _, name := range []string{"LotArea", "YearBuilt"} {
		col, _ := m.Col(name)
		mean, std := stat.PopMeanStdDev(col, nil)
		assert.InDelta(t, 0, mean, 1e-12, name)
		assert.InDelta(t, 1, std, 1e-12, name)
	}
}

func TestIndicatorsSumToOne(t *testing.T) {
	m, p, err := Build(cleaned(t), opts())
	require.NoError(t, err)
	r, _ := m.Dims()
	for _, e := range p.Categorical {
		for i := 0; i < r; i++ {
			sum := 0.0
			for _, name := range e.Names() {
				col, _ := m.Col(name)
				sum += col[i]
			}
			assert.Equal(t, 1.0, sum, "%s row %d", e.Column, i)
		}
	}
}

func TestTransformUnknownCategoryAndNoTarget(t *testing.T) {
	_, p, err := Build(cleaned(t), opts())
	require.NoError(t, err)

	scoring := mustTable(t,
		table.NewNumeric("LotArea", []float64{250}, nil),
		table.NewCategorical("Street", []string{"Gravel road"}, nil),
		table.NewNumeric("YearBuilt", []float64{1992.5}, nil),
		table.NewCategorical("Alley", []string{"Pave"}, nil),
		table.NewCategorical("Extra", []string{"ignored"}, nil),
	)
	m, err := p.Transform(scoring)
	require.NoError(t, err)
	assert.Nil(t, m.Target)

	for _, name := range []string{"Street_Pave", "Street_Grvl", "Street_Dirt"} {
		col, _ := m.Col(name)
		assert.Equal(t, []float64{0}, col, name)
	}
	alley, _ := m.Col("Alley_Pave")
	assert.Equal(t, []float64{1}, alley)

	out, err := m.ToTable()
	require.NoError(t, err)
	assert.NotContains(t, out.Names(), "SalePrice")
}

func TestZeroVariancePolicies(t *testing.T) {
	tbl := func() *table.Table {
		return mustTable(t,
			table.NewNumeric("Flat", []float64{0.1, 0.1, 0.1}, nil),
			table.NewNumeric("SalePrice", []float64{1, 2, 3}, nil),
		)
	}

	m, p, err := Build(tbl(), opts())
	require.NoError(t, err)
	col, _ := m.Col("Flat")
	assert.Equal(t, []float64{0, 0, 0}, col)
	assert.True(t, p.Numeric[0].Constant)
	require.Len(t, p.Warnings, 1)
	assert.Contains(t, p.Warnings[0], "Flat")

	o := opts()
	o.ZeroVariance = config.ZeroVarianceFail
	_, _, err = Build(tbl(), o)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryStatistic))
	assert.Contains(t, err.Error(), "Flat")
}

func TestOverflowingColumnIsStatisticError(t *testing.T) {
	tbl := mustTable(t,
		table.NewNumeric("Huge", []float64{-1e308, 1e308}, nil),
		table.NewNumeric("SalePrice", []float64{1, 2}, nil),
	)
	_, _, err := Build(tbl, opts())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryStatistic))
	assert.Contains(t, err.Error(), "Huge")
}

func TestOneHotEncode(t *testing.T) {
	e := FitOneHotEncoder(table.NewCategorical("Street", []string{"Pave", "NaN", "", "Pave"}, nil))
	require.Equal(t, []string{"Pave", "NaN", ""}, e.Categories)
	assert.Equal(t, []string{"Street_Pave", "Street_NaN", "Street_"}, e.Names())

	got, err := e.Encode([]string{"", "Pave", "Dirt", "NaN"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{1, 0, 0, 0},
	}, got)
}

func TestEmptyBlocks(t *testing.T) {
	onlyTarget := mustTable(t, table.NewNumeric("SalePrice", []float64{1, 2}, nil))
	m, p, err := Build(onlyTarget, opts())
	require.NoError(t, err)
	assert.Empty(t, m.Names)
	assert.Zero(t, p.Width())
	out, err := m.ToTable()
	require.NoError(t, err)
	assert.Equal(t, []string{"SalePrice"}, out.Names())
	assert.Equal(t, 2, out.Rows())

	onlyCategorical := mustTable(t,
		table.NewCategorical("Street", []string{"a", "b"}, nil),
		table.NewNumeric("SalePrice", []float64{1, 2}, nil),
	)
	m, _, err = Build(onlyCategorical, opts())
	require.NoError(t, err)
	assert.Equal(t, []string{"Street_a", "Street_b"}, m.Names)
}

func TestBuildInputErrors(t *testing.T) {
	tests := []struct {
		name string
		tbl  func(t *testing.T) *table.Table
		want string
	}{
		{
			name: "no target",
			tbl: func(t *testing.T) *table.Table {
				return mustTable(t, table.NewNumeric("A", []float64{1}, nil))
			},
			want: "SalePrice",
		},
		{
			name: "non-finite",
			tbl: func(t *testing.T) *table.Table {
				return mustTable(t,
					table.NewNumeric("A", []float64{1, math.Inf(1)}, nil),
					table.NewNumeric("SalePrice", []float64{1, 2}, nil))
			},
			want: "row=2",
		},
		{
			name: "missing categorical",
			tbl: func(t *testing.T) *table.Table {
				return mustTable(t,
					table.NewCategorical("B", []string{"x", ""}, []bool{false, true}),
					table.NewNumeric("SalePrice", []float64{1, 2}, nil))
			},
			want: "column=B",
		},
		{
			name: "name collision",
			tbl: func(t *testing.T) *table.Table {
				return mustTable(t,
					table.NewNumeric("Street_x", []float64{1, 2}, nil),
					table.NewCategorical("Street", []string{"x", "y"}, nil),
					table.NewNumeric("SalePrice", []float64{1, 2}, nil))
			},
			want: "Street_x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, err := Build(tt.tbl(t), opts())
			if err == nil {
				_, err = m.ToTable()
			}
			require.Error(t, err)
			assert.True(t, ferrors.HasCategory(err, ferrors.CategoryInput))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParamsRoundTrip(t *testing.T) {
	tbl := cleaned(t)
	m, p, err := Build(tbl, opts())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "feature_params.json")
	require.NoError(t, fsutil.WriteAllAtomic(p.Artifact(path)))
	loaded, err := ReadParams(path)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	again, err := loaded.Transform(tbl)
	require.NoError(t, err)
	for _, name := range m.Names {
		a, _ := m.Col(name)
		b, _ := again.Col(name)
		assert.True(t, floats.Equal(a, b), name)
	}
}

func TestReadParamsRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"malformed.json": "{",
		"version.json":   `{"version": 99, "target": "SalePrice"}`,
		"scale.json":     `{"version": 1, "target": "SalePrice", "numeric": [{"column": "A", "mean": 1, "scale": 0}]}`,
	}
	for name, content := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		_, err := ReadParams(path)
		require.Error(t, err, name)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryInput), name)
	}
}

func TestRunAndApply(t *testing.T) {
	dir := t.TempDir()
	processed := filepath.Join(dir, "train_processed.csv")
	require.NoError(t, os.WriteFile(processed, []byte("MSSubClass,LotArea,SalePrice\n60,100,200000\n20,300,150000\n"), 0o600))

	resolved := &schema.Resolved{Target: "SalePrice", Fields: []schema.Field{
		{Name: "MSSubClass", Kind: table.Categorical},
		{Name: "LotArea", Kind: table.Numeric},
		{Name: "SalePrice", Kind: table.Numeric},
	}}
	schemaPath := filepath.Join(dir, "train_schema.yaml")
	require.NoError(t, fsutil.WriteAllAtomic(resolved.Artifact(schemaPath)))

	a := Artifacts{
		Processed: processed,
		Schema:    schemaPath,
		Features:  filepath.Join(dir, "train_features.csv"),
		Params:    filepath.Join(dir, "feature_params.json"),
		Arrow:     filepath.Join(dir, "train_features.arrows"),
	}
	res, err := Run(context.Background(), a, dataset.ReadOptions{Logger: logging.Discard()}, opts())
	require.NoError(t, err)
	assert.Equal(t, []string{"LotArea", "MSSubClass_60", "MSSubClass_20", "SalePrice"}, res.Table.Names())

	data, err := os.ReadFile(a.Features)
	require.NoError(t, err)
	assert.Equal(t, "LotArea,MSSubClass_60,MSSubClass_20,SalePrice\n-1,1,0,200000\n1,0,1,150000\n", string(data))
	assert.FileExists(t, a.Params)

	arrowTable, err := dataset.ReadArrow(a.Arrow)
	require.NoError(t, err)
	assert.Equal(t, res.Table.Names(), arrowTable.Names())

	input := filepath.Join(dir, "holdout.csv")
	require.NoError(t, os.WriteFile(input, []byte("LotArea,MSSubClass\n200,90\n"), 0o600))
	applied, err := Apply(context.Background(), ApplyArtifacts{
		Input:  input,
		Params: a.Params,
		Output: filepath.Join(dir, "holdout_features.csv"),
	}, dataset.ReadOptions{Logger: logging.Discard()}, opts())
	require.NoError(t, err)
	assert.Nil(t, applied.Matrix.Target)

	data, err = os.ReadFile(filepath.Join(dir, "holdout_features.csv"))
	require.NoError(t, err)
	assert.Equal(t, "LotArea,MSSubClass_60,MSSubClass_20\n0,0,0\n", string(data))
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	processed := filepath.Join(dir, "p.csv")
	require.NoError(t, os.WriteFile(processed, []byte("SalePrice\n1\n"), 0o600))
	resolved := &schema.Resolved{Target: "SalePrice", Fields: []schema.Field{{Name: "SalePrice", Kind: table.Numeric}}}
	schemaPath := filepath.Join(dir, "s.yaml")
	require.NoError(t, fsutil.WriteAllAtomic(resolved.Artifact(schemaPath)))

	_, err := Run(ctx, Artifacts{Processed: processed, Schema: schemaPath, Features: filepath.Join(dir, "f.csv"), Params: filepath.Join(dir, "p.json")},
		dataset.ReadOptions{Logger: logging.Discard()}, opts())
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "f.csv"))
}
