package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/fsutil"
	"github.com/Deshan-5/house-price-ml/internal/logging"
	"github.com/Deshan-5/house-price-ml/internal/schema"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

const rawCSV = `Id,MSSubClass,LotArea,Neighborhood,Alley,SalePrice
1,60,100,A,NA,200
2,20,,B,,300
3,60,300,,Pave,400
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func declared() schema.Schema {
	return schema.Schema{
		ID:       "Id",
		Target:   "SalePrice",
		Declared: map[string]table.Kind{"MSSubClass": table.Categorical},
	}
}

func TestLoadTable(t *testing.T) {
	path := writeFile(t, "train.csv", rawCSV)

	tbl, resolved, err := LoadTable(path, declared(), ReadOptions{Logger: logging.Discard()})
	require.NoError(t, err)

	assert.Equal(t, []string{"Id", "MSSubClass", "LotArea", "Neighborhood", "Alley", "SalePrice"}, tbl.Names())
	assert.Equal(t, 3, tbl.Rows())

	sub, _ := tbl.Column("MSSubClass")
	assert.Equal(t, table.Categorical, sub.Kind)
	assert.Equal(t, []string{"60", "20", "60"}, sub.Strings)

	lot, _ := tbl.Column("LotArea")
	assert.Equal(t, table.Numeric, lot.Kind)
	assert.Equal(t, []bool{false, true, false}, lot.Missing)
	assert.Equal(t, 100.0, lot.Floats[0])
	assert.Equal(t, 300.0, lot.Floats[2])

	hood, _ := tbl.Column("Neighborhood")
	assert.Equal(t, table.Categorical, hood.Kind)
	assert.Equal(t, []bool{false, false, true}, hood.Missing)

	alley, _ := tbl.Column("Alley")
	assert.Equal(t, table.Categorical, alley.Kind)
	assert.Equal(t, 2, alley.MissingCount())

	assert.ElementsMatch(t, []string{"Id", "LotArea", "Neighborhood", "Alley"}, resolved.Inferred())
}

func TestLoadTableErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		schema   schema.Schema
		category ferrors.ErrorCategory
		contains string
	}{
		{
			name:     "header only",
			content:  "Id,SalePrice\n",
			schema:   declared(),
			category: ferrors.CategoryInput,
			contains: "train.csv",
		},
		{
			name:    "declared numeric with text",
			content: "LotArea,SalePrice\n10,1\nbig,2\n",
			schema: schema.Schema{Target: "SalePrice", Declared: map[string]table.Kind{
				"LotArea": table.Numeric,
			}},
			category: ferrors.CategoryInput,
			contains: "LotArea",
		},
		{
			name:     "target with text",
			content:  "LotArea,SalePrice\n10,cheap\n",
			schema:   declared(),
			category: ferrors.CategoryInput,
			contains: "SalePrice",
		},
		{
			name:     "duplicate header",
			content:  "Id,LotArea,LotArea,SalePrice\n1,10,20,1\n",
			schema:   declared(),
			category: ferrors.CategoryInput,
			contains: "duplicate column name in header column=LotArea",
		},
		{
			name:     "duplicate after normalization",
			content:  "LotArea, LotArea ,SalePrice\n10,20,1\n",
			schema:   declared(),
			category: ferrors.CategoryInput,
			contains: "column=LotArea",
		},
		{
			name:     "empty header",
			content:  "Id,,SalePrice\n1,10,1\n",
			schema:   declared(),
			category: ferrors.CategoryInput,
			contains: "empty column name in header",
		},
		{
			name:     "empty file",
			content:  "",
			schema:   declared(),
			category: ferrors.CategoryInput,
			contains: "CSV file is empty",
		},
		{
			name:     "strict undeclared",
			content:  "LotArea,SalePrice\n10,1\n",
			schema:   schema.Schema{Target: "SalePrice", Strict: true},
			category: ferrors.CategoryConfig,
			contains: "LotArea",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "train.csv", tt.content)
			_, _, err := LoadTable(path, tt.schema, ReadOptions{Logger: logging.Discard()})
			require.Error(t, err)
			assert.Equal(t, tt.category, ferrors.GetCategory(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestDefaultNAValuesMarkMissing(t *testing.T) {
	path := writeFile(t, "train.csv", "LotArea,Street,SalePrice\nnan,None,1\n30,Pave,2\nN/A,#N/A,3\n")
	tbl, resolved, err := LoadTable(path, schema.Schema{Target: "SalePrice"}, ReadOptions{Logger: logging.Discard()})
	require.NoError(t, err)

	kind, _ := resolved.Kind("LotArea")
	assert.Equal(t, table.Numeric, kind)
	lot, _ := tbl.Column("LotArea")
	assert.Equal(t, []bool{true, false, true}, lot.Missing)

	street, _ := tbl.Column("Street")
	assert.Equal(t, 2, street.MissingCount())
}

func TestLoadTableMissingFile(t *testing.T) {
	_, _, err := LoadTable(filepath.Join(t.TempDir(), "train.csv"), declared(), ReadOptions{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryInput))
}

func TestTableArtifactRoundTrip(t *testing.T) {
	src, err := table.FromColumns(
		table.NewNumeric("LotArea", []float64{100, 0.1, 1e-7}, nil),
		table.NewCategorical("Street", []string{"Pave", "Grvl, paved", "Pave"}, nil),
		table.NewNumeric("SalePrice", []float64{200, 300, 400}, nil),
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "train_processed.csv")
	require.NoError(t, fsutil.WriteAllAtomic(TableArtifact(path, src)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, "LotArea,Street,SalePrice", lines[0])
	assert.Equal(t, "100,Pave,200", lines[1])

	resolved := schema.FromTable(src, "", "SalePrice")
	got, _, err := LoadTable(path, resolved.Declared(), ReadOptions{Logger: logging.Discard()})
	require.NoError(t, err)
	for _, name := range src.Names() {
		want, _ := src.Column(name)
		have, _ := got.Column(name)
		assert.Equal(t, want.Floats, have.Floats, name)
		assert.Equal(t, want.Strings, have.Strings, name)
	}
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "-1", FormatFloat(-1))
	assert.Equal(t, "0.1", FormatFloat(0.1))
	assert.Equal(t, "215000", FormatFloat(215000))
}

func TestArrowRoundTrip(t *testing.T) {
	src, err := table.FromColumns(
		table.NewNumeric("LotArea_z", []float64{-1, 0, 1}, nil),
		table.NewCategorical("Street", []string{"Pave", "", "Grvl"}, []bool{false, true, false}),
		table.NewNumeric("SalePrice", []float64{200, 300, 400}, nil),
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "features.arrows")
	require.NoError(t, fsutil.WriteAllAtomic(ArrowArtifact(path, src)))

	got, err := ReadArrow(path)
	require.NoError(t, err)
	assert.Equal(t, src.Names(), got.Names())

	z, _ := got.Column("LotArea_z")
	assert.Equal(t, []float64{-1, 0, 1}, z.Floats)
	street, _ := got.Column("Street")
	assert.Equal(t, []bool{false, true, false}, street.Missing)
	assert.Equal(t, "Grvl", street.Strings[2])
}

func TestEncodeArrow(t *testing.T) {
	mem := memory.NewGoAllocator()
	src, err := table.FromColumns(table.NewNumeric("x", []float64{1, 2}, nil))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeArrow(&buf, src, mem))
	assert.NotZero(t, buf.Len())
}
