package schema

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deshan-5/house-price-ml/internal/config"
	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/fsutil"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

func sample(name string, cells ...string) Sample {
	missing := make([]bool, len(cells))
	for i, c := range cells {
		missing[i] = c == ""
	}
	return Sample{Name: name, Cells: cells, Missing: missing}
}

func TestResolve(t *testing.T) {
	s := FromConfig(config.SchemaConfig{
		IDColumn:     "Id",
		TargetColumn: "SalePrice",
		Columns:      map[string]table.Kind{"MSSubClass": table.Categorical},
	})

	r, err := s.Resolve([]Sample{
		sample("Id", "1", "2"),
		sample("MSSubClass", "60", "20"),
		sample("LotArea", "100", ""),
		sample("Street", "Pave", "Grvl"),
		sample("Alley", "", ""),
		sample("SalePrice", "200", "300"),
	})
	require.NoError(t, err)

	want := map[string]table.Kind{
		"Id":         table.Numeric,
		"MSSubClass": table.Categorical,
		"LotArea":    table.Numeric,
		"Street":     table.Categorical,
		"Alley":      table.Numeric,
		"SalePrice":  table.Numeric,
	}
	for name, kind := range want {
		got, ok := r.Kind(name)
		require.True(t, ok, name)
		assert.Equal(t, kind, got, name)
	}
	assert.Equal(t, []string{"Id", "LotArea", "Street", "Alley"}, r.Inferred())
	assert.Equal(t, []string{"Id", "MSSubClass", "LotArea", "Street", "Alley", "SalePrice"}, r.Names())
}

func TestResolveStrictRejectsUndeclared(t *testing.T) {
	s := Schema{ID: "Id", Target: "SalePrice", Strict: true, Declared: map[string]table.Kind{"LotArea": table.Numeric}}

	_, err := s.Resolve([]Sample{sample("Id", "1"), sample("LotArea", "1"), sample("SalePrice", "1")})
	require.NoError(t, err)

	_, err = s.Resolve([]Sample{sample("LotArea", "1"), sample("Street", "Pave"), sample("SalePrice", "1")})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Contains(t, err.Error(), "Street")
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name  string
		cells []string
		want  table.Kind
	}{
		{"integers", []string{"1", "2", " 3 "}, table.Numeric},
		{"floats", []string{"1.5", "-2e3"}, table.Numeric},
		{"text", []string{"1", "x"}, table.Categorical},
		{"infinity", []string{"Inf"}, table.Categorical},
		{"empty", nil, table.Numeric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKind(tt.cells, nil))
		})
	}
}

func TestCanonicalName(t *testing.T) {
	// "é" as e + combining acute accent collapses to the precomposed rune.
	assert.Equal(t, "Caf\u00e9", CanonicalName(" Cafe\u0301 "))
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "schema.yaml")
	r := &Resolved{ID: "Id", Target: "SalePrice", Fields: []Field{
		{Name: "LotArea", Kind: table.Numeric, Inferred: true},
		{Name: "MSSubClass", Kind: table.Categorical},
		{Name: "SalePrice", Kind: table.Numeric},
	}}
	require.NoError(t, fsutil.WriteAllAtomic(r.Artifact(path)))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, r, got)

	d := got.Declared()
	assert.True(t, d.Strict)
	assert.Equal(t, table.Categorical, d.Declared["MSSubClass"])
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryInput))
}

func TestWithout(t *testing.T) {
	r := &Resolved{Fields: []Field{{Name: "a"}, {Name: "b"}, {Name: "c"}}}
	assert.Equal(t, []string{"a", "c"}, r.Without("b").Names())
	assert.Len(t, r.Fields, 3)
}
