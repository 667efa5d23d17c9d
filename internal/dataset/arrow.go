package dataset

import (
	"io"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
	"github.com/Deshan-5/house-price-ml/internal/fsutil"
	"github.com/Deshan-5/house-price-ml/internal/table"
)

// ArrowArtifact writes t as a single-batch Arrow IPC stream. Numeric columns
// become float64 fields and categorical columns utf8 fields; missing cells are
// nulls.
func ArrowArtifact(path string, t *table.Table) fsutil.Artifact {
	return fsutil.Artifact{Path: path, Fill: func(w io.Writer) error {
		return EncodeArrow(w, t, memory.DefaultAllocator)
	}}
}

// EncodeArrow writes t to w as an Arrow IPC stream.
func EncodeArrow(w io.Writer, t *table.Table, mem memory.Allocator) error {
	rec := buildRecord(t, mem)
	defer rec.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return ferrors.InternalError("failed to write arrow record").WithCause(err).Build()
	}
	if err := writer.Close(); err != nil {
		return ferrors.InternalError("failed to close arrow writer").WithCause(err).Build()
	}
	return nil
}

func arrowSchema(t *table.Table) *arrow.Schema {
	fields := make([]arrow.Field, 0, t.Cols())
	for _, c := range t.Columns() {
		typ := arrow.DataType(arrow.PrimitiveTypes.Float64)
		if c.Kind == table.Categorical {
			typ = arrow.BinaryTypes.String
		}
		fields = append(fields, arrow.Field{Name: c.Name, Type: typ, Nullable: c.Missing != nil})
	}
	return arrow.NewSchema(fields, nil)
}

func buildRecord(t *table.Table, mem memory.Allocator) arrow.Record {
	b := array.NewRecordBuilder(mem, arrowSchema(t))
	defer b.Release()

	for i, c := range t.Columns() {
		valid := validity(c)
		switch fb := b.Field(i).(type) {
		case *array.Float64Builder:
			fb.AppendValues(c.Floats, valid)
		case *array.StringBuilder:
			fb.AppendValues(c.Strings, valid)
		}
	}
	return b.NewRecord()
}

func validity(c *table.Column) []bool {
	if c.Missing == nil {
		return nil
	}
	valid := make([]bool, len(c.Missing))
	for i, m := range c.Missing {
		valid[i] = !m
	}
	return valid
}

// ReadArrow loads every record batch of an Arrow IPC stream into a table.
// Only float64 and utf8 fields are supported.
func ReadArrow(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fsutil.OpenError(path, err)
	}
	defer func() { _ = f.Close() }()

	reader, err := ipc.NewReader(f)
	if err != nil {
		return nil, ferrors.InputError("malformed arrow stream").WithContext("path", path).WithCause(err).Build()
	}
	defer reader.Release()

	sc := reader.Schema()
	cols := make([]*table.Column, sc.NumFields())
	for i, field := range sc.Fields() {
		switch field.Type.ID() {
		case arrow.FLOAT64:
			cols[i] = table.NewNumeric(field.Name, nil, nil)
		case arrow.STRING:
			cols[i] = table.NewCategorical(field.Name, nil, nil)
		default:
			return nil, ferrors.InputError("unsupported arrow field type").
				WithContext("path", path).WithContext("column", field.Name).
				WithContext("type", field.Type.String()).Build()
		}
		cols[i].Missing = []bool{}
	}

	for reader.Next() {
		rec := reader.Record()
		for i := range cols {
			switch arr := rec.Column(i).(type) {
			case *array.Float64:
				for j := 0; j < arr.Len(); j++ {
					cols[i].Floats = append(cols[i].Floats, arr.Value(j))
					cols[i].Missing = append(cols[i].Missing, arr.IsNull(j))
				}
			case *array.String:
				for j := 0; j < arr.Len(); j++ {
					cols[i].Strings = append(cols[i].Strings, arr.Value(j))
					cols[i].Missing = append(cols[i].Missing, arr.IsNull(j))
				}
			}
		}
	}
	if err := reader.Err(); err != nil {
		return nil, ferrors.InputError("malformed arrow stream").WithContext("path", path).WithCause(err).Build()
	}

	t, err := table.FromColumns(cols...)
	if err != nil {
		return nil, ferrors.InputError("inconsistent arrow stream").WithContext("path", path).WithCause(err).Build()
	}
	return t, nil
}
