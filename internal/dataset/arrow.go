package dataset

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// ArrowTable adapts an Arrow record batch to the Dataset interface so the
// aggregator runs unchanged over columnar storage. Numeric columns must be
// float64 or int64, categorical columns string; Arrow nulls surface as
// missing values.
//
// The table retains the record; callers must Release() it when done, per
// Arrow memory discipline.
type ArrowTable struct {
	rec   arrow.Record
	cols  []string
	index map[string]int
}

// NewArrowTable wraps a record batch, validating that every column carries a
// supported type.
func NewArrowTable(rec arrow.Record) (*ArrowTable, error) {
	t := &ArrowTable{
		rec:   rec,
		cols:  make([]string, rec.NumCols()),
		index: make(map[string]int, rec.NumCols()),
	}
	for i := 0; i < int(rec.NumCols()); i++ {
		name := rec.ColumnName(i)
		switch rec.Column(i).(type) {
		case *array.Float64, *array.Int64, *array.String:
		default:
			return nil, fmt.Errorf("arrow column %q: unsupported type %s", name, rec.Column(i).DataType())
		}
		t.cols[i] = name
		t.index[name] = i
	}
	rec.Retain()
	return t, nil
}

func (t *ArrowTable) NumRows() int      { return int(t.rec.NumRows()) }
func (t *ArrowTable) Columns() []string { return t.cols }

func (t *ArrowTable) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *ArrowTable) At(row int, col string) Value {
	i, ok := t.index[col]
	if !ok {
		return Missing()
	}
	switch a := t.rec.Column(i).(type) {
	case *array.Float64:
		if a.IsNull(row) {
			return Missing()
		}
		return Number(a.Value(row))
	case *array.Int64:
		if a.IsNull(row) {
			return Missing()
		}
		return Number(float64(a.Value(row)))
	case *array.String:
		if a.IsNull(row) {
			return Missing()
		}
		return Text(a.Value(row))
	}
	return Missing()
}

// Release drops the table's reference to the underlying record.
func (t *ArrowTable) Release() {
	t.rec.Release()
}
