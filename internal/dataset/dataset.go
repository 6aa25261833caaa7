package dataset

import "fmt"

// Dataset is the read-only view the aggregator works against. Implementations
// must keep columns in schema-declaration order and never mutate after build,
// so the same statistical logic runs unchanged over any storage backend.
type Dataset interface {
	NumRows() int
	Columns() []string
	HasColumn(name string) bool
	At(row int, col string) Value
}

// SchemaError reports a bad column reference or a value that violates the
// column's declared semantic type. It is fatal to the computation that raised
// it; no partial results accompany it.
type SchemaError struct {
	Column string
	Value  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("schema error: column %q: %s (observed value %q)", e.Column, e.Reason, e.Value)
	}
	return fmt.Sprintf("schema error: column %q: %s", e.Column, e.Reason)
}

// RequireColumns fails with a SchemaError if any named column is absent.
func RequireColumns(ds Dataset, names ...string) error {
	for _, name := range names {
		if !ds.HasColumn(name) {
			return &SchemaError{Column: name, Reason: "column not present in schema"}
		}
	}
	return nil
}

// Table is the in-memory column-store backend.
type Table struct {
	cols  []string
	index map[string]int
	data  [][]Value // one slice per column, schema order
	rows  int
}

// NewTable creates an empty table with the given schema.
func NewTable(cols []string) *Table {
	t := &Table{
		cols:  append([]string(nil), cols...),
		index: make(map[string]int, len(cols)),
		data:  make([][]Value, len(cols)),
	}
	for i, c := range t.cols {
		t.index[c] = i
	}
	return t
}

// AppendRow adds one row. Columns absent from vals are stored as missing.
func (t *Table) AppendRow(vals map[string]Value) {
	for i, c := range t.cols {
		v, ok := vals[c]
		if !ok {
			v = Missing()
		}
		t.data[i] = append(t.data[i], v)
	}
	t.rows++
}

func (t *Table) NumRows() int      { return t.rows }
func (t *Table) Columns() []string { return t.cols }

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) At(row int, col string) Value {
	i, ok := t.index[col]
	if !ok {
		return Missing()
	}
	return t.data[i][row]
}
