package table

import (
	"fmt"

	"DataScope/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is an ordered set of named, equal-length, single-typed columns with
// an optional row index. Instances are treated as immutable: every operation
// returns a new Table and never touches the receiver.
type Table struct {
	cols  []string
	df    dataframe.DataFrame
	index *Index
}

// Index is a row index of one or more levels. Labels holds one tuple per row,
// all of the same depth. Names carries the optional level names.
type Index struct {
	names  []string
	labels [][]any
}

// NewIndex builds an index from level names and per-row label tuples. All
// tuples must share one depth, and names must be empty or match that depth.
func NewIndex(names []string, labels [][]any) (*Index, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("index needs at least one row label")
	}
	depth := len(labels[0])
	if depth == 0 {
		return nil, fmt.Errorf("index labels need at least one level")
	}
	for i, tup := range labels {
		if len(tup) != depth {
			return nil, fmt.Errorf("index label %d has depth %d, want %d", i, len(tup), depth)
		}
	}
	if len(names) != 0 && len(names) != depth {
		return nil, fmt.Errorf("index has %d level names for depth %d", len(names), depth)
	}
	ix := &Index{labels: make([][]any, len(labels))}
	for i, tup := range labels {
		ix.labels[i] = append([]any(nil), tup...)
	}
	if len(names) != 0 {
		ix.names = append([]string(nil), names...)
	}
	return ix, nil
}

// SingleIndex builds a one-level index from scalar labels. An empty name
// leaves the level unnamed.
func SingleIndex(name string, labels []any) *Index {
	ix := &Index{labels: make([][]any, len(labels))}
	for i, v := range labels {
		ix.labels[i] = []any{v}
	}
	if name != "" {
		ix.names = []string{name}
	}
	return ix
}

// Depth returns the number of index levels.
func (ix *Index) Depth() int {
	if ix == nil || len(ix.labels) == 0 {
		return 0
	}
	return len(ix.labels[0])
}

// Len returns the number of row labels.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.labels)
}

// Names returns a copy of the level names, or nil when the levels are unnamed.
func (ix *Index) Names() []string {
	if ix == nil || len(ix.names) == 0 {
		return nil
	}
	return append([]string(nil), ix.names...)
}

// Labels returns a copy of the per-row label tuples.
func (ix *Index) Labels() [][]any {
	if ix == nil {
		return nil
	}
	out := make([][]any, len(ix.labels))
	for i, tup := range ix.labels {
		out[i] = append([]any(nil), tup...)
	}
	return out
}

// New wraps a materialized DataFrame as a Table with the default positional
// index. The DataFrame must have been checked for load errors by the caller.
func New(df dataframe.DataFrame) Table {
	return Table{cols: append([]string(nil), df.Names()...), df: df}
}

// NewEmpty builds a zero-row Table that still declares the given columns, so
// column-existence checks keep working downstream.
func NewEmpty(columns []string) Table {
	if len(columns) == 0 {
		return Table{}
	}
	ss := make([]series.Series, len(columns))
	for i, name := range columns {
		ss[i] = series.New([]string{}, series.String, name)
	}
	return Table{cols: append([]string(nil), columns...), df: dataframe.New(ss...)}
}

// WithIndex returns a copy of the table carrying the given index. The index
// length must match the row count.
func (t Table) WithIndex(ix *Index) (Table, error) {
	if ix != nil && ix.Len() != t.NumRow() {
		return Table{}, fmt.Errorf("index has %d labels for %d rows", ix.Len(), t.NumRow())
	}
	c := t.Copy()
	c.index = ix
	return c, nil
}

// Copy returns a deep copy of the table. The index is shared; it is never
// mutated after construction.
func (t Table) Copy() Table {
	c := Table{cols: append([]string(nil), t.cols...), index: t.index}
	if t.df.Ncol() > 0 {
		c.df = t.df.Copy()
	}
	return c
}

// DataFrame exposes the underlying gota DataFrame. Callers must treat it as
// read-only.
func (t Table) DataFrame() dataframe.DataFrame {
	return t.df
}

// Columns returns the column names in table order.
func (t Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// HasColumn reports whether the table declares the named column.
func (t Table) HasColumn(name string) bool {
	return utils.Contains(t.cols, name)
}

func (t Table) NumRow() int {
	return t.df.Nrow()
}

func (t Table) NumCol() int {
	return len(t.cols)
}

// ColumnType returns the gota type of the named column and whether it exists.
func (t Table) ColumnType(name string) (series.Type, bool) {
	names := t.df.Names()
	types := t.df.Types()
	for i, n := range names {
		if n == name {
			return types[i], true
		}
	}
	return "", false
}

// Cell returns the native scalar at (row, col), or nil for a missing value.
func (t Table) Cell(row, col int) any {
	el := t.df.Elem(row, col)
	if el.IsNA() {
		return nil
	}
	return el.Val()
}

// Column returns the named column's values as native scalars, nil for NA.
func (t Table) Column(name string) ([]any, bool) {
	ci := -1
	for i, n := range t.cols {
		if n == name {
			ci = i
			break
		}
	}
	if ci < 0 {
		return nil, false
	}
	out := make([]any, t.NumRow())
	for r := range out {
		out[r] = t.Cell(r, ci)
	}
	return out, true
}

// Index returns the table's explicit index, or nil for the default
// positional index.
func (t Table) Index() *Index {
	return t.index
}

// IndexNames returns the index level names, nil when unnamed or default.
func (t Table) IndexNames() []string {
	return t.index.Names()
}

// IndexLabels materializes the row labels: explicit index tuples, or the
// default positions 0..n-1 as one-level tuples.
func (t Table) IndexLabels() [][]any {
	if t.index != nil {
		return t.index.Labels()
	}
	out := make([][]any, t.NumRow())
	for r := range out {
		out[r] = []any{r}
	}
	return out
}

// Equal compares two tables by column names, cell values and index labels.
// Numeric cells compare by value, so an int 1 equals a float 1.0; this keeps
// equality stable across a JSON hop, where integers lose their Go type.
func (t Table) Equal(o Table) bool {
	if len(t.cols) != len(o.cols) {
		return false
	}
	for i := range t.cols {
		if t.cols[i] != o.cols[i] {
			return false
		}
	}
	if t.NumRow() != o.NumRow() {
		return false
	}
	for r := 0; r < t.NumRow(); r++ {
		for c := range t.cols {
			if !valueEqual(t.Cell(r, c), o.Cell(r, c)) {
				return false
			}
		}
	}
	a, b := t.IndexLabels(), o.IndexLabels()
	for r := range a {
		if len(a[r]) != len(b[r]) {
			return false
		}
		for l := range a[r] {
			if !valueEqual(a[r][l], b[r][l]) {
				return false
			}
		}
	}
	an, bn := t.IndexNames(), o.IndexNames()
	if len(an) != len(bn) {
		return false
	}
	for i := range an {
		if an[i] != bn[i] {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	af, aok := utils.AsFloat(a)
	bf, bok := utils.AsFloat(b)
	if aok && bok {
		return af == bf
	}
	if aok != bok {
		return false
	}
	return utils.FormatCell(a) == utils.FormatCell(b)
}
