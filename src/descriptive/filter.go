package descriptive

import (
	"errors"
	"fmt"

	"DataScope/src/table"
	"DataScope/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrValueNotFound marks a filter value that appears nowhere in its column.
var ErrValueNotFound = errors.New("value not found in column")

// FilterRecords keeps the rows where every column equals its paired value
// and returns them as column-to-value records. Each value must occur
// somewhere in its column or the whole filter fails.
func FilterRecords(t table.Table, columns []string, values []any) ([]map[string]any, error) {
	if len(columns) != len(values) {
		return nil, fmt.Errorf("got %d filter columns for %d values", len(columns), len(values))
	}

	df := t.DataFrame()
	for i, col := range columns {
		vals, ok := t.Column(col)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, col)
		}
		found := false
		for _, v := range vals {
			if matches(v, values[i]) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %v in %s", ErrValueNotFound, values[i], col)
		}
		df = df.Filter(dataframe.F{Colname: col, Comparator: series.Eq, Comparando: values[i]})
		if df.Err != nil {
			return nil, fmt.Errorf("filter on %s: %w", col, df.Err)
		}
	}
	return rowRecords(table.New(df)), nil
}

// Records windows the table rows at [offset, offset+limit), keeping the
// original row positions as the index. A non-positive limit means all
// remaining rows.
func Records(t table.Table, offset, limit int) (table.Table, error) {
	n := t.NumRow()
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	if offset == end {
		return table.NewEmpty(t.Columns()), nil
	}

	idx := make([]int, 0, end-offset)
	labels := make([]any, 0, end-offset)
	for r := offset; r < end; r++ {
		idx = append(idx, r)
		labels = append(labels, r)
	}
	sub := t.DataFrame().Subset(idx)
	if sub.Err != nil {
		return table.Table{}, sub.Err
	}
	return table.New(sub).WithIndex(table.SingleIndex("", labels))
}

func rowRecords(t table.Table) []map[string]any {
	cols := t.Columns()
	out := make([]map[string]any, t.NumRow())
	for r := range out {
		rec := make(map[string]any, len(cols))
		for c, name := range cols {
			rec[name] = t.Cell(r, c)
		}
		out[r] = rec
	}
	return out
}

func matches(cell, want any) bool {
	if cell == nil || want == nil {
		return cell == nil && want == nil
	}
	cf, cok := utils.AsFloat(cell)
	wf, wok := utils.AsFloat(want)
	if cok && wok {
		return cf == wf
	}
	if cok != wok {
		return false
	}
	return utils.FormatCell(cell) == utils.FormatCell(want)
}
