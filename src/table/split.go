package table

import (
	"errors"
	"fmt"
	"math"

	"DataScope/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrMalformedSplitTable marks a split form whose index, columns and data
// lengths disagree. A violation means the producer is broken, so decoding
// fails hard instead of papering over it.
var ErrMalformedSplitTable = errors.New("malformed split table")

// SplitTable is the transport form of a Table: row labels, column names and
// a row-major value matrix. Index entries are scalars for a one-level index
// and fixed-length arrays for a multi-level one.
type SplitTable struct {
	Index   []any    `json:"index"`
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// Encode converts a Table to its split form. Cells come out as native
// scalars with nil for missing values; a table without an explicit index
// encodes its row positions. Encode never rounds: any display precision has
// to be applied before this point.
func Encode(t Table) SplitTable {
	nrow, ncol := t.NumRow(), t.NumCol()
	st := SplitTable{
		Index:   make([]any, nrow),
		Columns: t.Columns(),
		Data:    make([][]any, nrow),
	}
	for r := 0; r < nrow; r++ {
		row := make([]any, ncol)
		for c := 0; c < ncol; c++ {
			row[c] = t.Cell(r, c)
		}
		st.Data[r] = row
	}
	if ix := t.index; ix != nil {
		depth := ix.Depth()
		for r, tup := range ix.labels {
			if depth == 1 {
				st.Index[r] = tup[0]
			} else {
				st.Index[r] = append([]any(nil), tup...)
			}
		}
	} else {
		for r := 0; r < nrow; r++ {
			st.Index[r] = r
		}
	}
	return st
}

// Decode rebuilds a Table from its split form.
//
// When every index entry is a tuple of one length k > 1 the result carries a
// depth-k index, named level-wise by indexLevelNames when the counts match.
// Otherwise the index is single-level, named by indexLevelNames[0] when
// exactly one name was supplied. Empty index and data produce a zero-row
// table that still declares the given columns. A column whose values are not
// uniformly one primitive type is normalized to strings; this is the lossy
// presentation-boundary path and never applies to homogeneous columns.
func Decode(st SplitTable, indexLevelNames []string) (Table, error) {
	for i, row := range st.Data {
		if len(row) != len(st.Columns) {
			return Table{}, fmt.Errorf("%w: row %d has %d values for %d columns",
				ErrMalformedSplitTable, i, len(row), len(st.Columns))
		}
	}
	if len(st.Index) > 0 && len(st.Data) > 0 && len(st.Index) != len(st.Data) {
		return Table{}, fmt.Errorf("%w: %d index labels for %d data rows",
			ErrMalformedSplitTable, len(st.Index), len(st.Data))
	}

	if len(st.Data) == 0 {
		return NewEmpty(st.Columns), nil
	}

	ss := make([]series.Series, len(st.Columns))
	for c, name := range st.Columns {
		vals := make([]any, len(st.Data))
		for r := range st.Data {
			vals[r] = normalizeScalar(st.Data[r][c])
		}
		ss[c] = buildSeries(name, vals)
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrMalformedSplitTable, df.Err)
	}
	t := Table{cols: append([]string(nil), st.Columns...), df: df}

	if len(st.Index) == 0 {
		return t, nil
	}
	labels := indexTuples(st.Index)
	depth := len(labels[0])
	var names []string
	switch {
	case len(indexLevelNames) == depth:
		names = indexLevelNames
	case depth == 1 && len(indexLevelNames) == 1:
		names = indexLevelNames
	}
	ix, err := NewIndex(names, labels)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrMalformedSplitTable, err)
	}
	return t.WithIndex(ix)
}

// indexTuples turns raw index entries into uniform label tuples. Only when
// every entry is a list of one shared length above one does the index become
// multi-level; anything else is treated as a one-level scalar label.
func indexTuples(index []any) [][]any {
	depth := -1
	uniform := true
	for _, entry := range index {
		tup, ok := entry.([]any)
		if !ok || len(tup) <= 1 {
			uniform = false
			break
		}
		if depth == -1 {
			depth = len(tup)
		} else if len(tup) != depth {
			uniform = false
			break
		}
	}
	labels := make([][]any, len(index))
	if uniform && depth > 1 {
		for r, entry := range index {
			tup := entry.([]any)
			norm := make([]any, depth)
			for l, v := range tup {
				norm[l] = normalizeScalar(v)
			}
			labels[r] = norm
		}
		return labels
	}
	for r, entry := range index {
		if tup, ok := entry.([]any); ok {
			// Ragged or single-element tuples degrade to their text form.
			labels[r] = []any{fmt.Sprint(tup)}
			continue
		}
		labels[r] = []any{normalizeScalar(entry)}
	}
	return labels
}

// normalizeScalar collapses the numeric types a JSON hop produces: integral
// floats become ints so values keep comparing equal to what was encoded.
func normalizeScalar(v any) any {
	switch x := v.(type) {
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) && math.Abs(x) < 1<<53 {
			return int(x)
		}
		return x
	case float32:
		return normalizeScalar(float64(x))
	case int64:
		return int(x)
	case nil, bool, int, string:
		return v
	default:
		return utils.FormatCell(v)
	}
}

// buildSeries infers one series type for a column, falling back to string
// normalization when the values mix primitive types.
func buildSeries(name string, vals []any) series.Series {
	var nInt, nFloat, nBool, nString, nNil, nOther int
	for _, v := range vals {
		switch v.(type) {
		case nil:
			nNil++
		case int:
			nInt++
		case float64:
			nFloat++
		case bool:
			nBool++
		case string:
			nString++
		default:
			nOther++
		}
	}
	n := len(vals)
	switch {
	case nOther == 0 && nInt+nNil == n && nInt > 0:
		return series.New(vals, series.Int, name)
	case nOther == 0 && nInt+nFloat+nNil == n && nInt+nFloat > 0:
		return series.New(vals, series.Float, name)
	case nOther == 0 && nBool+nNil == n && nBool > 0:
		return series.New(vals, series.Bool, name)
	case nOther == 0 && nString+nNil == n:
		return series.New(vals, series.String, name)
	default:
		// Mixed primitives: normalize to the text form, keeping NAs.
		norm := make([]any, n)
		for i, v := range vals {
			if v == nil {
				norm[i] = nil
			} else {
				norm[i] = utils.FormatCell(v)
			}
		}
		return series.New(norm, series.String, name)
	}
}
