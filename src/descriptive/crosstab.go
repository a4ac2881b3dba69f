package descriptive

import (
	"fmt"
	"sort"
	"strings"

	"DataScope/src/table"
	"DataScope/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// CrosstabSpec names the grouping dimensions of a contingency table.
// Normalize divides every count by the grand total; Margins appends an
// "All" row and column, computed after any normalization.
type CrosstabSpec struct {
	IndexNames  []string `json:"index_names"`
	ColumnNames []string `json:"column_names"`
	Normalize   bool     `json:"normalize"`
	Margins     bool     `json:"margins"`
}

const marginLabel = "All"

type groupKey struct {
	key   string
	tuple []any
}

// Crosstab counts row occurrences per combination of the index and column
// dimensions. Rows with a null in any involved column are dropped. Index
// labels keep their native values and sort ascending; multi-column
// dimensions become "/"-joined column names.
func Crosstab(t table.Table, spec CrosstabSpec) (table.Table, error) {
	if len(spec.IndexNames) == 0 || len(spec.ColumnNames) == 0 {
		return table.Table{}, fmt.Errorf("crosstab needs at least one index column and one column dimension")
	}
	for _, name := range spec.IndexNames {
		if !t.HasColumn(name) {
			return table.Table{}, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
	}
	for _, name := range spec.ColumnNames {
		if !t.HasColumn(name) {
			return table.Table{}, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}
	}

	rowGroups, colGroups, counts := countGroups(t, spec)

	nRows := len(rowGroups)
	nCols := len(colGroups)
	if spec.Margins {
		nRows++
		nCols++
	}

	cells := make([][]float64, nRows)
	for i := range cells {
		cells[i] = make([]float64, nCols)
	}
	grand := 0.0
	for i, rg := range rowGroups {
		for j, cg := range colGroups {
			n := float64(counts[rg.key][cg.key])
			cells[i][j] = n
			grand += n
		}
	}
	if spec.Normalize && grand > 0 {
		for i := range rowGroups {
			for j := range colGroups {
				cells[i][j] /= grand
			}
		}
	}
	if spec.Margins {
		for i := range rowGroups {
			for j := range colGroups {
				cells[i][nCols-1] += cells[i][j]
				cells[nRows-1][j] += cells[i][j]
				cells[nRows-1][nCols-1] += cells[i][j]
			}
		}
	}

	colNames := make([]string, nCols)
	for j, cg := range colGroups {
		colNames[j] = joinGroupName(cg.tuple)
	}
	if spec.Margins {
		colNames[nCols-1] = marginLabel
	}

	ss := make([]series.Series, nCols)
	for j, name := range colNames {
		col := make([]float64, nRows)
		for i := range cells {
			col[i] = cells[i][j]
		}
		if spec.Normalize {
			ss[j] = series.New(col, series.Float, name)
		} else {
			ints := make([]int, nRows)
			for i, v := range col {
				ints[i] = int(v)
			}
			ss[j] = series.New(ints, series.Int, name)
		}
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return table.Table{}, df.Err
	}

	labels := make([][]any, nRows)
	for i, rg := range rowGroups {
		labels[i] = rg.tuple
	}
	if spec.Margins {
		margin := make([]any, len(spec.IndexNames))
		margin[0] = marginLabel
		for i := 1; i < len(margin); i++ {
			margin[i] = ""
		}
		labels[nRows-1] = margin
	}
	idx, err := table.NewIndex(spec.IndexNames, labels)
	if err != nil {
		return table.Table{}, err
	}
	return table.New(df).WithIndex(idx)
}

// countGroups walks the table once, collecting the distinct row and column
// tuples and the count per pair. Both group lists come back sorted.
func countGroups(t table.Table, spec CrosstabSpec) (rows, cols []groupKey, counts map[string]map[string]int) {
	rowVals := dimensionValues(t, spec.IndexNames)
	colVals := dimensionValues(t, spec.ColumnNames)

	rowSeen := make(map[string][]any)
	colSeen := make(map[string][]any)
	counts = make(map[string]map[string]int)

	for r := 0; r < t.NumRow(); r++ {
		rTuple, ok := tupleAt(rowVals, r)
		if !ok {
			continue
		}
		cTuple, ok := tupleAt(colVals, r)
		if !ok {
			continue
		}
		rKey := tupleKey(rTuple)
		cKey := tupleKey(cTuple)
		rowSeen[rKey] = rTuple
		colSeen[cKey] = cTuple
		if counts[rKey] == nil {
			counts[rKey] = make(map[string]int)
		}
		counts[rKey][cKey]++
	}

	rows = sortedGroups(rowSeen)
	cols = sortedGroups(colSeen)
	return rows, cols, counts
}

func dimensionValues(t table.Table, names []string) [][]any {
	out := make([][]any, len(names))
	for i, name := range names {
		out[i], _ = t.Column(name)
	}
	return out
}

func tupleAt(dims [][]any, r int) ([]any, bool) {
	tuple := make([]any, len(dims))
	for i, vals := range dims {
		if vals[r] == nil {
			return nil, false
		}
		tuple[i] = vals[r]
	}
	return tuple, true
}

func tupleKey(tuple []any) string {
	parts := make([]string, len(tuple))
	for i, v := range tuple {
		parts[i] = utils.FormatCell(v)
	}
	return strings.Join(parts, "\x1f")
}

func sortedGroups(seen map[string][]any) []groupKey {
	out := make([]groupKey, 0, len(seen))
	for k, tuple := range seen {
		out = append(out, groupKey{key: k, tuple: tuple})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].tuple, out[j].tuple
		for n := 0; n < len(a); n++ {
			if utils.LessValue(a[n], b[n]) {
				return true
			}
			if utils.LessValue(b[n], a[n]) {
				return false
			}
		}
		return false
	})
	return out
}

func joinGroupName(tuple []any) string {
	parts := make([]string, len(tuple))
	for i, v := range tuple {
		parts[i] = utils.FormatCell(v)
	}
	return strings.Join(parts, "/")
}
