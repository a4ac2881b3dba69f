package descriptive

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"DataScope/src/table"
	"DataScope/src/utils"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrUnknownColumn marks a request naming a column the table lacks.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNoNumericColumns means a numerical summary had nothing to describe.
	ErrNoNumericColumns = errors.New("no numeric columns")
	// ErrNoCategoricalColumns means a categorical summary had nothing to describe.
	ErrNoCategoricalColumns = errors.New("no categorical columns")
)

// DefaultPrecision is the rounding applied to summary statistics.
const DefaultPrecision = 2

var summaryStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Shape returns the row and column counts.
func Shape(t table.Table) (rows, cols int) {
	return t.NumRow(), t.NumCol()
}

// NumericalSummary describes every numeric column: count, mean, sample std,
// min, quartiles and max, rounded to the given precision (negative means the
// default). Quantiles interpolate linearly between closest ranks.
func NumericalSummary(t table.Table, precision int) (table.Table, error) {
	if precision < 0 {
		precision = DefaultPrecision
	}
	cols := numericColumns(t)
	if len(cols) == 0 {
		return table.Table{}, ErrNoNumericColumns
	}

	ss := make([]series.Series, len(cols))
	for i, name := range cols {
		vals := columnFloats(t, name)
		stats := describeColumn(vals)
		for j := range stats {
			stats[j] = utils.Round(stats[j], precision)
		}
		ss[i] = series.New(stats, series.Float, name)
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return table.Table{}, df.Err
	}

	labels := make([]any, len(summaryStats))
	for i, s := range summaryStats {
		labels[i] = s
	}
	return table.New(df).WithIndex(table.SingleIndex("", labels))
}

func describeColumn(vals []float64) []float64 {
	out := make([]float64, len(summaryStats))
	out[0] = float64(len(vals))
	if len(vals) == 0 {
		for i := 1; i < len(out); i++ {
			out[i] = math.NaN()
		}
		return out
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	out[1] = stat.Mean(vals, nil)
	out[2] = stat.StdDev(vals, nil)
	out[3] = floats.Min(sorted)
	out[4] = quantile(sorted, 0.25)
	out[5] = quantile(sorted, 0.50)
	out[6] = quantile(sorted, 0.75)
	out[7] = floats.Max(sorted)
	return out
}

// quantile interpolates linearly between the two closest ranks of an
// ascending-sorted sample.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// CategoricalSummary describes every string column: non-null count, distinct
// count, the most frequent value and its frequency. The four stats mix types
// within one column, so the result is produced directly in split form.
func CategoricalSummary(t table.Table) (table.SplitTable, error) {
	cols := stringColumns(t)
	if len(cols) == 0 {
		return table.SplitTable{}, ErrNoCategoricalColumns
	}

	st := table.SplitTable{
		Index:   []any{"count", "unique", "top", "freq"},
		Columns: cols,
		Data:    make([][]any, 4),
	}
	for i := range st.Data {
		st.Data[i] = make([]any, len(cols))
	}
	for c, name := range cols {
		vals, _ := t.Column(name)
		counts := make(map[any]int)
		var order []any
		for _, v := range vals {
			if v == nil {
				continue
			}
			if _, seen := counts[v]; !seen {
				order = append(order, v)
			}
			counts[v]++
		}
		var top any
		freq := 0
		for _, v := range order {
			if counts[v] > freq {
				top, freq = v, counts[v]
			}
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		st.Data[0][c] = total
		st.Data[1][c] = len(counts)
		st.Data[2][c] = top
		st.Data[3][c] = freq
	}
	return st, nil
}

// UniqueCounts returns the distinct non-null count per string, bool and int
// column.
func UniqueCounts(t table.Table) map[string]int {
	df := t.DataFrame()
	names := df.Names()
	types := df.Types()

	out := make(map[string]int)
	for i, name := range names {
		switch types[i] {
		case series.String, series.Bool, series.Int:
			out[name] = DistinctCount(t, name)
		}
	}
	return out
}

// DistinctCount counts the distinct non-null values of one column.
func DistinctCount(t table.Table, column string) int {
	vals, ok := t.Column(column)
	if !ok {
		return 0
	}
	seen := make(map[any]struct{})
	for _, v := range vals {
		if v == nil {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}

// FrequencyTable counts each distinct value of the column, ascending by
// value, as a one-column table indexed by the value and named after the
// source column.
func FrequencyTable(t table.Table, column string) (table.Table, error) {
	vals, ok := t.Column(column)
	if !ok {
		return table.Table{}, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}

	counts := make(map[any]int)
	for _, v := range vals {
		if v == nil {
			continue
		}
		counts[v]++
	}
	labels := make([]any, 0, len(counts))
	for v := range counts {
		labels = append(labels, v)
	}
	utils.SortValues(labels)

	ordered := make([]int, len(labels))
	for i, v := range labels {
		ordered[i] = counts[v]
	}
	df := dataframe.New(series.New(ordered, series.Int, "count"))
	if df.Err != nil {
		return table.Table{}, df.Err
	}
	return table.New(df).WithIndex(table.SingleIndex(column, labels))
}

// Info renders a plain-text synopsis of the table: shape, per-column
// non-null counts and types, and a type tally.
func Info(t table.Table, name string) string {
	df := t.DataFrame()
	names := df.Names()
	types := df.Types()

	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %s\n", name)
	fmt.Fprintf(&b, "Rows: %d  Columns: %d\n", t.NumRow(), t.NumCol())
	fmt.Fprintf(&b, " #   %-24s %-10s %s\n", "Column", "Non-Null", "Type")
	tally := make(map[series.Type]int)
	var tallyOrder []series.Type
	for i, col := range names {
		vals, _ := t.Column(col)
		nonNull := 0
		for _, v := range vals {
			if v != nil {
				nonNull++
			}
		}
		fmt.Fprintf(&b, " %-3d %-24s %-10d %s\n", i, col, nonNull, types[i])
		if _, seen := tally[types[i]]; !seen {
			tallyOrder = append(tallyOrder, types[i])
		}
		tally[types[i]]++
	}
	parts := make([]string, len(tallyOrder))
	for i, typ := range tallyOrder {
		parts[i] = fmt.Sprintf("%s(%d)", typ, tally[typ])
	}
	fmt.Fprintf(&b, "Types: %s\n", strings.Join(parts, ", "))
	return b.String()
}

func numericColumns(t table.Table) []string {
	df := t.DataFrame()
	names := df.Names()
	types := df.Types()
	var out []string
	for i, name := range names {
		if types[i] == series.Int || types[i] == series.Float {
			out = append(out, name)
		}
	}
	return out
}

func stringColumns(t table.Table) []string {
	df := t.DataFrame()
	names := df.Names()
	types := df.Types()
	var out []string
	for i, name := range names {
		if types[i] == series.String {
			out = append(out, name)
		}
	}
	return out
}

func columnFloats(t table.Table, column string) []float64 {
	vals, _ := t.Column(column)
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if f, ok := utils.AsFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}
