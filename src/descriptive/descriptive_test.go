package descriptive

import (
	"testing"

	"DataScope/src/table"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) table.Table {
	t.Helper()
	df := dataframe.LoadRecords(
		[][]string{
			{"carat", "cut", "color", "price"},
			{"0.20", "Ideal", "E", "326"},
			{"0.24", "Premium", "E", "327"},
			{"0.28", "Good", "F", "334"},
			{"0.32", "Good", "F", "335"},
		},
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
	)
	require.NoError(t, df.Err)
	return table.New(df)
}

func TestShape(t *testing.T) {
	rows, cols := Shape(sampleTable(t))
	assert.Equal(t, 4, rows)
	assert.Equal(t, 4, cols)
}

func TestNumericalSummary(t *testing.T) {
	res, err := NumericalSummary(sampleTable(t), 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"carat", "price"}, res.Columns())
	require.Equal(t, 8, res.NumRow())
	assert.Equal(t, [][]any{
		{"count"}, {"mean"}, {"std"}, {"min"}, {"25%"}, {"50%"}, {"75%"}, {"max"},
	}, res.IndexLabels())

	price := map[string]float64{
		"count": 4, "mean": 330.5, "std": 4.65,
		"min": 326, "25%": 326.75, "50%": 330.5, "75%": 334.25, "max": 335,
	}
	for r, stat := range summaryStats {
		got, ok := res.Cell(r, 1).(float64)
		require.True(t, ok, stat)
		assert.InDelta(t, price[stat], got, 1e-9, stat)
	}

	carat := map[string]float64{
		"count": 4, "mean": 0.26, "std": 0.05,
		"min": 0.2, "25%": 0.23, "50%": 0.26, "75%": 0.29, "max": 0.32,
	}
	for r, stat := range summaryStats {
		got, ok := res.Cell(r, 0).(float64)
		require.True(t, ok, stat)
		assert.InDelta(t, carat[stat], got, 1e-9, stat)
	}
}

func TestNumericalSummarySkipsMissingValues(t *testing.T) {
	df := dataframe.New(
		series.New([]any{2.0, nil, 4.0}, series.Float, "x"),
		series.New([]string{"a", "b", "c"}, series.String, "tag"),
	)
	require.NoError(t, df.Err)

	res, err := NumericalSummary(table.New(df), -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, res.Columns())
	assert.InDelta(t, 2.0, res.Cell(0, 0).(float64), 1e-9, "count")
	assert.InDelta(t, 3.0, res.Cell(1, 0).(float64), 1e-9, "mean")
}

func TestNumericalSummaryWithoutNumericColumns(t *testing.T) {
	df := dataframe.New(series.New([]string{"a", "b"}, series.String, "tag"))
	require.NoError(t, df.Err)

	_, err := NumericalSummary(table.New(df), 2)
	assert.ErrorIs(t, err, ErrNoNumericColumns)
}

func TestQuantileInterpolation(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, quantile(sorted, 0.25), 1e-9)
	assert.InDelta(t, 2.5, quantile(sorted, 0.5), 1e-9)
	assert.InDelta(t, 3.25, quantile(sorted, 0.75), 1e-9)
	assert.InDelta(t, 7.0, quantile([]float64{7}, 0.5), 1e-9)
}

func TestCategoricalSummary(t *testing.T) {
	st, err := CategoricalSummary(sampleTable(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"cut", "color"}, st.Columns)
	assert.Equal(t, []any{"count", "unique", "top", "freq"}, st.Index)

	// cut: 4 values, 3 distinct, "Good" twice.
	assert.Equal(t, 4, st.Data[0][0])
	assert.Equal(t, 3, st.Data[1][0])
	assert.Equal(t, "Good", st.Data[2][0])
	assert.Equal(t, 2, st.Data[3][0])

	// color: E/F twice each, first seen wins the tie.
	assert.Equal(t, "E", st.Data[2][1])
	assert.Equal(t, 2, st.Data[3][1])
}

func TestCategoricalSummaryWithoutStringColumns(t *testing.T) {
	df := dataframe.New(series.New([]int{1, 2}, series.Int, "n"))
	require.NoError(t, df.Err)

	_, err := CategoricalSummary(table.New(df))
	assert.ErrorIs(t, err, ErrNoCategoricalColumns)
}

func TestUniqueCounts(t *testing.T) {
	got := UniqueCounts(sampleTable(t))
	// Float columns are excluded, everything else counted.
	assert.Equal(t, map[string]int{"cut": 3, "color": 2, "price": 4}, got)
}

func TestFrequencyTable(t *testing.T) {
	res, err := FrequencyTable(sampleTable(t), "cut")
	require.NoError(t, err)

	assert.Equal(t, []string{"count"}, res.Columns())
	assert.Equal(t, []string{"cut"}, res.IndexNames())
	assert.Equal(t, [][]any{{"Good"}, {"Ideal"}, {"Premium"}}, res.IndexLabels())
	assert.Equal(t, 2, res.Cell(0, 0))
	assert.Equal(t, 1, res.Cell(1, 0))
	assert.Equal(t, 1, res.Cell(2, 0))
}

func TestFrequencyTableSortsNumericLabels(t *testing.T) {
	df := dataframe.New(series.New([]int{10, 2, 10, 2, 2}, series.Int, "n"))
	require.NoError(t, df.Err)

	res, err := FrequencyTable(table.New(df), "n")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{2}, {10}}, res.IndexLabels())
	assert.Equal(t, 3, res.Cell(0, 0))
	assert.Equal(t, 2, res.Cell(1, 0))
}

func TestFrequencyTableUnknownColumn(t *testing.T) {
	_, err := FrequencyTable(sampleTable(t), "nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestInfo(t *testing.T) {
	out := Info(sampleTable(t), "diamonds")
	assert.Contains(t, out, "Dataset: diamonds")
	assert.Contains(t, out, "Rows: 4  Columns: 4")
	assert.Contains(t, out, "carat")
	assert.Contains(t, out, "float")
	assert.Contains(t, out, "Types: float(1), string(2), int(1)")
}

func TestDistinctCount(t *testing.T) {
	tbl := sampleTable(t)
	assert.Equal(t, 3, DistinctCount(tbl, "cut"))
	assert.Equal(t, 0, DistinctCount(tbl, "missing"))
}
