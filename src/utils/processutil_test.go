package utils

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"a", "b"}, "b"))
	assert.False(t, Contains([]string{"a", "b"}, "c"))
	assert.True(t, Contains([]int{1, 2, 3}, 2))
	assert.False(t, Contains([]int{}, 1))
}

func TestHasColumn(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"x"}, series.String, "name"),
		series.New([]int{1}, series.Int, "value"),
	)
	assert.True(t, HasColumn(df, "value"))
	assert.False(t, HasColumn(df, "missing"))
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   float64
	}{
		{3.14159, 2, 3.14},
		{2.5, 0, 3},
		{-2.5, 0, -3},
		{1234.5678, 0, 1235},
		{0.1, 4, 0.1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round(tt.v, tt.places), 1e-12, "Round(%v, %d)", tt.v, tt.places)
	}
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
	assert.True(t, math.IsInf(Round(math.Inf(1), 2), 1))
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"text", "text"},
		{true, "true"},
		{42, "42"},
		{int64(7), "7"},
		{3.5, "3.5"},
		{0.1, "0.1"},
		{float32(2), "2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCell(tt.in), "FormatCell(%#v)", tt.in)
	}
}

func TestAsFloat(t *testing.T) {
	for _, v := range []any{1, int64(2), 3.0, float32(4)} {
		_, ok := AsFloat(v)
		assert.True(t, ok, "AsFloat(%#v)", v)
	}
	f, ok := AsFloat(7)
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)

	_, ok = AsFloat("7")
	assert.False(t, ok)
	_, ok = AsFloat(nil)
	assert.False(t, ok)
}

func TestSortValues(t *testing.T) {
	vals := []any{10, 2, "b", "a", 1.5, true, false}
	SortValues(vals)

	// Numbers first in numeric order, then the rest by text form.
	assert.Equal(t, []any{1.5, 2, 10, "a", "b", false, true}, vals)
}

func TestLessValueMixed(t *testing.T) {
	assert.True(t, LessValue(2, 10), "ints compare numerically")
	assert.True(t, LessValue(2, "a"), "numbers sort before text")
	assert.False(t, LessValue("a", 2))
	assert.True(t, LessValue(false, true))
	assert.True(t, LessValue("a", "b"))
}

func TestSaveToExcel(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"x", "y"}, series.String, "name"),
		series.New([]int{1, 2}, series.Int, "value"),
	)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, SaveToExcel(df, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "name", header)
	cell, err := f.GetCellValue("Sheet1", "B3")
	require.NoError(t, err)
	assert.Equal(t, "2", cell)
}
