package descriptive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterRecordsSingleCondition(t *testing.T) {
	recs, err := FilterRecords(sampleTable(t), []string{"cut"}, []any{"Good"})
	require.NoError(t, err)

	require.Len(t, recs, 2)
	assert.Equal(t, 334, recs[0]["price"])
	assert.Equal(t, 335, recs[1]["price"])
	assert.Equal(t, "F", recs[0]["color"])
}

func TestFilterRecordsCombinesConditions(t *testing.T) {
	recs, err := FilterRecords(sampleTable(t),
		[]string{"cut", "price"}, []any{"Good", 335})
	require.NoError(t, err)

	require.Len(t, recs, 1)
	assert.InDelta(t, 0.32, recs[0]["carat"].(float64), 1e-9)
}

func TestFilterRecordsAcceptsJSONNumbers(t *testing.T) {
	// Decoded JSON carries numbers as float64 even for int columns.
	recs, err := FilterRecords(sampleTable(t), []string{"price"}, []any{float64(326)})
	require.NoError(t, err)

	require.Len(t, recs, 1)
	assert.Equal(t, "Ideal", recs[0]["cut"])
}

func TestFilterRecordsValueNotFound(t *testing.T) {
	_, err := FilterRecords(sampleTable(t), []string{"cut"}, []any{"Fair"})
	assert.ErrorIs(t, err, ErrValueNotFound)
	assert.Contains(t, err.Error(), "Fair")
	assert.Contains(t, err.Error(), "cut")
}

func TestFilterRecordsUnknownColumn(t *testing.T) {
	_, err := FilterRecords(sampleTable(t), []string{"nope"}, []any{1})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestFilterRecordsLengthMismatch(t *testing.T) {
	_, err := FilterRecords(sampleTable(t), []string{"cut", "color"}, []any{"Good"})
	assert.Error(t, err)
}

func TestRecordsWindow(t *testing.T) {
	tbl := sampleTable(t)

	res, err := Records(tbl, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.NumRow())
	assert.Equal(t, tbl.Columns(), res.Columns())
	assert.Equal(t, [][]any{{0}, {1}}, res.IndexLabels())

	res, err = Records(tbl, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, res.NumRow())
	assert.Equal(t, [][]any{{2}, {3}}, res.IndexLabels())
	assert.Equal(t, 334, res.Cell(0, 3))
}

func TestRecordsOffsetPastEnd(t *testing.T) {
	res, err := Records(sampleTable(t), 99, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, res.NumRow())
	assert.Equal(t, sampleTable(t).Columns(), res.Columns())
}

func TestRecordsNoLimitReturnsAll(t *testing.T) {
	res, err := Records(sampleTable(t), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, res.NumRow())
}

func TestRecordsNegativeOffsetClamps(t *testing.T) {
	res, err := Records(sampleTable(t), -5, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.NumRow())
	assert.Equal(t, [][]any{{0}}, res.IndexLabels())
}
