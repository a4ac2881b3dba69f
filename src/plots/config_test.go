package plots

import (
	"encoding/json"
	"testing"

	"DataScope/src/table"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plotTable(t *testing.T) table.Table {
	t.Helper()
	df := dataframe.LoadRecords(
		[][]string{
			{"carat", "cut", "color", "price"},
			{"0.20", "Ideal", "E", "326"},
			{"0.24", "Premium", "E", "327"},
			{"0.28", "Good", "F", "334"},
			{"0.32", "Good", "F", "335"},
			{"0.26", "Ideal", "G", "554"},
			{"0.30", "Premium", "G", "2757"},
		},
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.DefaultType(series.String),
	)
	require.NoError(t, df.Err)
	return table.New(df)
}

func TestRequestUnmarshalDispatch(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		kind  Kind
		check func(t *testing.T, r Request)
	}{
		{
			name: "histogram",
			body: `{"type":"histogram","params":{"column":"price","bins":20,"color":"red"}}`,
			kind: KindHistogram,
			check: func(t *testing.T, r Request) {
				require.NotNil(t, r.Histogram)
				assert.Equal(t, "price", r.Histogram.Column)
				assert.Equal(t, 20, r.Histogram.Bins)
				assert.Equal(t, "red", r.Histogram.Color)
			},
		},
		{
			name: "kde",
			body: `{"type":"kde","params":{"column":"carat","hue":"cut"}}`,
			kind: KindKDE,
			check: func(t *testing.T, r Request) {
				require.NotNil(t, r.KDE)
				assert.Equal(t, "carat", r.KDE.Column)
				assert.Equal(t, "cut", r.KDE.Hue)
			},
		},
		{
			name: "scatter",
			body: `{"type":"scatter","params":{"x":"carat","y":"price","alpha":0.5}}`,
			kind: KindScatter,
			check: func(t *testing.T, r Request) {
				require.NotNil(t, r.Scatter)
				assert.Equal(t, "carat", r.Scatter.X)
				assert.InDelta(t, 0.5, r.Scatter.Alpha, 1e-9)
			},
		},
		{
			name: "bar",
			body: `{"type":"bar","params":{"x":"cut","y":"price","estimator":"median"}}`,
			kind: KindBar,
			check: func(t *testing.T, r Request) {
				require.NotNil(t, r.Bar)
				assert.Equal(t, EstimatorMedian, r.Bar.Estimator)
			},
		},
		{
			name: "count",
			body: `{"type":"count","params":{"column":"cut","hue":"color"}}`,
			kind: KindCount,
			check: func(t *testing.T, r Request) {
				require.NotNil(t, r.Count)
				assert.Equal(t, "color", r.Count.Hue)
			},
		},
		{
			name: "heatmap",
			body: `{"type":"heatmap","params":{"index_names":["cut"],"column_names":["color"],"annotate":true}}`,
			kind: KindHeatmap,
			check: func(t *testing.T, r Request) {
				require.NotNil(t, r.Heatmap)
				assert.Equal(t, []string{"cut"}, r.Heatmap.IndexNames)
				assert.True(t, r.Heatmap.Annotate)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req Request
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))
			assert.Equal(t, tc.kind, req.Kind)
			tc.check(t, req)
		})
	}
}

func TestRequestUnmarshalUnknownType(t *testing.T) {
	var req Request
	err := json.Unmarshal([]byte(`{"type":"pie","params":{}}`), &req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPlotType)
	assert.Contains(t, err.Error(), "histogram")
}

func TestRequestUnmarshalMissingParams(t *testing.T) {
	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{"type":"count"}`), &req))
	require.NotNil(t, req.Count)
	assert.Error(t, req.Validate(plotTable(t)))
}

func TestRequestUnmarshalList(t *testing.T) {
	body := `[
		{"type":"histogram","params":{"column":"price"}},
		{"type":"count","params":{"column":"cut"}}
	]`
	var reqs []Request
	require.NoError(t, json.Unmarshal([]byte(body), &reqs))
	require.Len(t, reqs, 2)
	assert.Equal(t, KindHistogram, reqs[0].Kind)
	assert.Equal(t, KindCount, reqs[1].Kind)
}

func TestValidate(t *testing.T) {
	tbl := plotTable(t)
	cases := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{
			name: "histogram ok",
			req:  Request{Kind: KindHistogram, Histogram: &HistogramSpec{Column: "price"}},
		},
		{
			name:    "histogram non-numeric",
			req:     Request{Kind: KindHistogram, Histogram: &HistogramSpec{Column: "cut"}},
			wantErr: "not numeric",
		},
		{
			name:    "histogram column required",
			req:     Request{Kind: KindHistogram, Histogram: &HistogramSpec{}},
			wantErr: "required",
		},
		{
			name:    "histogram unknown column",
			req:     Request{Kind: KindHistogram, Histogram: &HistogramSpec{Column: "weight"}},
			wantErr: "no column named",
		},
		{
			name:    "scatter missing y",
			req:     Request{Kind: KindScatter, Scatter: &ScatterSpec{X: "carat"}},
			wantErr: "y is required",
		},
		{
			name:    "bar bad estimator",
			req:     Request{Kind: KindBar, Bar: &BarSpec{X: "cut", Y: "price", Estimator: "mode"}},
			wantErr: "unknown estimator",
		},
		{
			name:    "bar unknown hue",
			req:     Request{Kind: KindBar, Bar: &BarSpec{X: "cut", Y: "price", Hue: "clarity"}},
			wantErr: "no column named",
		},
		{
			name: "count ok",
			req:  Request{Kind: KindCount, Count: &CountSpec{Column: "cut"}},
		},
		{
			name:    "heatmap missing dimensions",
			req:     Request{Kind: KindHeatmap, Heatmap: &HeatmapSpec{IndexNames: []string{"cut"}}},
			wantErr: "required",
		},
		{
			name:    "zero request",
			req:     Request{},
			wantErr: "unknown plot type",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate(tbl)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
