package plots

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func renderOne(t *testing.T, req Request) []byte {
	t.Helper()
	data, err := Render(plotTable(t), []Request{req}, Options{})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, pngMagic), "not a PNG")
	return data
}

func TestRenderHistogram(t *testing.T) {
	renderOne(t, Request{Kind: KindHistogram, Histogram: &HistogramSpec{Column: "price", Bins: 5}})
}

func TestRenderKDEWithHue(t *testing.T) {
	renderOne(t, Request{Kind: KindKDE, KDE: &KDESpec{Column: "carat", Hue: "color", Points: 50}})
}

func TestRenderScatterWithHue(t *testing.T) {
	renderOne(t, Request{Kind: KindScatter, Scatter: &ScatterSpec{
		X: "carat", Y: "price", Hue: "cut", Alpha: 0.6,
	}})
}

func TestRenderBarGrouped(t *testing.T) {
	renderOne(t, Request{Kind: KindBar, Bar: &BarSpec{
		X: "cut", Y: "price", Hue: "color", Estimator: EstimatorSum,
	}})
}

func TestRenderCount(t *testing.T) {
	renderOne(t, Request{Kind: KindCount, Count: &CountSpec{Column: "cut"}})
}

func TestRenderHeatmapAnnotated(t *testing.T) {
	renderOne(t, Request{Kind: KindHeatmap, Heatmap: &HeatmapSpec{
		IndexNames:  []string{"cut"},
		ColumnNames: []string{"color"},
		Normalize:   true,
		Margins:     true,
		Annotate:    true,
	}})
}

func TestRenderDashboardGrid(t *testing.T) {
	reqs := []Request{
		{Kind: KindHistogram, Histogram: &HistogramSpec{Column: "price"}},
		{Kind: KindCount, Count: &CountSpec{Column: "cut"}},
		{Kind: KindScatter, Scatter: &ScatterSpec{X: "carat", Y: "price"}},
	}
	data, err := Render(plotTable(t), reqs, Options{})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestRenderNoRequests(t *testing.T) {
	_, err := Render(plotTable(t), nil, Options{})
	assert.Error(t, err)
}

func TestRenderStopsOnInvalidRequest(t *testing.T) {
	reqs := []Request{
		{Kind: KindHistogram, Histogram: &HistogramSpec{Column: "price"}},
		{Kind: KindHistogram, Histogram: &HistogramSpec{Column: "cut"}},
	}
	_, err := Render(plotTable(t), reqs, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not numeric")
}

func TestEstimate(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, estimate(vals, EstimatorMean), 1e-9)
	assert.InDelta(t, 2.5, estimate(vals, EstimatorMedian), 1e-9)
	assert.InDelta(t, 10, estimate(vals, EstimatorSum), 1e-9)
	assert.InDelta(t, 2, estimate([]float64{3, 1, 2}, EstimatorMedian), 1e-9)
	assert.InDelta(t, 0, estimate(nil, EstimatorMean), 1e-9)
}

func TestParseColor(t *testing.T) {
	def := color.RGBA{A: 0xff}
	assert.Equal(t, namedColors["red"], parseColor("red", def))
	assert.Equal(t, color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}, parseColor("#336699", def))
	assert.Equal(t, color.Color(def), parseColor("bogus", def))
	assert.Equal(t, color.Color(def), parseColor("", def))
}

func TestWithAlpha(t *testing.T) {
	c := withAlpha(color.RGBA{R: 0xff, A: 0xff}, 0.5)
	nrgba, ok := c.(color.NRGBA)
	require.True(t, ok)
	assert.Equal(t, uint8(0xff), nrgba.R)
	assert.Equal(t, uint8(0x7f), nrgba.A)
}
