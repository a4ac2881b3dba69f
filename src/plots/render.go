package plots

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"DataScope/src/descriptive"
	"DataScope/src/table"
	"DataScope/src/utils"

	"github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	defaultBins      = 10
	defaultKDEPoints = 200
)

// Options sizes the individual dashboard tiles.
type Options struct {
	TileWidth  vg.Length
	TileHeight vg.Length
}

func (o Options) withDefaults() Options {
	if o.TileWidth <= 0 {
		o.TileWidth = 5 * vg.Inch
	}
	if o.TileHeight <= 0 {
		o.TileHeight = 4 * vg.Inch
	}
	return o
}

// Render validates every request, draws one figure each and composes them
// into a ceil(sqrt(n))-column grid, returned as PNG bytes.
func Render(t table.Table, reqs []Request, opts Options) ([]byte, error) {
	if len(reqs) == 0 {
		return nil, errors.New("no plots requested")
	}
	opts = opts.withDefaults()
	for i := range reqs {
		if err := reqs[i].Validate(t); err != nil {
			return nil, err
		}
	}

	built := make([]*plot.Plot, len(reqs))
	for i := range reqs {
		p, err := buildPlot(t, reqs[i])
		if err != nil {
			return nil, err
		}
		built[i] = p
	}

	cols := int(math.Ceil(math.Sqrt(float64(len(built)))))
	rows := (len(built) + cols - 1) / cols
	grid := make([][]*plot.Plot, rows)
	for i := range grid {
		grid[i] = make([]*plot.Plot, cols)
		for j := range grid[i] {
			if k := i*cols + j; k < len(built) {
				grid[i][j] = built[k]
			}
		}
	}

	img := vgimg.New(opts.TileWidth*vg.Length(cols), opts.TileHeight*vg.Length(rows))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter * 2, PadY: vg.Millimeter * 2,
		PadTop: vg.Millimeter * 2, PadBottom: vg.Millimeter * 2,
		PadLeft: vg.Millimeter * 2, PadRight: vg.Millimeter * 2,
	}
	canvases := plot.Align(grid, tiles, dc)
	for i := range grid {
		for j := range grid[i] {
			if grid[i][j] != nil {
				grid[i][j].Draw(canvases[i][j])
			}
		}
	}

	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildPlot(t table.Table, req Request) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	switch req.Kind {
	case KindHistogram:
		err = buildHistogram(p, t, req.Histogram)
	case KindKDE:
		err = buildKDE(p, t, req.KDE)
	case KindScatter:
		err = buildScatter(p, t, req.Scatter)
	case KindBar:
		err = buildBar(p, t, req.Bar)
	case KindCount:
		err = buildCount(p, t, req.Count)
	case KindHeatmap:
		err = buildHeatmap(p, t, req.Heatmap)
	default:
		err = fmt.Errorf("%w %q", ErrUnknownPlotType, req.Kind)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func buildHistogram(p *plot.Plot, t table.Table, spec *HistogramSpec) error {
	vals := floatColumn(t, spec.Column)
	if len(vals) == 0 {
		return fmt.Errorf("histogram: column %q has no numeric values", spec.Column)
	}
	bins := spec.Bins
	if bins <= 0 {
		bins = defaultBins
	}
	h, err := plotter.NewHist(plotter.Values(vals), bins)
	if err != nil {
		return err
	}
	h.FillColor = parseColor(spec.Color, plotutil.Color(0))
	p.Add(h)
	p.Title.Text = fmt.Sprintf("Histogram of %s", spec.Column)
	p.X.Label.Text = spec.Column
	p.Y.Label.Text = "count"
	return nil
}

func buildKDE(p *plot.Plot, t table.Table, spec *KDESpec) error {
	points := spec.Points
	if points <= 1 {
		points = defaultKDEPoints
	}
	groups := groupedFloats(t, spec.Column, spec.Hue)
	drawn := 0
	for i, g := range groups {
		if len(g.vals) < 2 {
			continue
		}
		kde := stats.KDE{Sample: stats.Sample{Xs: g.vals}}
		lo, hi := kde.Bounds()
		if math.IsInf(lo, 0) || math.IsInf(hi, 0) || lo >= hi {
			lo, hi = floats.Min(g.vals), floats.Max(g.vals)
			if lo == hi {
				lo, hi = lo-1, hi+1
			}
		}
		xys := make(plotter.XYs, points)
		step := (hi - lo) / float64(points-1)
		for j := range xys {
			x := lo + step*float64(j)
			xys[j] = plotter.XY{X: x, Y: kde.PDF(x)}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		if spec.Hue != "" {
			p.Legend.Add(g.name, line)
		}
		drawn++
	}
	if drawn == 0 {
		return fmt.Errorf("kde: column %q needs at least two numeric values", spec.Column)
	}
	p.Title.Text = fmt.Sprintf("Density of %s", spec.Column)
	p.X.Label.Text = spec.Column
	p.Y.Label.Text = "density"
	p.Legend.Top = true
	return nil
}

func buildScatter(p *plot.Plot, t table.Table, spec *ScatterSpec) error {
	xs, _ := t.Column(spec.X)
	ys, _ := t.Column(spec.Y)
	var hues []any
	if spec.Hue != "" {
		hues, _ = t.Column(spec.Hue)
	}

	byHue := make(map[string]plotter.XYs)
	var order []string
	for r := range xs {
		x, okX := utils.AsFloat(xs[r])
		y, okY := utils.AsFloat(ys[r])
		if !okX || !okY {
			continue
		}
		key := ""
		if hues != nil {
			if hues[r] == nil {
				continue
			}
			key = utils.FormatCell(hues[r])
		}
		if _, seen := byHue[key]; !seen {
			order = append(order, key)
		}
		byHue[key] = append(byHue[key], plotter.XY{X: x, Y: y})
	}
	if len(order) == 0 {
		return fmt.Errorf("scatter: no rows with numeric %q and %q", spec.X, spec.Y)
	}
	sort.Strings(order)

	for i, key := range order {
		sc, err := plotter.NewScatter(byHue[key])
		if err != nil {
			return err
		}
		c := plotutil.Color(i)
		if spec.Alpha > 0 && spec.Alpha < 1 {
			c = withAlpha(c, spec.Alpha)
		}
		sc.GlyphStyle.Color = c
		sc.GlyphStyle.Radius = vg.Points(2)
		p.Add(sc)
		if spec.Hue != "" {
			p.Legend.Add(key, sc)
		}
	}
	p.Title.Text = fmt.Sprintf("%s vs %s", spec.Y, spec.X)
	p.X.Label.Text = spec.X
	p.Y.Label.Text = spec.Y
	p.Legend.Top = true
	return nil
}

func buildBar(p *plot.Plot, t table.Table, spec *BarSpec) error {
	p.Title.Text = fmt.Sprintf("%s of %s by %s", estimatorName(spec.Estimator), spec.Y, spec.X)
	p.X.Label.Text = spec.X
	p.Y.Label.Text = spec.Y
	return renderBars(p, t, spec.X, spec.Y, spec.Hue, spec.Estimator)
}

func buildCount(p *plot.Plot, t table.Table, spec *CountSpec) error {
	p.Title.Text = fmt.Sprintf("Count of %s", spec.Column)
	p.X.Label.Text = spec.Column
	p.Y.Label.Text = "count"
	return renderBars(p, t, spec.Column, "", spec.Hue, "")
}

// renderBars draws (optionally hue-grouped) bars for the aggregated y per x
// category. An empty y column means plain row counting.
func renderBars(p *plot.Plot, t table.Table, x, y, hue, estimator string) error {
	xVals, _ := t.Column(x)
	var yVals, hueVals []any
	if y != "" {
		yVals, _ = t.Column(y)
	}
	if hue != "" {
		hueVals, _ = t.Column(hue)
	}

	acc := make(map[string]map[string][]float64)
	var xSeen, hueSeen []any
	xKeys := make(map[string]bool)
	hueKeys := make(map[string]bool)
	for r := range xVals {
		if xVals[r] == nil {
			continue
		}
		val := 1.0
		if yVals != nil {
			f, ok := utils.AsFloat(yVals[r])
			if !ok {
				continue
			}
			val = f
		}
		hueKey := ""
		if hueVals != nil {
			if hueVals[r] == nil {
				continue
			}
			hueKey = utils.FormatCell(hueVals[r])
			if !hueKeys[hueKey] {
				hueKeys[hueKey] = true
				hueSeen = append(hueSeen, hueVals[r])
			}
		}
		xKey := utils.FormatCell(xVals[r])
		if !xKeys[xKey] {
			xKeys[xKey] = true
			xSeen = append(xSeen, xVals[r])
		}
		if acc[hueKey] == nil {
			acc[hueKey] = make(map[string][]float64)
		}
		acc[hueKey][xKey] = append(acc[hueKey][xKey], val)
	}
	if len(xSeen) == 0 {
		return fmt.Errorf("bar: no plottable rows for %q", x)
	}

	utils.SortValues(xSeen)
	labels := formatAll(xSeen)
	groups := []string{""}
	if hueVals != nil {
		utils.SortValues(hueSeen)
		groups = formatAll(hueSeen)
	}

	width := vg.Points(24) / vg.Length(len(groups))
	for i, g := range groups {
		vals := make(plotter.Values, len(labels))
		for j, lbl := range labels {
			ys := acc[g][lbl]
			if len(ys) == 0 {
				continue
			}
			if y == "" {
				vals[j] = float64(len(ys))
			} else {
				vals[j] = estimate(ys, estimator)
			}
		}
		b, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return err
		}
		b.Color = plotutil.Color(i)
		b.Offset = width*vg.Length(i) - width*vg.Length(len(groups)-1)/2
		p.Add(b)
		if hue != "" {
			p.Legend.Add(g, b)
		}
	}
	p.NominalX(labels...)
	p.Legend.Top = true
	return nil
}

func buildHeatmap(p *plot.Plot, t table.Table, spec *HeatmapSpec) error {
	ct, err := descriptive.Crosstab(t, descriptive.CrosstabSpec{
		IndexNames:  spec.IndexNames,
		ColumnNames: spec.ColumnNames,
		Normalize:   spec.Normalize,
		Margins:     spec.Margins,
	})
	if err != nil {
		return err
	}

	grid := crosstabGrid{t: ct}
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	p.Add(hm)

	colNames := ct.Columns()
	xTicks := make([]plot.Tick, len(colNames))
	for i, name := range colNames {
		xTicks[i] = plot.Tick{Value: float64(i), Label: name}
	}
	rowLabels := ct.IndexLabels()
	yTicks := make([]plot.Tick, len(rowLabels))
	for i, tuple := range rowLabels {
		yTicks[i] = plot.Tick{Value: float64(i), Label: joinLabel(tuple)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)

	if spec.Annotate {
		var xys plotter.XYs
		var texts []string
		for r := 0; r < ct.NumRow(); r++ {
			for c := 0; c < ct.NumCol(); c++ {
				xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
				texts = append(texts, annotationText(ct.Cell(r, c)))
			}
		}
		lbls, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
		if err != nil {
			return err
		}
		p.Add(lbls)
	}

	p.Title.Text = fmt.Sprintf("%s by %s",
		strings.Join(spec.IndexNames, "/"), strings.Join(spec.ColumnNames, "/"))
	return nil
}

// crosstabGrid adapts a crosstab table to the heatmap's grid interface.
type crosstabGrid struct {
	t table.Table
}

func (g crosstabGrid) Dims() (c, r int) { return g.t.NumCol(), g.t.NumRow() }
func (g crosstabGrid) X(c int) float64  { return float64(c) }
func (g crosstabGrid) Y(r int) float64  { return float64(r) }

func (g crosstabGrid) Z(c, r int) float64 {
	v, _ := utils.AsFloat(g.t.Cell(r, c))
	return v
}

func estimate(vals []float64, estimator string) float64 {
	if len(vals) == 0 {
		return 0
	}
	switch estimator {
	case EstimatorMedian:
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		if n := len(sorted); n%2 == 0 {
			return (sorted[n/2-1] + sorted[n/2]) / 2
		}
		return sorted[len(sorted)/2]
	case EstimatorSum:
		return floats.Sum(vals)
	default:
		return stat.Mean(vals, nil)
	}
}

func estimatorName(estimator string) string {
	if estimator == "" {
		return EstimatorMean
	}
	return estimator
}

func floatColumn(t table.Table, name string) []float64 {
	vals, _ := t.Column(name)
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if f, ok := utils.AsFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

type floatGroup struct {
	name string
	vals []float64
}

func groupedFloats(t table.Table, column, hue string) []floatGroup {
	if hue == "" {
		return []floatGroup{{vals: floatColumn(t, column)}}
	}
	vals, _ := t.Column(column)
	hues, _ := t.Column(hue)

	byHue := make(map[string][]float64)
	var order []string
	for r := range vals {
		f, ok := utils.AsFloat(vals[r])
		if !ok || hues[r] == nil {
			continue
		}
		key := utils.FormatCell(hues[r])
		if _, seen := byHue[key]; !seen {
			order = append(order, key)
		}
		byHue[key] = append(byHue[key], f)
	}
	sort.Strings(order)
	out := make([]floatGroup, len(order))
	for i, key := range order {
		out[i] = floatGroup{name: key, vals: byHue[key]}
	}
	return out
}

func formatAll(vals []any) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = utils.FormatCell(v)
	}
	return out
}

func joinLabel(tuple []any) string {
	return strings.Join(formatAll(tuple), "/")
}

func annotationText(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'g', 3, 64)
	}
	return utils.FormatCell(v)
}

var namedColors = map[string]color.Color{
	"red":    color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	"green":  color.RGBA{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	"blue":   color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	"orange": color.RGBA{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	"purple": color.RGBA{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	"gray":   color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff},
	"black":  color.RGBA{A: 0xff},
}

func parseColor(s string, def color.Color) color.Color {
	if s == "" {
		return def
	}
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		if v, err := strconv.ParseUint(s[1:], 16, 32); err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
		}
	}
	return def
}

func withAlpha(c color.Color, alpha float64) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(alpha * 0xff),
	}
}
