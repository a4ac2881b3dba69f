package plots

import (
	"encoding/json"
	"errors"
	"fmt"

	"DataScope/src/table"

	"github.com/go-gota/gota/series"
)

// ErrUnknownPlotType marks a request whose "type" tag names no known plot.
var ErrUnknownPlotType = errors.New("unknown plot type")

// Kind tags a plot request variant.
type Kind string

const (
	KindHistogram Kind = "histogram"
	KindKDE       Kind = "kde"
	KindScatter   Kind = "scatter"
	KindBar       Kind = "bar"
	KindCount     Kind = "count"
	KindHeatmap   Kind = "heatmap"
)

// Bar estimators.
const (
	EstimatorMean   = "mean"
	EstimatorMedian = "median"
	EstimatorSum    = "sum"
)

// HistogramSpec bins one numeric column.
type HistogramSpec struct {
	Column string `json:"column"`
	Bins   int    `json:"bins,omitempty"`
	Color  string `json:"color,omitempty"`
}

// KDESpec draws a kernel density curve per hue group.
type KDESpec struct {
	Column string `json:"column"`
	Hue    string `json:"hue,omitempty"`
	Points int    `json:"points,omitempty"`
}

// ScatterSpec plots two numeric columns against each other.
type ScatterSpec struct {
	X     string  `json:"x"`
	Y     string  `json:"y"`
	Hue   string  `json:"hue,omitempty"`
	Alpha float64 `json:"alpha,omitempty"`
}

// BarSpec aggregates a numeric column per category.
type BarSpec struct {
	X         string `json:"x"`
	Y         string `json:"y"`
	Hue       string `json:"hue,omitempty"`
	Estimator string `json:"estimator,omitempty"`
}

// CountSpec counts rows per category.
type CountSpec struct {
	Column string `json:"column"`
	Hue    string `json:"hue,omitempty"`
}

// HeatmapSpec renders a crosstab as a colored grid.
type HeatmapSpec struct {
	IndexNames  []string `json:"index_names"`
	ColumnNames []string `json:"column_names"`
	Normalize   bool     `json:"normalize,omitempty"`
	Margins     bool     `json:"margins,omitempty"`
	Annotate    bool     `json:"annotate,omitempty"`
}

// Request is a tagged union over the plot variants. Exactly the variant
// matching Kind is set; the wire form is {"type": ..., "params": {...}}.
type Request struct {
	Kind      Kind
	Histogram *HistogramSpec
	KDE       *KDESpec
	Scatter   *ScatterSpec
	Bar       *BarSpec
	Count     *CountSpec
	Heatmap   *HeatmapSpec
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var env struct {
		Type   Kind            `json:"type"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if len(env.Params) == 0 {
		env.Params = json.RawMessage("{}")
	}

	*r = Request{Kind: env.Type}
	var spec any
	switch env.Type {
	case KindHistogram:
		r.Histogram = &HistogramSpec{}
		spec = r.Histogram
	case KindKDE:
		r.KDE = &KDESpec{}
		spec = r.KDE
	case KindScatter:
		r.Scatter = &ScatterSpec{}
		spec = r.Scatter
	case KindBar:
		r.Bar = &BarSpec{}
		spec = r.Bar
	case KindCount:
		r.Count = &CountSpec{}
		spec = r.Count
	case KindHeatmap:
		r.Heatmap = &HeatmapSpec{}
		spec = r.Heatmap
	default:
		return fmt.Errorf("%w %q: expected one of histogram, kde, scatter, bar, count, heatmap", ErrUnknownPlotType, env.Type)
	}
	if err := json.Unmarshal(env.Params, spec); err != nil {
		return fmt.Errorf("%s params: %w", env.Type, err)
	}
	return nil
}

// Validate checks the request against the table before any rendering
// starts: required fields, column existence and numeric requirements.
func (r Request) Validate(t table.Table) error {
	switch r.Kind {
	case KindHistogram:
		if r.Histogram == nil {
			return missingParams(r.Kind)
		}
		return requireNumeric(t, r.Kind, "column", r.Histogram.Column)
	case KindKDE:
		if r.KDE == nil {
			return missingParams(r.Kind)
		}
		if err := requireNumeric(t, r.Kind, "column", r.KDE.Column); err != nil {
			return err
		}
		return optionalColumn(t, r.Kind, "hue", r.KDE.Hue)
	case KindScatter:
		if r.Scatter == nil {
			return missingParams(r.Kind)
		}
		if err := requireNumeric(t, r.Kind, "x", r.Scatter.X); err != nil {
			return err
		}
		if err := requireNumeric(t, r.Kind, "y", r.Scatter.Y); err != nil {
			return err
		}
		return optionalColumn(t, r.Kind, "hue", r.Scatter.Hue)
	case KindBar:
		if r.Bar == nil {
			return missingParams(r.Kind)
		}
		if err := requireColumn(t, r.Kind, "x", r.Bar.X); err != nil {
			return err
		}
		if err := requireNumeric(t, r.Kind, "y", r.Bar.Y); err != nil {
			return err
		}
		switch r.Bar.Estimator {
		case "", EstimatorMean, EstimatorMedian, EstimatorSum:
		default:
			return fmt.Errorf("bar: unknown estimator %q: expected mean, median or sum", r.Bar.Estimator)
		}
		return optionalColumn(t, r.Kind, "hue", r.Bar.Hue)
	case KindCount:
		if r.Count == nil {
			return missingParams(r.Kind)
		}
		if err := requireColumn(t, r.Kind, "column", r.Count.Column); err != nil {
			return err
		}
		return optionalColumn(t, r.Kind, "hue", r.Count.Hue)
	case KindHeatmap:
		if r.Heatmap == nil {
			return missingParams(r.Kind)
		}
		if len(r.Heatmap.IndexNames) == 0 || len(r.Heatmap.ColumnNames) == 0 {
			return fmt.Errorf("heatmap: index_names and column_names are required")
		}
		for _, name := range r.Heatmap.IndexNames {
			if err := requireColumn(t, r.Kind, "index_names", name); err != nil {
				return err
			}
		}
		for _, name := range r.Heatmap.ColumnNames {
			if err := requireColumn(t, r.Kind, "column_names", name); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w %q: expected one of histogram, kde, scatter, bar, count, heatmap", ErrUnknownPlotType, r.Kind)
	}
}

func missingParams(kind Kind) error {
	return fmt.Errorf("%s: missing params", kind)
}

func requireColumn(t table.Table, kind Kind, field, name string) error {
	if name == "" {
		return fmt.Errorf("%s: %s is required", kind, field)
	}
	if !t.HasColumn(name) {
		return fmt.Errorf("%s: no column named %q", kind, name)
	}
	return nil
}

func requireNumeric(t table.Table, kind Kind, field, name string) error {
	if err := requireColumn(t, kind, field, name); err != nil {
		return err
	}
	typ, _ := t.ColumnType(name)
	if typ != series.Int && typ != series.Float {
		return fmt.Errorf("%s: column %q is not numeric", kind, name)
	}
	return nil
}

func optionalColumn(t table.Table, kind Kind, field, name string) error {
	if name == "" {
		return nil
	}
	return requireColumn(t, kind, field, name)
}
