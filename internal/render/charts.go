package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoData = errors.New("nothing to plot")

// BarGroup is one labelled set of bars, one value per cluster.
type BarGroup struct {
	Label  string
	Means  []float64
	StdErr []float64
}

type BarChart struct {
	Title         string
	XLabel        string
	YLabel        string
	ClusterLabels []string
	Groups        []BarGroup
	YMin, YMax    float64
	Width, Height int
}

// Chart lays the groups side by side inside each cluster slot. Cluster i is
// centred on x = i.
func (b BarChart) Chart() (chart.Chart, error) {
	if len(b.Groups) == 0 || len(b.ClusterLabels) == 0 {
		return chart.Chart{}, ErrNoData
	}
	n := len(b.ClusterLabels)
	for _, g := range b.Groups {
		if len(g.Means) != n {
			return chart.Chart{}, fmt.Errorf("group %q: %d values for %d clusters", g.Label, len(g.Means), n)
		}
	}

	const slot = 0.8
	width := slot / float64(len(b.Groups))
	series := make([]chart.Series, 0, len(b.Groups))
	for gi, g := range b.Groups {
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = float64(i) - slot/2 + width*(float64(gi)+0.5)
		}
		color := Palette(gi, len(b.Groups))
		series = append(series, barSeries{
			name:   g.Label,
			style:  chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1},
			xs:     xs,
			means:  g.Means,
			errs:   g.StdErr,
			width:  width,
			capPix: 3,
		})
	}

	// explicit ticks define the x range, so pad it with unlabelled ends
	ticks := make([]chart.Tick, 0, n+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, label := range b.ClusterLabels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
	}
	ticks = append(ticks, chart.Tick{Value: float64(n) - 0.5})

	yMin, yMax := b.YMin, b.YMax
	if yMax <= yMin {
		yMin, yMax = 0, 1
	}
	w, h := defaultSize(b.Width, b.Height)
	c := chart.Chart{
		Title:      b.Title,
		Width:      w,
		Height:     h,
		Background: background(),
		XAxis: chart.XAxis{
			Name:  b.XLabel,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  b.YLabel,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: series,
	}
	c.Elements = []chart.Renderable{legend(series)}
	return c, nil
}

// ScatterPoint is one agent in a scatter plot.
type ScatterPoint struct {
	X, Y  float64
	Color drawing.Color
}

// ScatterLayer groups points drawn with one legend entry.
type ScatterLayer struct {
	Label  string
	Points []ScatterPoint
}

type ScatterChart struct {
	Title         string
	XLabel        string
	YLabel        string
	Layers        []ScatterLayer
	XRange        *chart.ContinuousRange
	YRange        *chart.ContinuousRange
	DotWidth      float64
	Width, Height int
}

func (s ScatterChart) Chart() (chart.Chart, error) {
	var allX, allY []float64
	series := make([]chart.Series, 0, len(s.Layers))
	dot := s.DotWidth
	if dot <= 0 {
		dot = 2
	}
	for _, layer := range s.Layers {
		if len(layer.Points) == 0 {
			continue
		}
		xs := make([]float64, len(layer.Points))
		ys := make([]float64, len(layer.Points))
		colors := make([]drawing.Color, len(layer.Points))
		for i, p := range layer.Points {
			xs[i], ys[i], colors[i] = p.X, p.Y, p.Color
		}
		allX = append(allX, xs...)
		allY = append(allY, ys...)
		series = append(series, chart.ContinuousSeries{
			Name: layer.Label,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    dot,
				DotColor:    colors[0],
				DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
					return colors[index]
				},
			},
			XValues: xs,
			YValues: ys,
		})
	}
	if len(series) == 0 {
		return chart.Chart{}, ErrNoData
	}

	xr, yr := s.XRange, s.YRange
	if xr == nil {
		xr = paddedRange(allX)
	}
	if yr == nil {
		yr = paddedRange(allY)
	}
	w, h := defaultSize(s.Width, s.Height)
	c := chart.Chart{
		Title:      s.Title,
		Width:      w,
		Height:     h,
		Background: background(),
		XAxis:      chart.XAxis{Name: s.XLabel, Range: xr},
		YAxis:      chart.YAxis{Name: s.YLabel, Range: yr},
		Series:     series,
	}
	if len(series) > 1 {
		c.Elements = []chart.Renderable{legend(series)}
	}
	return c, nil
}

// Band is a mean line with a shaded mean +/- spread region. A zero Color
// picks one from the palette.
type Band struct {
	Label  string
	Color  drawing.Color
	Steps  []float64
	Mean   []float64
	Spread []float64
}

type BandChart struct {
	Title         string
	XLabel        string
	YLabel        string
	Bands         []Band
	YMin, YMax    float64
	Width, Height int
}

// Chart clips every band to [YMin, YMax]. NaN entries in Mean are gaps and
// split the line.
func (b BandChart) Chart() (chart.Chart, error) {
	yMin, yMax := b.YMin, b.YMax
	if yMax <= yMin {
		return chart.Chart{}, fmt.Errorf("invalid y range [%v, %v]", yMin, yMax)
	}
	var series []chart.Series
	var allX []float64
	for bi, band := range b.Bands {
		if len(band.Steps) != len(band.Mean) || len(band.Steps) != len(band.Spread) {
			return chart.Chart{}, fmt.Errorf("band %q: mismatched lengths", band.Label)
		}
		color := band.Color
		if color.IsZero() {
			color = Palette(bi, len(b.Bands))
		}
		for si, seg := range segments(band.Mean) {
			xs := band.Steps[seg[0]:seg[1]]
			mean := band.Mean[seg[0]:seg[1]]
			lower := make([]float64, len(xs))
			upper := make([]float64, len(xs))
			clipped := make([]float64, len(xs))
			for i := range xs {
				clipped[i] = clamp(mean[i], yMin, yMax)
				lower[i] = clamp(mean[i]-band.Spread[seg[0]+i], yMin, yMax)
				upper[i] = clamp(mean[i]+band.Spread[seg[0]+i], yMin, yMax)
			}
			allX = append(allX, xs...)
			series = append(series, bandSeries{
				style: chart.Style{FillColor: WithAlpha(color, 0.25)},
				xs:    xs,
				lower: lower,
				upper: upper,
			})
			line := chart.ContinuousSeries{
				Style:   chart.Style{StrokeColor: color, StrokeWidth: 2},
				XValues: xs,
				YValues: clipped,
			}
			if si == 0 {
				line.Name = band.Label
			}
			series = append(series, line)
		}
	}
	if len(series) == 0 {
		return chart.Chart{}, ErrNoData
	}
	w, h := defaultSize(b.Width, b.Height)
	c := chart.Chart{
		Title:      b.Title,
		Width:      w,
		Height:     h,
		Background: background(),
		XAxis:      chart.XAxis{Name: b.XLabel, Range: paddedRange(allX)},
		YAxis:      chart.YAxis{Name: b.YLabel, Range: &chart.ContinuousRange{Min: yMin, Max: yMax}},
		Series:     series,
	}
	c.Elements = []chart.Renderable{legend(series)}
	return c, nil
}

// segments returns [start, end) runs of non-NaN values.
func segments(values []float64) [][2]int {
	var out [][2]int
	start := -1
	for i, v := range values {
		switch {
		case math.IsNaN(v) && start >= 0:
			out = append(out, [2]int{start, i})
			start = -1
		case !math.IsNaN(v) && start < 0:
			start = i
		}
	}
	if start >= 0 {
		out = append(out, [2]int{start, len(values)})
	}
	return out
}

// Line is a named y-over-step series.
type Line struct {
	Label  string
	Steps  []float64
	Values []float64
}

type LineChart struct {
	Title         string
	XLabel        string
	YLabel        string
	Lines         []Line
	YMin, YMax    float64
	Width, Height int
}

func (l LineChart) Chart() (chart.Chart, error) {
	var series []chart.Series
	var allX, allY []float64
	for i, line := range l.Lines {
		if len(line.Steps) != len(line.Values) {
			return chart.Chart{}, fmt.Errorf("line %q: mismatched lengths", line.Label)
		}
		if len(line.Steps) == 0 {
			continue
		}
		allX = append(allX, line.Steps...)
		allY = append(allY, line.Values...)
		series = append(series, chart.ContinuousSeries{
			Name:    line.Label,
			Style:   chart.Style{StrokeColor: Palette(i, len(l.Lines)), StrokeWidth: 2},
			XValues: line.Steps,
			YValues: line.Values,
		})
	}
	if len(series) == 0 {
		return chart.Chart{}, ErrNoData
	}
	yr := paddedRange(allY)
	if l.YMax > l.YMin {
		yr = &chart.ContinuousRange{Min: l.YMin, Max: l.YMax}
	}
	w, h := defaultSize(l.Width, l.Height)
	c := chart.Chart{
		Title:      l.Title,
		Width:      w,
		Height:     h,
		Background: background(),
		XAxis:      chart.XAxis{Name: l.XLabel, Range: paddedRange(allX)},
		YAxis:      chart.YAxis{Name: l.YLabel, Range: yr},
		Series:     series,
	}
	c.Elements = []chart.Renderable{legend(series)}
	return c, nil
}
