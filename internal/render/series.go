package render

import (
	"errors"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// barSeries draws one bar per x value with an optional error bar on top.
type barSeries struct {
	name   string
	style  chart.Style
	xs     []float64
	means  []float64
	errs   []float64
	width  float64
	capPix int
}

func (b barSeries) GetName() string                { return b.name }
func (b barSeries) GetYAxis() chart.YAxisType      { return chart.YAxisPrimary }
func (b barSeries) GetStyle() chart.Style          { return b.style }
func (b barSeries) Len() int                       { return len(b.xs) }
func (b barSeries) GetValues(i int) (x, y float64) { return b.xs[i], b.means[i] }

func (b barSeries) Validate() error {
	if len(b.xs) != len(b.means) {
		return errors.New("bar series: x and mean lengths differ")
	}
	if b.errs != nil && len(b.errs) != len(b.means) {
		return errors.New("bar series: error and mean lengths differ")
	}
	return nil
}

func (b barSeries) Render(r chart.Renderer, box chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	base := max(0, yrange.GetMin())
	yBase := box.Bottom - yrange.Translate(base)
	for i, x := range b.xs {
		x0 := box.Left + xrange.Translate(x-b.width/2)
		x1 := box.Left + xrange.Translate(x+b.width/2)
		y1 := box.Bottom - yrange.Translate(b.means[i])

		r.SetFillColor(b.style.FillColor)
		r.SetStrokeColor(b.style.StrokeColor)
		r.SetStrokeWidth(b.style.StrokeWidth)
		r.MoveTo(x0, yBase)
		r.LineTo(x1, yBase)
		r.LineTo(x1, y1)
		r.LineTo(x0, y1)
		r.Close()
		r.FillStroke()

		if b.errs == nil || b.errs[i] == 0 {
			continue
		}
		xc := box.Left + xrange.Translate(x)
		lo := box.Bottom - yrange.Translate(b.means[i]-b.errs[i])
		hi := box.Bottom - yrange.Translate(b.means[i]+b.errs[i])
		r.SetStrokeColor(drawing.ColorBlack)
		r.SetStrokeWidth(1)
		r.MoveTo(xc, lo)
		r.LineTo(xc, hi)
		r.Stroke()
		for _, y := range []int{lo, hi} {
			r.MoveTo(xc-b.capPix, y)
			r.LineTo(xc+b.capPix, y)
			r.Stroke()
		}
	}
}

// bandSeries fills the region between lower and upper.
type bandSeries struct {
	name  string
	style chart.Style
	xs    []float64
	lower []float64
	upper []float64
}

func (b bandSeries) GetName() string           { return b.name }
func (b bandSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (b bandSeries) GetStyle() chart.Style     { return b.style }

func (b bandSeries) Validate() error {
	if len(b.xs) != len(b.lower) || len(b.xs) != len(b.upper) {
		return errors.New("band series: bound lengths differ")
	}
	return nil
}

func (b bandSeries) Render(r chart.Renderer, box chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	if len(b.xs) < 2 {
		return
	}
	px := func(x float64) int { return box.Left + xrange.Translate(x) }
	py := func(y float64) int { return box.Bottom - yrange.Translate(y) }

	r.SetFillColor(b.style.FillColor)
	r.SetStrokeWidth(0)
	r.SetStrokeColor(drawing.ColorTransparent)
	r.MoveTo(px(b.xs[0]), py(b.upper[0]))
	for i := 1; i < len(b.xs); i++ {
		r.LineTo(px(b.xs[i]), py(b.upper[i]))
	}
	for i := len(b.xs) - 1; i >= 0; i-- {
		r.LineTo(px(b.xs[i]), py(b.lower[i]))
	}
	r.Close()
	r.Fill()
}
