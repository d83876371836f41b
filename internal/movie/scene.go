package movie

import (
	"context"
	"errors"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"pwviz/internal/model"
	"pwviz/internal/render"
	"pwviz/internal/run"
)

// Scene is a top-down view of agent positions with one colour per cluster.
type Scene struct {
	Labels   []string
	Clusters []model.Cluster
	Tracks   map[int]run.Track
	xRange   *chart.ContinuousRange
	zRange   *chart.ContinuousRange
}

// NewScene fixes the axis ranges over every recorded position so frames line
// up when played back.
func NewScene(clusters []model.Cluster, labels []string, tracks map[int]run.Track) (*Scene, error) {
	if len(labels) != len(clusters) {
		return nil, fmt.Errorf("%d labels for %d clusters", len(labels), len(clusters))
	}
	var xs, zs []float64
	for _, track := range tracks {
		for _, p := range track {
			xs = append(xs, p.X)
			zs = append(zs, p.Z)
		}
	}
	if len(xs) == 0 {
		return nil, render.ErrNoData
	}
	return &Scene{
		Labels:   labels,
		Clusters: clusters,
		Tracks:   tracks,
		xRange:   spanRange(xs),
		zRange:   spanRange(zs),
	}, nil
}

func (s *Scene) Frame(_ context.Context, step int) (chart.Chart, error) {
	layers := make([]render.ScatterLayer, 0, len(s.Clusters))
	for ci, members := range s.Clusters {
		color := render.Palette(ci, len(s.Clusters))
		layer := render.ScatterLayer{Label: s.Labels[ci]}
		for _, id := range members {
			p, ok := s.Tracks[id].At(step)
			if !ok {
				continue
			}
			layer.Points = append(layer.Points, render.ScatterPoint{X: p.X, Y: p.Z, Color: color})
		}
		layers = append(layers, layer)
	}
	// rendering sets the range domain, so each frame gets its own copy
	xr, zr := *s.xRange, *s.zRange
	sc := render.ScatterChart{
		XLabel:   "x",
		YLabel:   "z",
		Layers:   layers,
		XRange:   &xr,
		YRange:   &zr,
		DotWidth: 3,
		Width:    FrameWidth,
		Height:   FrameHeight,
	}
	c, err := sc.Chart()
	if errors.Is(err, render.ErrNoData) {
		// nobody alive at step
		return emptyFrame(&xr, &zr), nil
	}
	return c, err
}

func emptyFrame(xr, zr *chart.ContinuousRange) chart.Chart {
	return chart.Chart{
		Width:  FrameWidth,
		Height: FrameHeight,
		XAxis:  chart.XAxis{Name: "x", Range: xr},
		YAxis:  chart.YAxis{Name: "z", Range: zr},
		Series: []chart.Series{chart.ContinuousSeries{
			Style:   chart.Style{StrokeWidth: chart.Disabled},
			XValues: []float64{xr.Min, xr.Max},
			YValues: []float64{zr.Min, zr.Max},
		}},
	}
}

func spanRange(values []float64) *chart.ContinuousRange {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}
