package render

import (
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// paired mirrors the twelve-colour "Paired" qualitative map.
var paired = []drawing.Color{
	{R: 0xa6, G: 0xce, B: 0xe3, A: 255},
	{R: 0x1f, G: 0x78, B: 0xb4, A: 255},
	{R: 0xb2, G: 0xdf, B: 0x8a, A: 255},
	{R: 0x33, G: 0xa0, B: 0x2c, A: 255},
	{R: 0xfb, G: 0x9a, B: 0x99, A: 255},
	{R: 0xe3, G: 0x1a, B: 0x1c, A: 255},
	{R: 0xfd, G: 0xbf, B: 0x6f, A: 255},
	{R: 0xff, G: 0x7f, B: 0x00, A: 255},
	{R: 0xca, G: 0xb2, B: 0xd6, A: 255},
	{R: 0x6a, G: 0x3d, B: 0x9a, A: 255},
	{R: 0xff, G: 0xff, B: 0x99, A: 255},
	{R: 0xb1, G: 0x59, B: 0x28, A: 255},
}

// Palette picks the colour of item i out of n from the Paired map, spreading
// the items over the whole map the way a normalised colormap lookup does.
func Palette(i, n int) drawing.Color {
	if n <= 0 {
		return paired[0]
	}
	idx := int(float64(i) / float64(n) * float64(len(paired)))
	return paired[clampInt(idx, 0, len(paired)-1)]
}

// Jet maps f in [0, 1] onto the blue-cyan-yellow-red ramp.
func Jet(f float64) drawing.Color {
	f = clamp(f, 0, 1)
	r := clamp(1.5-math.Abs(4*f-3), 0, 1)
	g := clamp(1.5-math.Abs(4*f-2), 0, 1)
	b := clamp(1.5-math.Abs(4*f-1), 0, 1)
	return rgba(r, g, b, 1)
}

type colorStop struct {
	at    float64
	color [3]float64
}

var hfStops = []colorStop{
	{0, [3]float64{0, 0, 1}},
	{20, [3]float64{0, 1, 0}},
	{24, [3]float64{1, 0, 0}},
}

// HFMax is the heuristic fitness that maps to the last colour stop.
const HFMax = 24.0

// HFColor interpolates heuristic fitness from blue (0) through green (20) to
// red (24 and above).
func HFColor(f float64) drawing.Color {
	for i := 1; i < len(hfStops); i++ {
		hi := hfStops[i]
		if f < hi.at {
			lo := hfStops[i-1]
			t := (f - lo.at) / (hi.at - lo.at)
			var c [3]float64
			for k := range c {
				c[k] = clamp(lo.color[k]+t*(hi.color[k]-lo.color[k]), 0, 1)
			}
			return rgba(c[0], c[1], c[2], 1)
		}
	}
	last := hfStops[len(hfStops)-1].color
	return rgba(last[0], last[1], last[2], 1)
}

// TimeColor fades from light to saturated as the run progresses. Driven runs
// are drawn green and nearly transparent, passive runs blue and opaque.
func TimeColor(timeFrac float64, group string) drawing.Color {
	const cMax = 0.8
	c := cMax - math.Pow(timeFrac*cMax, 2)
	c = clamp(c, 0, 1)
	if group == "driven" {
		return rgba(c, 1, c, 0.01)
	}
	return rgba(c, c, 1, 1)
}

func WithAlpha(c drawing.Color, alpha float64) drawing.Color {
	c.A = uint8(math.Round(clamp(alpha, 0, 1) * 255))
	return c
}

func rgba(r, g, b, a float64) drawing.Color {
	return drawing.Color{
		R: uint8(math.Round(r * 255)),
		G: uint8(math.Round(g * 255)),
		B: uint8(math.Round(b * 255)),
		A: uint8(math.Round(a * 255)),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
