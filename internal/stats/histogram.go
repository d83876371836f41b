package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultBins is the bin count of metric distribution plots.
const DefaultBins = 11

type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram counts sorted values into bins equal-width bins spanning
// [lo, hi]. The last bin is closed so hi itself is counted. Values outside
// the span are an error.
func Histogram(sorted []float64, lo, hi float64, bins int) ([]Bin, error) {
	if bins <= 0 {
		return nil, fmt.Errorf("bins must be > 0, got %d", bins)
	}
	if len(sorted) == 0 {
		return nil, ErrEmptyGroup
	}
	if !sort.Float64sAreSorted(sorted) {
		return nil, errors.New("histogram values must be sorted")
	}
	if hi < lo {
		return nil, fmt.Errorf("empty histogram span [%g, %g]", lo, hi)
	}
	if sorted[0] < lo || sorted[len(sorted)-1] > hi {
		return nil, fmt.Errorf("values [%g, %g] outside span [%g, %g]", sorted[0], sorted[len(sorted)-1], lo, hi)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	out[bins-1].Hi = hi
	return out, nil
}
