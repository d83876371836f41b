package stats

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistogram(t *testing.T) {
	bins, err := Histogram([]float64{1, 2, 2, 3, 4}, 1, 4, 3)
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}
	want := []Bin{{Lo: 1, Hi: 2, Count: 1}, {Lo: 2, Hi: 3, Count: 2}, {Lo: 3, Hi: 4, Count: 2}}
	if diff := cmp.Diff(want, bins); diff != "" {
		t.Fatalf("unexpected bins (-want +got):\n%s", diff)
	}
}

func TestHistogramSingleValue(t *testing.T) {
	bins, err := Histogram([]float64{0.5, 0.5}, 0.5, 0.5, 2)
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}
	if bins[0].Lo != 0 || bins[1].Hi != 1 || bins[1].Count != 2 {
		t.Fatalf("unexpected bins: %+v", bins)
	}
}

func TestHistogramErrors(t *testing.T) {
	if _, err := Histogram(nil, 0, 1, 3); !errors.Is(err, ErrEmptyGroup) {
		t.Fatalf("expected empty error, got %v", err)
	}
	cases := map[string]struct {
		values []float64
		lo, hi float64
		bins   int
	}{
		"zero bins":    {values: []float64{1}, lo: 0, hi: 1, bins: 0},
		"unsorted":     {values: []float64{2, 1}, lo: 0, hi: 2, bins: 2},
		"outside span": {values: []float64{1, 5}, lo: 0, hi: 4, bins: 2},
		"reversed":     {values: []float64{1}, lo: 2, hi: 0, bins: 2},
	}
	for name, tc := range cases {
		if _, err := Histogram(tc.values, tc.lo, tc.hi, tc.bins); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
