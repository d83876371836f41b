package stats

import "sort"

type PlotPoint struct {
	Index  int     `json:"index"`
	Value  float64 `json:"value"`
	StdErr float64 `json:"std_err"`
	N      int     `json:"n"`
}

// AverageAcross averages keyed series (for example per-timestep run averages)
// at every key present in at least one series. Points come back sorted by key.
func AverageAcross(series []map[int]float64) []PlotPoint {
	byKey := make(map[int][]float64)
	for _, s := range series {
		for key, value := range s {
			byKey[key] = append(byKey[key], value)
		}
	}
	keys := make([]int, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	points := make([]PlotPoint, 0, len(keys))
	for _, key := range keys {
		stat, err := MeanStdErr(byKey[key])
		if err != nil {
			continue
		}
		points = append(points, PlotPoint{Index: key, Value: stat.Mean, StdErr: stat.StdErr, N: stat.N})
	}
	return points
}

// AveragePositional averages lists position by position. Lists that run out
// drop from later positions.
func AveragePositional(lists [][]float64, startIndex, step int) []PlotPoint {
	if step <= 0 {
		step = 1
	}
	longest := 0
	for _, list := range lists {
		if len(list) > longest {
			longest = len(list)
		}
	}
	points := make([]PlotPoint, 0, longest)
	for pos := 0; pos < longest; pos++ {
		values := make([]float64, 0, len(lists))
		for _, list := range lists {
			if pos < len(list) {
				values = append(values, list[pos])
			}
		}
		stat, err := MeanStdErr(values)
		if err != nil {
			continue
		}
		points = append(points, PlotPoint{Index: startIndex + pos*step, Value: stat.Mean, StdErr: stat.StdErr, N: stat.N})
	}
	return points
}
