package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrEmptyGroup reports a group with no values left to summarise.
var ErrEmptyGroup = errors.New("empty group")

type GroupStat struct {
	Mean   float64 `json:"mean"`
	StdErr float64 `json:"std_err"`
	Std    float64 `json:"std"`
	N      int     `json:"n"`
}

// Mean is a running mean; unlike sum/n it stays within [min, max] of the
// sample.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyGroup
	}
	mean := 0.0
	for i, value := range values {
		mean += (value - mean) / float64(i+1)
	}
	return mean, nil
}

// Std returns the population standard deviation.
func Std(values []float64) (float64, error) {
	mean, err := Mean(values)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(stat.MomentAbout(2, values, mean, nil)), nil
}

func MeanStdErr(values []float64) (GroupStat, error) {
	mean, err := Mean(values)
	if err != nil {
		return GroupStat{}, err
	}
	std, err := Std(values)
	if err != nil {
		return GroupStat{}, err
	}
	n := len(values)
	return GroupStat{
		Mean:   mean,
		StdErr: std / math.Sqrt(float64(n)),
		Std:    std,
		N:      n,
	}, nil
}

// AggregateGroup summarises value over the members of group accepted by keep.
// A nil keep accepts every member.
func AggregateGroup[T any](group []T, value func(T) float64, keep func(T) bool) (GroupStat, error) {
	values := make([]float64, 0, len(group))
	for _, member := range group {
		if keep != nil && !keep(member) {
			continue
		}
		values = append(values, value(member))
	}
	return MeanStdErr(values)
}

// Aggregate computes one GroupStat per group. The first group left empty by
// keep fails the whole call.
func Aggregate[T any](groups [][]T, value func(T) float64, keep func(T) bool) ([]GroupStat, error) {
	if value == nil {
		return nil, errors.New("value function is required")
	}
	out := make([]GroupStat, 0, len(groups))
	for i, group := range groups {
		stat, err := AggregateGroup(group, value, keep)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		out = append(out, stat)
	}
	return out, nil
}
