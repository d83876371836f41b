// Package metric names the per-agent measurements a run records and where
// they live on disk.
package metric

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// TimeType is the pseudo data type resolved from the time-of-death index.
const TimeType = "time"

const AvrFileName = "AvrMetric.plt"

var (
	MetricTypes = []string{"CC", "SP"}
	metricNames = map[string]string{
		"CC": "Clustering Coefficient",
		"SP": "Shortest Path",
	}

	ComplexityTypes = []string{"A", "P", "I", "B", "H"}
	complexityNames = map[string]string{
		"A": "All",
		"P": "Processing",
		"I": "Input",
		"B": "Behavior",
		"H": "Health",
	}
)

func IsComplexity(dataType string) bool {
	_, ok := complexityNames[dataType]
	return ok
}

// Name resolves a metric type; derived metrics such as "CC_a_bu" are named
// after their root type.
func Name(dataType string) (string, error) {
	if name, ok := metricNames[dataType]; ok {
		return name, nil
	}
	root, _, _ := strings.Cut(dataType, "_")
	if name, ok := metricNames[root]; ok {
		return name + " (" + dataType + ")", nil
	}
	return "", fmt.Errorf("unknown metric type: %s", dataType)
}

func Names(types []string) ([]string, error) {
	out := make([]string, 0, len(types))
	for _, t := range types {
		name, err := Name(t)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

func FileName(dataType string) string {
	if IsComplexity(dataType) {
		return "complexity_" + dataType + ".plt"
	}
	return "metric_" + dataType + ".plt"
}

// TypeFromFileName inverts FileName for complexity_<t>.plt and
// metric_<t>.plt names.
func TypeFromFileName(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".plt") {
		return "", false
	}
	stem := strings.TrimSuffix(base, ".plt")
	if t, ok := strings.CutPrefix(stem, "complexity_"); ok && IsComplexity(t) {
		return t, true
	}
	if t, ok := strings.CutPrefix(stem, "metric_"); ok && t != "" {
		return t, true
	}
	return "", false
}

func AxisLabel(dataType string) string {
	if dataType == TimeType {
		return "Time"
	}
	if name, ok := complexityNames[dataType]; ok {
		return "Complexity (" + name + ")"
	}
	if name, err := Name(dataType); err == nil {
		return name
	}
	return dataType
}

// Normalize drops zero entries (agents skipped by the complexity pass for a
// short lifespan) and sorts the rest ascending.
func Normalize(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != 0.0 {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func RelAvrPath(recentType string) string {
	return filepath.Join("brain", recentType, AvrFileName)
}

func AvrPath(runDir, recentType string) string {
	return filepath.Join(runDir, RelAvrPath(recentType))
}

// RunDirFromAvr inverts AvrPath.
func RunDirFromAvr(avrPath, recentType string) (string, error) {
	suffix := string(filepath.Separator) + RelAvrPath(recentType)
	clean := filepath.Clean(avrPath)
	if !strings.HasSuffix(clean, suffix) {
		return "", fmt.Errorf("%s is not an %s path", avrPath, AvrFileName)
	}
	return strings.TrimSuffix(clean, suffix), nil
}
