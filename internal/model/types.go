package model

// VersionedRecord captures schema and codec evolution for persisted results.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Agent is a read-only view of one simulated organism. It exists over the
// half-open step interval [Birth, Death).
type Agent struct {
	ID            int     `json:"id"`
	Birth         int     `json:"birth"`
	Death         int     `json:"death"`
	Genome        []byte  `json:"genome,omitempty"`
	Complexity    float64 `json:"complexity"`
	HasComplexity bool    `json:"has_complexity"`
}

func (a Agent) AliveAt(step int) bool {
	return a.Birth <= step && step < a.Death
}

// GeneValue returns the raw gene byte scaled into [0, 1]. Out of range
// indexes report false.
func (a Agent) GeneValue(index int) (float64, bool) {
	if index < 0 || index >= len(a.Genome) {
		return 0, false
	}
	return float64(a.Genome[index]) / 255.0, true
}

// Cluster is an ordered group of agent IDs produced by an external
// similarity-based clustering.
type Cluster []int

func (c Cluster) Clone() Cluster {
	return append(Cluster(nil), c...)
}

func CountAgents(clusters []Cluster) int {
	total := 0
	for _, c := range clusters {
		total += len(c)
	}
	return total
}

// GroupStatsRecord is a persisted set of per-group statistics.
type GroupStatsRecord struct {
	VersionedRecord
	Key    string          `json:"key"`
	Source string          `json:"source"`
	Labels []string        `json:"labels"`
	Groups []int           `json:"groups"`
	Series []GroupStatsRow `json:"series"`
}

type GroupStatsRow struct {
	Label  string    `json:"label"`
	Mean   []float64 `json:"mean"`
	StdErr []float64 `json:"std_err"`
	N      []int     `json:"n"`
}

// DeathIndexRecord is a persisted time-of-death index for one run directory.
// RunDir is absolute. LogSize and LogModTime describe the birth/death log the
// index was built from; a log that no longer matches them makes the record
// stale.
type DeathIndexRecord struct {
	VersionedRecord
	RunDir     string      `json:"run_dir"`
	LogSize    int64       `json:"log_size"`
	LogModTime int64       `json:"log_mod_time"`
	Deaths     map[int]int `json:"deaths"`
}
