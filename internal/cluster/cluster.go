package cluster

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"pwviz/internal/model"
)

// DefaultMinSize is the member count below which a cluster is folded into
// the misc cluster.
const DefaultMinSize = 700

const (
	OrderFile   = "file"
	OrderSize   = "size"
	OrderRandom = "random"
)

type LoadOptions struct {
	Order string
	Seed  int64
}

// Load reads one cluster per line as whitespace separated agent IDs. Blank
// lines and # comments are skipped.
func Load(r io.Reader, opts LoadOptions) ([]model.Cluster, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	clusters := make([]model.Cluster, 0, 32)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		c := make(model.Cluster, 0, len(fields))
		for _, field := range fields {
			id, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("cluster line %d: invalid agent id %q", lineNo, field)
			}
			c = append(c, id)
		}
		clusters = append(clusters, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return Order(clusters, opts)
}

func LoadFile(path string, opts LoadOptions) ([]model.Cluster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	clusters, err := Load(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clusters, nil
}

// Order returns the clusters rearranged per opts.Order, leaving the input alone.
func Order(clusters []model.Cluster, opts LoadOptions) ([]model.Cluster, error) {
	out := append([]model.Cluster(nil), clusters...)
	switch strings.ToLower(strings.TrimSpace(opts.Order)) {
	case "", OrderFile:
	case OrderSize:
		sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	case OrderRandom:
		rng := rand.New(rand.NewSource(opts.Seed))
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	default:
		return nil, fmt.Errorf("unsupported cluster order: %s", opts.Order)
	}
	return out, nil
}

// Compress keeps clusters with at least minSize members, in order, and folds
// the members of every smaller cluster into one trailing misc cluster. The
// misc cluster is always present and may be empty.
func Compress(clusters []model.Cluster, minSize int) []model.Cluster {
	out := make([]model.Cluster, 0, len(clusters)+1)
	misc := make(model.Cluster, 0)
	for _, c := range clusters {
		if len(c) >= minSize {
			out = append(out, c.Clone())
			continue
		}
		misc = append(misc, c...)
	}
	return append(out, misc)
}

// Indexed pairs a cluster with its position in the clustering it came from.
type Indexed struct {
	Index   int
	Members model.Cluster
}

// FilterLarger keeps clusters with strictly more than minSize members.
func FilterLarger(clusters []model.Cluster, minSize int) []Indexed {
	out := make([]Indexed, 0, len(clusters))
	for i, c := range clusters {
		if len(c) > minSize {
			out = append(out, Indexed{Index: i, Members: c.Clone()})
		}
	}
	return out
}

// AgentIndex maps each agent to the index of the cluster holding it.
func AgentIndex(clusters []model.Cluster) (map[int]int, error) {
	index := make(map[int]int, model.CountAgents(clusters))
	for i, c := range clusters {
		for _, id := range c {
			if prev, dup := index[id]; dup {
				return nil, fmt.Errorf("agent %d appears in clusters %d and %d", id, prev, i)
			}
			index[id] = i
		}
	}
	return index, nil
}
