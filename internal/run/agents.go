package run

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"pwviz/internal/datalib"
	"pwviz/internal/lifespan"
	"pwviz/internal/metric"
	"pwviz/internal/model"
)

var (
	agentColumns = []string{"AgentNumber", "CritterNumber"}
	valueColumns = []string{"Mean", "Complexity"}
)

func GenomePath(runDir string, id int) string {
	return filepath.Join(runDir, "genome", fmt.Sprintf("genome_%d.txt", id))
}

// LoadGenome reads one gene value (0..255) per line.
func LoadGenome(runDir string, id int) ([]byte, error) {
	path := GenomePath(runDir, id)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	genes := make([]byte, 0, 2048)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v > model.MaxGeneValue {
			return nil, fmt.Errorf("%s:%d: invalid gene value %q", path, lineNo, raw)
		}
		genes = append(genes, byte(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return genes, nil
}

// LoadComplexities merges the per-agent complexity tables of every timestep
// directory. Later timesteps win when an agent repeats.
func LoadComplexities(runDir, complexityType string) (map[int]float64, error) {
	dirs, err := TimestepDirs(runDir)
	if err != nil {
		return nil, err
	}
	out := make(map[int]float64)
	for _, dir := range dirs {
		path := filepath.Join(dir.Path, metric.FileName(complexityType))
		table, err := datalib.ParseTable(path, complexityType)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		ids, err := table.IntColumn(agentColumns...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		values, _, err := table.FirstColumn(valueColumns...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for i, id := range ids {
			out[id] = values[i]
		}
	}
	return out, nil
}

type LoadOptions struct {
	ComplexityType string
	SkipGenomes    bool
}

// LoadAgents assembles every agent of the birth/death log, sorted by ID.
// Agents alive at the end of the log die at the last logged step.
func LoadAgents(runDir string, opts LoadOptions) ([]model.Agent, error) {
	spans, err := lifespan.LoadLifespans(runDir)
	if err != nil {
		return nil, err
	}
	spans = spans.Close(spans.LastStep())

	var complexities map[int]float64
	if opts.ComplexityType != "" {
		complexities, err = LoadComplexities(runDir, opts.ComplexityType)
		if err != nil {
			return nil, err
		}
	}

	agents := make([]model.Agent, 0, len(spans))
	for id, span := range spans {
		a := model.Agent{ID: id, Birth: span.Birth, Death: span.Death}
		if !opts.SkipGenomes {
			genome, err := LoadGenome(runDir, id)
			if err != nil {
				return nil, fmt.Errorf("agent %d genome: %w", id, err)
			}
			a.Genome = genome
		}
		if c, ok := complexities[id]; ok {
			a.Complexity = c
			a.HasComplexity = true
		}
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
	return agents, nil
}

func IndexAgents(agents []model.Agent) map[int]model.Agent {
	out := make(map[int]model.Agent, len(agents))
	for _, a := range agents {
		out[a.ID] = a
	}
	return out
}

// Resolve maps every cluster member to its agent record.
func Resolve(clusters []model.Cluster, agents map[int]model.Agent) ([][]model.Agent, error) {
	out := make([][]model.Agent, len(clusters))
	for i, c := range clusters {
		group := make([]model.Agent, 0, len(c))
		for _, id := range c {
			a, ok := agents[id]
			if !ok {
				return nil, fmt.Errorf("cluster %d: agent %d not found in run", i, id)
			}
			group = append(group, a)
		}
		out[i] = group
	}
	return out, nil
}
