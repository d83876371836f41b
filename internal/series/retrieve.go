package series

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"pwviz/internal/datalib"
	"pwviz/internal/lifespan"
	"pwviz/internal/metric"
)

// ErrMissingData marks a timestep directory without the requested file.
var ErrMissingData = errors.New("data file is missing")

const (
	// timeSourceType is the complexity table whose agents the time axis uses.
	timeSourceType = "P"
	hfTable        = "hf"
)

var (
	agentColumns = []string{"AgentNumber", "CritterNumber"}
	valueColumns = []string{"Mean", "Complexity"}
)

type RetrieveOptions struct {
	// Limit clamps Mean values from above when positive.
	Limit  float64
	Deaths lifespan.DeathIndex
}

// Retrieve loads one data type from a timestep directory. The "time" type
// is each agent's death step, taken from opts.Deaths for the agents of the
// processing complexity table; agents without a recorded death are dropped.
func Retrieve(dir, dataType string, opts RetrieveOptions) (Series, error) {
	if dataType == metric.TimeType {
		return retrieveTime(dir, opts)
	}

	path := filepath.Join(dir, metric.FileName(dataType))
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Series{}, fmt.Errorf("%s: %w", path, ErrMissingData)
		}
		return Series{}, err
	}
	table, err := datalib.ParseTable(path, dataType)
	if err != nil {
		return Series{}, err
	}

	values, column, err := table.FirstColumn(valueColumns...)
	if err != nil {
		return Series{}, fmt.Errorf("%s: %w", path, err)
	}
	if column == "Mean" && opts.Limit > 0 {
		for i := range values {
			if values[i] > opts.Limit {
				values[i] = opts.Limit
			}
		}
	}
	agents, err := table.IntColumn(agentColumns...)
	if err != nil {
		return Series{}, fmt.Errorf("%s: %w", path, err)
	}
	s := Series{Path: path, Values: values, Agents: agents}
	if err := s.validate(dataType); err != nil {
		return Series{}, err
	}
	return s, nil
}

func retrieveTime(dir string, opts RetrieveOptions) (Series, error) {
	if opts.Deaths == nil {
		return Series{}, errors.New("time data requires a death index")
	}
	source, err := Retrieve(dir, timeSourceType, RetrieveOptions{})
	if err != nil {
		return Series{}, err
	}
	out := Series{Path: source.Path}
	out.Values, out.Agents = opts.Deaths.Lookup(source.Agents)
	return out, nil
}

// Pair is a reconciled x/y sample for one timestep. HF is aligned with the
// pair's agents, or nil when no heuristic-fitness table covers them.
type Pair struct {
	X  Series
	Y  Series
	HF []float64
}

type PairOptions struct {
	LimitX float64
	LimitY float64
	Deaths lifespan.DeathIndex
	// UseHF looks for an "hf" table next to the y data, then the x data.
	UseHF bool
}

func RetrievePair(dir, xType, yType string, opts PairOptions) (Pair, error) {
	x, err := Retrieve(dir, xType, RetrieveOptions{Limit: opts.LimitX, Deaths: opts.Deaths})
	if err != nil {
		return Pair{}, err
	}
	y, err := Retrieve(dir, yType, RetrieveOptions{Limit: opts.LimitY, Deaths: opts.Deaths})
	if err != nil {
		return Pair{}, err
	}
	x, y, err = Reconcile(x, y)
	if err != nil {
		return Pair{}, fmt.Errorf("%s: %w", dir, err)
	}
	pair := Pair{X: x, Y: y}
	if opts.UseHF {
		pair.HF = loadHF(y.Agents, y.Path, x.Path)
	}
	return pair, nil
}

func loadHF(agents []int, paths ...string) []float64 {
	for _, path := range paths {
		if path == "" {
			continue
		}
		table, err := datalib.ParseTable(path, hfTable)
		if err != nil {
			continue
		}
		ids, err := table.IntColumn(agentColumns...)
		if err != nil {
			continue
		}
		values, err := table.Column("Mean")
		if err != nil {
			continue
		}
		byAgent := make(map[int]float64, len(ids))
		for i, id := range ids {
			byAgent[id] = values[i]
		}
		out := make([]float64, 0, len(agents))
		for _, id := range agents {
			v, ok := byAgent[id]
			if !ok {
				break
			}
			out = append(out, v)
		}
		if len(out) == len(agents) {
			return out
		}
	}
	return nil
}
