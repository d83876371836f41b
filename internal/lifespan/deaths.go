package lifespan

import (
	"io"
	"sort"
)

// DeathIndex maps agent ID to the step the agent died.
type DeathIndex map[int]int

// BuildDeathIndex collects DEATH events. Every other event kind is still
// validated but contributes nothing.
func BuildDeathIndex(r io.Reader) (DeathIndex, error) {
	index := make(DeathIndex)
	err := ScanEvents(r, func(e Event) error {
		if e.Kind != EventDeath {
			return nil
		}
		for _, id := range e.Agents {
			index[id] = e.Step
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

func LoadDeathIndex(runDir string) (DeathIndex, error) {
	f, err := openLog(runDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return BuildDeathIndex(f)
}

// Lookup returns the death step of each agent with a recorded death, in the
// order given, and the agents those steps belong to.
func (d DeathIndex) Lookup(agents []int) (steps []float64, found []int) {
	steps = make([]float64, 0, len(agents))
	found = make([]int, 0, len(agents))
	for _, id := range agents {
		step, ok := d[id]
		if !ok {
			continue
		}
		steps = append(steps, float64(step))
		found = append(found, id)
	}
	return steps, found
}

func (d DeathIndex) SortedAgents() []int {
	ids := make([]int, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
