package lifespan

import (
	"fmt"
	"io"

	"pwviz/internal/model"
)

// Lifespan is the half-open step interval an agent existed for. Death is -1
// until the agent dies or Close fills it.
type Lifespan struct {
	Birth int `json:"birth"`
	Death int `json:"death"`
}

type Lifespans map[int]Lifespan

// BuildLifespans reads BIRTH and CREATION events (the first ID is the new
// agent, any others are parents) and DEATH events.
func BuildLifespans(r io.Reader) (Lifespans, error) {
	out := make(Lifespans)
	err := ScanEvents(r, func(e Event) error {
		switch e.Kind {
		case EventBirth, EventCreation:
			if len(e.Agents) == 0 {
				return fmt.Errorf("step %d: %s without agent id", e.Step, e.Kind)
			}
			out[e.Agents[0]] = Lifespan{Birth: e.Step, Death: -1}
		case EventDeath:
			for _, id := range e.Agents {
				span, ok := out[id]
				if !ok {
					// Agents seeded before logging started.
					span = Lifespan{Birth: 0}
				}
				span.Death = e.Step
				out[id] = span
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func LoadLifespans(runDir string) (Lifespans, error) {
	f, err := openLog(runDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return BuildLifespans(f)
}

// Close returns a copy where agents still alive die at end.
func (l Lifespans) Close(end int) Lifespans {
	out := make(Lifespans, len(l))
	for id, span := range l {
		if span.Death < 0 {
			span.Death = end
		}
		out[id] = span
	}
	return out
}

// LastStep is the largest step any lifespan touches.
func (l Lifespans) LastStep() int {
	last := 0
	for _, span := range l {
		if span.Birth > last {
			last = span.Birth
		}
		if span.Death > last {
			last = span.Death
		}
	}
	return last
}

// Populations returns, for every step in [start, stop), the agents alive at
// that step in input order.
func Populations(agents []model.Agent, start, stop int) [][]model.Agent {
	if stop <= start {
		return nil
	}
	pops := make([][]model.Agent, stop-start)
	for _, a := range agents {
		from := max(a.Birth, start)
		to := min(a.Death, stop)
		for step := from; step < to; step++ {
			pops[step-start] = append(pops[step-start], a)
		}
	}
	return pops
}

// CountByGroup counts living agents per group at every step of [start, stop).
// Agents without a group are ignored.
func CountByGroup(spans Lifespans, group map[int]int, groups, start, stop int) [][]float64 {
	counts := make([][]float64, groups)
	for g := range counts {
		counts[g] = make([]float64, max(stop-start, 0))
	}
	for id, span := range spans {
		g, ok := group[id]
		if !ok || g < 0 || g >= groups {
			continue
		}
		from := max(span.Birth, start)
		to := min(span.Death, stop)
		for step := from; step < to; step++ {
			counts[g][step-start]++
		}
	}
	return counts
}
