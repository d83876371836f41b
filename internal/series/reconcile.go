package series

import (
	"errors"
	"fmt"
)

var (
	ErrLengthMismatch = errors.New("values and agents differ in length")
	ErrAgentMismatch  = errors.New("series reference different agents")
)

// Series is a metric column with the agent each value belongs to.
type Series struct {
	Path   string
	Values []float64
	Agents []int
}

func (s Series) Len() int {
	return len(s.Values)
}

func (s Series) Clone() Series {
	return Series{
		Path:   s.Path,
		Values: append([]float64(nil), s.Values...),
		Agents: append([]int(nil), s.Agents...),
	}
}

func (s Series) validate(name string) error {
	if len(s.Values) != len(s.Agents) {
		return fmt.Errorf("%s series: %w (%d values, %d agents)", name, ErrLengthMismatch, len(s.Values), len(s.Agents))
	}
	return nil
}

// Reconcile trims the longer series down to the agents of the shorter one,
// keeping the longer series' relative order. The shorter series comes back
// as an unchanged copy. The results must pair values agent by agent, so
// series of equal length need identical agent sequences, and a trimmed
// series must end up in the shorter series' order.
func Reconcile(x, y Series) (Series, Series, error) {
	if err := x.validate("x"); err != nil {
		return Series{}, Series{}, err
	}
	if err := y.validate("y"); err != nil {
		return Series{}, Series{}, err
	}

	outX, outY := x.Clone(), y.Clone()
	var err error
	switch {
	case x.Len() > y.Len():
		if outX, err = restrict(x, y.Agents); err != nil {
			return Series{}, Series{}, fmt.Errorf("x series: %w", err)
		}
	case y.Len() > x.Len():
		if outY, err = restrict(y, x.Agents); err != nil {
			return Series{}, Series{}, fmt.Errorf("y series: %w", err)
		}
	}
	if !sameSequence(outX.Agents, outY.Agents) {
		return Series{}, Series{}, fmt.Errorf("%w: agent order differs", ErrAgentMismatch)
	}
	return outX, outY, nil
}

// restrict keeps the entries of s whose agent is in keep. Every kept agent
// must be found exactly once.
func restrict(s Series, keep []int) (Series, error) {
	wanted := make(map[int]struct{}, len(keep))
	for _, id := range keep {
		wanted[id] = struct{}{}
	}
	out := Series{
		Path:   s.Path,
		Values: make([]float64, 0, len(keep)),
		Agents: make([]int, 0, len(keep)),
	}
	for i, id := range s.Agents {
		if _, ok := wanted[id]; !ok {
			continue
		}
		out.Values = append(out.Values, s.Values[i])
		out.Agents = append(out.Agents, id)
	}
	if len(out.Agents) != len(keep) {
		return Series{}, fmt.Errorf("%w: %d of %d agents matched", ErrAgentMismatch, len(out.Agents), len(keep))
	}
	return out, nil
}

func sameSequence(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
