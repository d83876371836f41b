package series

import (
	"errors"
	"log/slog"

	"pwviz/internal/run"
)

// StepPair is the reconciled sample of one timestep directory.
type StepPair struct {
	Step int
	Pair Pair
}

// Collect walks every timestep directory of a run. Timesteps missing either
// data file are logged and skipped; any other failure stops the walk.
func Collect(runDir, xType, yType string, opts PairOptions, logger *slog.Logger) ([]StepPair, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dirs, err := run.TimestepDirs(runDir)
	if err != nil {
		return nil, 0, err
	}
	out := make([]StepPair, 0, len(dirs))
	for _, dir := range dirs {
		pair, err := RetrievePair(dir.Path, xType, yType, opts)
		if err != nil {
			if errors.Is(err, ErrMissingData) {
				logger.Warn("skipping timestep", "step", dir.Step, "error", err)
				continue
			}
			return nil, 0, err
		}
		if pair.X.Len() == 0 {
			continue
		}
		out = append(out, StepPair{Step: dir.Step, Pair: pair})
	}
	return out, run.MaxStep(dirs), nil
}
