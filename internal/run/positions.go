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
)

type Position struct {
	Step int
	X    float64
	Y    float64
	Z    float64
}

// Track is one agent's position history ordered by step.
type Track []Position

func PositionPath(runDir string, id int) string {
	return filepath.Join(runDir, "motion", "position", fmt.Sprintf("position_%d.txt", id))
}

// LoadTrack reads "<step> <x> <y> <z>" lines. A missing file yields an
// empty track since position logging is optional per agent.
func LoadTrack(runDir string, id int) (Track, error) {
	path := PositionPath(runDir, id)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	track := make(Track, 0, 256)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) != 4 {
			return nil, fmt.Errorf("%s:%d: expected 4 fields, got %d", path, lineNo, len(fields))
		}
		step, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: step: %w", path, lineNo, err)
		}
		var coords [3]float64
		for i := range coords {
			coords[i], err = strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: coordinate %d: %w", path, lineNo, i, err)
			}
		}
		track = append(track, Position{Step: step, X: coords[0], Y: coords[1], Z: coords[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(track, func(i, j int) bool { return track[i].Step < track[j].Step })
	return track, nil
}

func LoadTracks(runDir string, ids []int) (map[int]Track, error) {
	out := make(map[int]Track, len(ids))
	for _, id := range ids {
		track, err := LoadTrack(runDir, id)
		if err != nil {
			return nil, err
		}
		if len(track) > 0 {
			out[id] = track
		}
	}
	return out, nil
}

// At returns the position recorded at step, if any.
func (t Track) At(step int) (Position, bool) {
	i := sort.Search(len(t), func(i int) bool { return t[i].Step >= step })
	if i < len(t) && t[i].Step == step {
		return t[i], true
	}
	return Position{}, false
}
