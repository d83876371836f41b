// Package run reads the on-disk layout of one Polyworld run directory.
package run

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const DefaultDir = "../run/"

const (
	GroupDriven  = "driven"
	GroupPassive = "passive"
	GroupBoth    = "both"
)

type TimestepDir struct {
	Step int
	Path string
}

func RecentDir(runDir string) string {
	return filepath.Join(runDir, "brain", "Recent")
}

// TimestepDirs lists brain/Recent/<step> directories in numeric order. Step
// 0 holds the seed population and is skipped, as are non-numeric names.
func TimestepDirs(runDir string) ([]TimestepDir, error) {
	if _, err := os.Stat(runDir); err != nil {
		return nil, fmt.Errorf("cannot access run directory: %w", err)
	}
	entries, err := os.ReadDir(RecentDir(runDir))
	if err != nil {
		return nil, fmt.Errorf("read recent dir: %w", err)
	}
	dirs := make([]TimestepDir, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		step, err := strconv.Atoi(entry.Name())
		if err != nil || step <= 0 {
			continue
		}
		dirs = append(dirs, TimestepDir{Step: step, Path: filepath.Join(RecentDir(runDir), entry.Name())})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Step < dirs[j].Step })
	return dirs, nil
}

func MaxStep(dirs []TimestepDir) int {
	last := 0
	for _, d := range dirs {
		if d.Step > last {
			last = d.Step
		}
	}
	return last
}

// SiblingDir swaps the driven/passive marker in the base name of runDir to
// reach the paired run of the other group.
func SiblingDir(runDir, group string) (string, error) {
	clean := filepath.Clean(runDir)
	dir, base := filepath.Split(clean)
	var from string
	switch group {
	case GroupDriven:
		from = GroupPassive
	case GroupPassive:
		from = GroupDriven
	default:
		return "", fmt.Errorf("unknown group type: %s", group)
	}
	if strings.Contains(base, group) {
		return clean, nil
	}
	idx := strings.LastIndex(base, from)
	if idx < 0 {
		return "", fmt.Errorf("%s names neither %s nor %s", runDir, GroupDriven, GroupPassive)
	}
	return filepath.Join(dir, base[:idx]+group+base[idx+len(from):]), nil
}
