package lifespan

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const LogFileName = "BirthsDeaths.log"

const (
	EventBirth    = "BIRTH"
	EventCreation = "CREATION"
	EventDeath    = "DEATH"
)

// Event is one parsed line of a birth/death log.
type Event struct {
	Step   int
	Kind   string
	Agents []int
}

type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("birth/death log line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ScanEvents calls fn for every non-blank line of a birth/death log. Lines
// with fewer than two fields or non-integer numbers stop the scan.
func ScanEvents(r io.Reader, fn func(Event) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return &ParseError{Line: lineNo, Text: text, Err: fmt.Errorf("expected <timestep> <event> <agent...>")}
		}
		step, err := strconv.Atoi(fields[0])
		if err != nil {
			return &ParseError{Line: lineNo, Text: text, Err: fmt.Errorf("timestep: %w", err)}
		}
		agents := make([]int, 0, len(fields)-2)
		for _, raw := range fields[2:] {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return &ParseError{Line: lineNo, Text: text, Err: fmt.Errorf("agent id: %w", err)}
			}
			agents = append(agents, id)
		}
		if err := fn(Event{Step: step, Kind: fields[1], Agents: agents}); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func LogPath(runDir string) string {
	return filepath.Join(runDir, LogFileName)
}

func openLog(runDir string) (*os.File, error) {
	f, err := os.Open(LogPath(runDir))
	if err != nil {
		return nil, fmt.Errorf("open birth/death log: %w", err)
	}
	return f, nil
}
