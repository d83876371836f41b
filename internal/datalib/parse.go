package datalib

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const Header = "%datalib version=1"

type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads every table of a .plt stream keyed by table name.
func Parse(r io.Reader) (map[string]*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	tables := make(map[string]*Table)
	var current *Table
	lineNo := 0
	fail := func(format string, args ...any) error {
		return &ParseError{Line: lineNo, Err: fmt.Errorf(format, args...)}
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		if strings.HasPrefix(line, "#") {
			directive, rest := splitDirective(line)
			switch directive {
			case "start":
				if current != nil {
					return nil, fail("table %s started before %s ended", rest, current.Name)
				}
				if rest == "" {
					return nil, fail("table name is required")
				}
				if _, exists := tables[rest]; exists {
					return nil, fail("duplicate table %s", rest)
				}
				current = &Table{Name: rest, columns: make(map[string][]float64)}
			case "colnames":
				if current == nil {
					return nil, fail("colnames outside table")
				}
				names := strings.Fields(rest)
				if len(names) == 0 {
					return nil, fail("table %s has no columns", current.Name)
				}
				current.ColNames = names
				for _, name := range names {
					current.columns[name] = nil
				}
			case "coltypes":
				if current == nil {
					return nil, fail("coltypes outside table")
				}
				current.ColTypes = strings.Fields(rest)
			case "end":
				if current == nil {
					return nil, fail("end outside table")
				}
				if len(current.ColNames) == 0 {
					return nil, fail("table %s has no colnames", current.Name)
				}
				tables[current.Name] = current
				current = nil
			}
			continue
		}

		if current == nil || len(current.ColNames) == 0 {
			return nil, fail("data row outside table")
		}
		fields := strings.Fields(line)
		values := make([]float64, len(fields))
		for i, field := range fields {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fail("table %s column %d: %w", current.Name, i, err)
			}
			values[i] = value
		}
		if err := current.AppendRow(values); err != nil {
			return nil, fail("%w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("table %s not terminated", current.Name)}
	}
	return tables, nil
}

func ParseFile(path string) (map[string]*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	tables, err := Parse(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return tables, nil
}

// ParseTable returns one table from a file.
func ParseTable(path, name string) (*Table, error) {
	tables, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	table, ok := tables[name]
	if !ok {
		return nil, fmt.Errorf("%s: table %s not found", path, name)
	}
	return table, nil
}

// ParseAll parses every path and keeps the requested tables. When required is
// set a file missing one of them is an error; otherwise the file contributes
// only the tables it has.
func ParseAll(paths []string, names []string, required bool) (map[string]map[string]*Table, error) {
	out := make(map[string]map[string]*Table, len(paths))
	for _, path := range paths {
		tables, err := ParseFile(path)
		if err != nil {
			return nil, err
		}
		kept := make(map[string]*Table, len(names))
		for _, name := range names {
			table, ok := tables[name]
			if !ok {
				if required {
					return nil, fmt.Errorf("%s: required table %s not found", path, name)
				}
				continue
			}
			kept[name] = table
		}
		out[path] = kept
	}
	return out, nil
}

// ParseLegacyMetrics reads the pre-datalib format of one float per line.
func ParseLegacyMetrics(r io.Reader) ([]float64, error) {
	scanner := bufio.NewScanner(r)
	values := make([]float64, 0, 256)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Err: err}
		}
		values = append(values, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func splitDirective(line string) (string, string) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "#"))
	directive, rest, _ := strings.Cut(body, " ")
	return strings.ToLower(directive), strings.TrimSpace(rest)
}
