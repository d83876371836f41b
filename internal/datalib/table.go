package datalib

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrColumnNotFound = errors.New("column not found")

// Table is one named block of a .plt file. Every column holds one value per row.
type Table struct {
	Name     string
	ColNames []string
	ColTypes []string
	columns  map[string][]float64
	rows     int
}

func NewTable(name string, colNames []string) *Table {
	t := &Table{
		Name:     name,
		ColNames: append([]string(nil), colNames...),
		columns:  make(map[string][]float64, len(colNames)),
	}
	for _, c := range colNames {
		t.columns[c] = nil
	}
	return t
}

func (t *Table) Len() int {
	return t.rows
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// AppendRow adds one row; values are matched to ColNames by position.
func (t *Table) AppendRow(values []float64) error {
	if len(values) != len(t.ColNames) {
		return fmt.Errorf("table %s: row has %d values, want %d", t.Name, len(values), len(t.ColNames))
	}
	for i, name := range t.ColNames {
		t.columns[name] = append(t.columns[name], values[i])
	}
	t.rows++
	return nil
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	values, ok := t.columns[name]
	if !ok {
		return nil, fmt.Errorf("table %s: %w: %s", t.Name, ErrColumnNotFound, name)
	}
	return append([]float64(nil), values...), nil
}

// FirstColumn returns the first of names present in the table, along with
// the name that matched.
func (t *Table) FirstColumn(names ...string) ([]float64, string, error) {
	for _, name := range names {
		if values, ok := t.columns[name]; ok {
			return append([]float64(nil), values...), name, nil
		}
	}
	return nil, "", fmt.Errorf("table %s: %w: %s", t.Name, ErrColumnNotFound, strings.Join(names, "|"))
}

// IntColumn is Column with values truncated to ints, for ID and timestep columns.
func (t *Table) IntColumn(names ...string) ([]int, error) {
	values, _, err := t.FirstColumn(names...)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out, nil
}

// KeyedColumn maps keyCol values (as ints) to valueCol values.
func (t *Table) KeyedColumn(keyCol, valueCol string) (map[int]float64, error) {
	keys, err := t.IntColumn(keyCol)
	if err != nil {
		return nil, err
	}
	values, err := t.Column(valueCol)
	if err != nil {
		return nil, err
	}
	out := make(map[int]float64, len(keys))
	for i, key := range keys {
		out[key] = values[i]
	}
	return out, nil
}

func TableNames(tables map[string]*Table) []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
