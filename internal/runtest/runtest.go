// Package runtest writes synthetic run directories for tests.
package runtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"pwviz/internal/datalib"
	"pwviz/internal/model"
)

type Builder struct {
	t   testing.TB
	Dir string
}

// New creates an empty run directory named name under a temp dir.
func New(t testing.TB, name string) *Builder {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir run: %v", err)
	}
	return &Builder{t: t, Dir: dir}
}

func (b *Builder) WriteFile(rel, content string) {
	b.t.Helper()
	path := filepath.Join(b.Dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		b.t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		b.t.Fatalf("write %s: %v", rel, err)
	}
}

func (b *Builder) Log(lines ...string) {
	b.WriteFile("BirthsDeaths.log", strings.Join(lines, "\n")+"\n")
}

func (b *Builder) Genome(id int, genes ...byte) {
	var sb strings.Builder
	for _, g := range genes {
		sb.WriteString(strconv.Itoa(int(g)))
		sb.WriteByte('\n')
	}
	b.WriteFile(filepath.Join("genome", fmt.Sprintf("genome_%d.txt", id)), sb.String())
}

// Table writes an AgentNumber/valueCol table named name into the .plt file
// of one timestep directory.
func (b *Builder) Table(step int, file, name, valueCol string, agents []int, values []float64) {
	b.t.Helper()
	table := datalib.NewTable(name, []string{"AgentNumber", valueCol})
	for i, id := range agents {
		if err := table.AppendRow([]float64{float64(id), values[i]}); err != nil {
			b.t.Fatalf("append row: %v", err)
		}
	}
	b.Tables(step, file, table)
}

func (b *Builder) Tables(step int, file string, tables ...*datalib.Table) {
	b.t.Helper()
	path := filepath.Join(b.Dir, "brain", "Recent", strconv.Itoa(step), file)
	if err := datalib.WriteFile(path, tables...); err != nil {
		b.t.Fatalf("write table %s: %v", path, err)
	}
}

func (b *Builder) TimestepDir(step int) {
	b.t.Helper()
	if err := os.MkdirAll(filepath.Join(b.Dir, "brain", "Recent", strconv.Itoa(step)), 0o755); err != nil {
		b.t.Fatalf("mkdir timestep: %v", err)
	}
}

func (b *Builder) Track(id int, lines ...string) {
	b.WriteFile(filepath.Join("motion", "position", fmt.Sprintf("position_%d.txt", id)), strings.Join(lines, "\n")+"\n")
}

// Clusters writes a cluster file next to the run and returns its path.
func (b *Builder) Clusters(clusters ...model.Cluster) string {
	b.t.Helper()
	var sb strings.Builder
	for _, c := range clusters {
		ids := make([]string, len(c))
		for i, id := range c {
			ids[i] = strconv.Itoa(id)
		}
		sb.WriteString(strings.Join(ids, " "))
		sb.WriteByte('\n')
	}
	path := filepath.Join(filepath.Dir(b.Dir), filepath.Base(b.Dir)+".clusters")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		b.t.Fatalf("write clusters: %v", err)
	}
	return path
}
