package datalib

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const samplePLT = `%datalib version=1
# comment line
#start P
#colnames AgentNumber Mean
#coltypes int float
4 0.5
5 0.25

9 0.75
#end
#start hf
#colnames AgentNumber Mean
4 12
#end
`

func TestParseTables(t *testing.T) {
	tables, err := Parse(strings.NewReader(samplePLT))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"P", "hf"}, TableNames(tables)); diff != "" {
		t.Fatalf("unexpected tables (-want +got):\n%s", diff)
	}
	p := tables["P"]
	if p.Len() != 3 {
		t.Fatalf("unexpected row count: %d", p.Len())
	}
	ids, err := p.IntColumn("AgentNumber")
	if err != nil {
		t.Fatalf("agent column: %v", err)
	}
	if diff := cmp.Diff([]int{4, 5, 9}, ids); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"int", "float"}, p.ColTypes); diff != "" {
		t.Fatalf("unexpected coltypes (-want +got):\n%s", diff)
	}
}

func TestFirstColumnFallback(t *testing.T) {
	table := NewTable("P", []string{"CritterNumber", "Complexity"})
	if err := table.AppendRow([]float64{7, 0.3}); err != nil {
		t.Fatalf("append: %v", err)
	}

	values, name, err := table.FirstColumn("Mean", "Complexity")
	if err != nil {
		t.Fatalf("first column: %v", err)
	}
	if name != "Complexity" || len(values) != 1 || values[0] != 0.3 {
		t.Fatalf("unexpected fallback: %s %v", name, values)
	}
	if _, _, err := table.FirstColumn("Mean"); !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("expected column not found, got %v", err)
	}
}

func TestColumnReturnsCopy(t *testing.T) {
	table := NewTable("t", []string{"a"})
	_ = table.AppendRow([]float64{1})
	values, _ := table.Column("a")
	values[0] = 99
	again, _ := table.Column("a")
	if again[0] != 1 {
		t.Fatalf("column mutated through copy: %v", again)
	}
}

func TestParseErrorsNameLine(t *testing.T) {
	cases := map[string]string{
		"bad value":      "#start P\n#colnames a b\n1 x\n#end\n",
		"short row":      "#start P\n#colnames a b\n1\n#end\n",
		"unterminated":   "#start P\n#colnames a\n1\n",
		"row outside":    "1 2\n",
		"nested start":   "#start P\n#colnames a\n#start Q\n",
		"missing column": "#start P\n#end\n",
	}
	for name, input := range cases {
		_, err := Parse(strings.NewReader(input))
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: expected parse error, got %v", name, err)
		}
		if pe.Line <= 0 {
			t.Fatalf("%s: expected line number, got %+v", name, pe)
		}
	}
}

func TestParseFileAddsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.plt")
	if err := os.WriteFile(path, []byte("#start P\n#colnames a\nq\n#end\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := ParseFile(path)
	if err == nil || !strings.Contains(err.Error(), path+":3:") {
		t.Fatalf("expected path and line in error, got %v", err)
	}
}

func TestWriteThenParse(t *testing.T) {
	table := NewTable("Avr", []string{"Timestep", "Mean"})
	_ = table.AppendRow([]float64{100, 0.5})
	_ = table.AppendRow([]float64{200, 0.125})

	var buf bytes.Buffer
	if err := Write(&buf, table); err != nil {
		t.Fatalf("write: %v", err)
	}
	if first, _, _ := strings.Cut(buf.String(), "\n"); first != "%datalib version=1" {
		t.Fatalf("unexpected header line %q", first)
	}
	tables, err := Parse(&buf)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	keyed, err := tables["Avr"].KeyedColumn("Timestep", "Mean")
	if err != nil {
		t.Fatalf("keyed: %v", err)
	}
	if diff := cmp.Diff(map[int]float64{100: 0.5, 200: 0.125}, keyed); diff != "" {
		t.Fatalf("unexpected keyed column (-want +got):\n%s", diff)
	}
}

func TestParseAllRequired(t *testing.T) {
	dir := t.TempDir()
	withAvr := filepath.Join(dir, "a.plt")
	without := filepath.Join(dir, "b.plt")
	avr := NewTable("CC", []string{"Timestep", "Mean"})
	_ = avr.AppendRow([]float64{1, 2})
	if err := WriteFile(withAvr, avr); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := WriteFile(without, NewTable("SP", []string{"Timestep", "Mean"})); err != nil {
		t.Fatalf("write b: %v", err)
	}

	if _, err := ParseAll([]string{withAvr, without}, []string{"CC"}, true); err == nil {
		t.Fatal("expected missing required table error")
	}
	all, err := ParseAll([]string{withAvr, without}, []string{"CC"}, false)
	if err != nil {
		t.Fatalf("parse all: %v", err)
	}
	if _, ok := all[withAvr]["CC"]; !ok {
		t.Fatalf("expected CC table for %s", withAvr)
	}
	if len(all[without]) != 0 {
		t.Fatalf("expected no tables for %s: %v", without, all[without])
	}
}

func TestParseLegacyMetrics(t *testing.T) {
	values, err := ParseLegacyMetrics(strings.NewReader("0.1\n\n0.2\n"))
	if err != nil {
		t.Fatalf("parse legacy: %v", err)
	}
	if diff := cmp.Diff([]float64{0.1, 0.2}, values); diff != "" {
		t.Fatalf("unexpected values (-want +got):\n%s", diff)
	}
	if _, err := ParseLegacyMetrics(strings.NewReader("0.1\nnope\n")); err == nil {
		t.Fatal("expected legacy parse error")
	}
}
