package main

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pwviz/internal/datalib"
	"pwviz/internal/metric"
	"pwviz/internal/model"
	"pwviz/internal/movie"
	"pwviz/internal/runtest"
	"pwviz/internal/stats"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PWVIZ_RUN_DIR", "PWVIZ_STORE", "PWVIZ_DB_PATH", "PWVIZ_LOG_LEVEL", "PWVIZ_LOG_FORMAT", "PWVIZ_ENCODER", "PWVIZ_WORKERS"} {
		t.Setenv(key, "")
	}
}

// runCLI executes one command with an isolated config and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)
	full := append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "--log-level", "error"}, args...)
	var out, errOut bytes.Buffer
	err := execute(context.Background(), full, &out, &errOut)
	return out.String(), err
}

func genes(seed byte) []byte {
	out := make([]byte, 12)
	for i := range out {
		out[i] = seed + byte(i*10)
	}
	return out
}

// writeRun builds a four agent run: agents 1-3 are seeded, 4 is born at
// step 4 and outlives the log.
func writeRun(t *testing.T) *runtest.Builder {
	t.Helper()
	b := runtest.New(t, "run_passive_0")
	b.Log(
		"0 CREATION 1",
		"0 CREATION 2",
		"0 CREATION 3",
		"4 BIRTH 4 1 2",
		"6 DEATH 1",
		"8 DEATH 2",
		"10 DEATH 3",
	)
	for id := 1; id <= 4; id++ {
		b.Genome(id, genes(byte(id))...)
	}
	b.Table(5, "complexity_P.plt", "P", "Complexity", []int{1, 2, 3}, []float64{0.1, 0.2, 0.3})
	b.Table(9, "complexity_P.plt", "P", "Mean", []int{2, 3, 4}, []float64{0.25, 0.35, 0.4})
	b.TimestepDir(10)
	b.Track(1, "1 0 0 0", "4 1 0 1")
	b.Track(2, "1 2 0 2", "4 3 0 3")
	b.Track(3, "1 4 0 4")
	b.Track(4, "4 5 0 5")
	return b
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected %s: %v", path, err)
	}
	if info.Size() == 0 {
		t.Fatalf("%s is empty", path)
	}
}

func TestBarplot(t *testing.T) {
	b := writeRun(t)
	clusters := b.Clusters(model.Cluster{1, 2}, model.Cluster{3, 4}, model.Cluster{5})
	output := filepath.Join(t.TempDir(), "bars.png")
	csvPath := filepath.Join(t.TempDir(), "bars.csv")

	out, err := runCLI(t, "barplot", clusters, "--run", b.Dir, "--min-size", "1", "--population", "-o", output, "--csv", csvPath)
	if err != nil {
		t.Fatalf("barplot: %v", err)
	}
	if strings.TrimSpace(out) != output {
		t.Fatalf("unexpected output: %q", out)
	}
	assertFile(t, output)

	record, err := stats.ReadGroupStatsCSV(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if diff := cmp.Diff([]string{"0", "1"}, record.Labels); diff != "" {
		t.Fatalf("unexpected labels (-want +got):\n%s", diff)
	}
	// four genes, complexity and population
	if len(record.Series) != 6 {
		t.Fatalf("unexpected series: %+v", record.Series)
	}
	size := record.Series[1]
	if size.N[0] != 2 || math.Abs(size.Mean[0]-float64(1+50+2+50)/2/255) > 1e-12 {
		t.Fatalf("unexpected size stats: %+v", size)
	}
	population := record.Series[5]
	if population.Mean[0] != 0.4 || population.Mean[1] != 0.4 {
		t.Fatalf("unexpected population shares: %+v", population)
	}
}

func TestBarplotNoLargeClusters(t *testing.T) {
	b := writeRun(t)
	clusters := b.Clusters(model.Cluster{1, 2}, model.Cluster{3, 4})
	_, err := runCLI(t, "barplot", clusters, "--run", b.Dir, "-o", filepath.Join(t.TempDir(), "bars.png"))
	if err == nil || !strings.Contains(err.Error(), "more than 700") {
		t.Fatalf("expected min-size error, got %v", err)
	}
	if exitCode(err) != 1 {
		t.Fatalf("unexpected exit code %d", exitCode(err))
	}
}

func TestScatterTimeVsComplexity(t *testing.T) {
	b := writeRun(t)
	output := filepath.Join(t.TempDir(), "scatter.svg")
	out, err := runCLI(t, "scatter", b.Dir, "-o", output)
	if err != nil {
		t.Fatalf("scatter: %v", err)
	}
	if strings.TrimSpace(out) != output {
		t.Fatalf("unexpected output: %q", out)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Fatal("expected svg document")
	}
}

func TestScatterRejectsTwoGroups(t *testing.T) {
	b := writeRun(t)
	_, err := runCLI(t, "scatter", b.Dir, "-d", "-b")
	if exitCode(err) != 2 {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestGenome(t *testing.T) {
	b := writeRun(t)
	output := filepath.Join(t.TempDir(), "genome.png")
	if _, err := runCLI(t, "genome", "--run", b.Dir, "--stride", "2", "-o", output); err != nil {
		t.Fatalf("genome: %v", err)
	}
	assertFile(t, output)
}

func TestPopulationFraction(t *testing.T) {
	b := writeRun(t)
	clusters := b.Clusters(model.Cluster{1, 2}, model.Cluster{3}, model.Cluster{4})
	output := filepath.Join(t.TempDir(), "population.png")
	if _, err := runCLI(t, "population", clusters, "--run", b.Dir, "--min-size", "2", "--fraction", "-o", output); err != nil {
		t.Fatalf("population: %v", err)
	}
	assertFile(t, output)
}

func TestMovieFramesOnly(t *testing.T) {
	b := writeRun(t)
	clusters := b.Clusters(model.Cluster{1, 2}, model.Cluster{3, 4})
	anim := filepath.Join(t.TempDir(), "anim")

	out, err := runCLI(t, "movie", clusters, "--run", b.Dir, "--anim", anim,
		"--start", "1", "--stop", "10", "--step", "3", "--workers", "2", "--no-encode")
	if err != nil {
		t.Fatalf("movie: %v", err)
	}
	frames := filepath.Join(anim, "frames")
	if strings.TrimSpace(out) != frames {
		t.Fatalf("unexpected output: %q", out)
	}
	for _, step := range []int{1, 4, 7} {
		assertFile(t, movie.FramePath(frames, step))
	}
	if _, err := os.Stat(filepath.Join(anim, "output.avi")); !os.IsNotExist(err) {
		t.Fatalf("expected no movie output, got %v", err)
	}
}

func writeAvr(t *testing.T, b *runtest.Builder, cc, sp []float64) {
	t.Helper()
	var tables []*datalib.Table
	for _, m := range []struct {
		name   string
		values []float64
	}{{"CC", cc}, {"SP", sp}} {
		table := datalib.NewTable(m.name, []string{"Timestep", "mean"})
		for i, v := range m.values {
			if err := table.AppendRow([]float64{float64((i + 1) * 100), v}); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
		tables = append(tables, table)
	}
	if err := datalib.WriteFile(metric.AvrPath(b.Dir, "Recent"), tables...); err != nil {
		t.Fatalf("write avr: %v", err)
	}
}

func TestAvrAcrossRuns(t *testing.T) {
	first := runtest.New(t, "run_a")
	second := runtest.New(t, "run_b")
	writeAvr(t, first, []float64{0.25, 0.4}, []float64{2, 3})
	writeAvr(t, second, []float64{0.75}, []float64{4, 5})
	output := filepath.Join(t.TempDir(), "avr.png")

	csvPath := filepath.Join(t.TempDir(), "avr.csv")

	out, err := runCLI(t, "avr", metric.AvrPath(first.Dir, "Recent"), second.Dir, "-o", output, "--csv", csvPath)
	if err != nil {
		t.Fatalf("avr: %v", err)
	}
	points, err := stats.ReadPlotPointsCSV(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(points["CC"]) != 2 || len(points["SP"]) != 2 || points["SP"][0].Value != 3 {
		t.Fatalf("unexpected exported points: %+v", points)
	}
	for _, want := range []string{"CC\t100\t0.5\t", "CC\t200\t0.4\t0\t1", "SP\t200\t4\t"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	assertFile(t, output)
}

func TestAvrMissingTable(t *testing.T) {
	b := runtest.New(t, "run")
	writeAvr(t, b, []float64{0.1}, []float64{1})
	_, err := runCLI(t, "avr", b.Dir, "--metric", "CC,CC_a_bu", "-o", filepath.Join(t.TempDir(), "avr.png"))
	if err == nil || !strings.Contains(err.Error(), "CC_a_bu") {
		t.Fatalf("expected missing table error, got %v", err)
	}
}

func TestAvrLegacyFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(first, []byte("1\n2\n3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(second, []byte("3\n4\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := runCLI(t, "avr", first, second, "--legacy-interval", "500", "--metric", "CC", "-o", filepath.Join(dir, "avr.svg"))
	if err != nil {
		t.Fatalf("avr legacy: %v", err)
	}
	for _, want := range []string{"CC\t500\t2\t", "CC\t1000\t3\t", "CC\t1500\t3\t0\t1\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestHistAcrossTimesteps(t *testing.T) {
	b := writeRun(t)
	paths := []string{
		filepath.Join(b.Dir, "brain", "Recent", "5", "complexity_P.plt"),
		filepath.Join(b.Dir, "brain", "Recent", "9", "complexity_P.plt"),
	}
	output := filepath.Join(t.TempDir(), "hist.png")
	out, err := runCLI(t, "hist", paths[0], paths[1], "--bins", "3", "-o", output)
	if err != nil {
		t.Fatalf("hist: %v", err)
	}
	assertFile(t, output)

	counts := map[string]int{}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 3 bins per file:\n%s", out)
	}
	for _, line := range lines {
		fields := strings.Split(line, "\t")
		n, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			t.Fatalf("bad count in %q: %v", line, err)
		}
		counts[fields[0]] += n
	}
	if counts[paths[0]] != 3 || counts[paths[1]] != 3 {
		t.Fatalf("unexpected totals: %v", counts)
	}
}

func TestHistNeedsType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.plt")
	if err := os.WriteFile(path, []byte("#start X\n#colnames Mean\n1\n#end\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := runCLI(t, "hist", path, "-o", filepath.Join(t.TempDir(), "hist.png"))
	if exitCode(err) != 2 {
		t.Fatalf("expected usage error, got %v", err)
	}
	if _, err := runCLI(t, "hist", path, "--type", "X", "-o", filepath.Join(t.TempDir(), "hist.png")); err != nil {
		t.Fatalf("hist with type: %v", err)
	}
}

func TestDeaths(t *testing.T) {
	b := writeRun(t)
	out, err := runCLI(t, "deaths", b.Dir)
	if err != nil {
		t.Fatalf("deaths: %v", err)
	}
	if out != "1\t6\n2\t8\n3\t10\n" {
		t.Fatalf("unexpected deaths:\n%s", out)
	}
}

func TestStatsEmptyStore(t *testing.T) {
	out, err := runCLI(t, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if strings.TrimSpace(out) != "no stored statistics" {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := runCLI(t, "stats", "--key", "barplot:/nowhere"); err == nil {
		t.Fatal("expected missing key error")
	}
}

func TestUsageErrors(t *testing.T) {
	cases := map[string][]string{
		"unknown command": {"nope"},
		"missing args":    {"barplot"},
		"bad flag":        {"deaths", "--bogus"},
		"no command":      {},
		"bad format":      {"avr", "x", "-o", "avr.gif"},
		"bad level":       {"deaths", "--log-level", "loud"},
		"bad avr path":    {"avr", "AvrMetric.plt"},
		"zero bins":       {"hist", "x.plt", "--bins", "0"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := runCLI(t, args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := exitCode(err); code != 2 {
				t.Fatalf("expected exit code 2, got %d (%v)", code, err)
			}
		})
	}
}

func TestRunMainExitCodes(t *testing.T) {
	clearEnv(t)
	err := runMain(context.Background(), []string{"nope"})
	if code := exitCode(err); code != 2 {
		t.Fatalf("expected exit code 2, got %d (%v)", code, err)
	}
	err = runMain(context.Background(), []string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "--log-level", "error", "deaths", t.TempDir()})
	if code := exitCode(err); code != 1 {
		t.Fatalf("expected exit code 1, got %d (%v)", code, err)
	}
}
