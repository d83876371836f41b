//go:build sqlite

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pwviz/internal/model"
	"pwviz/internal/stats"
)

func TestStatsFromSQLiteStore(t *testing.T) {
	b := writeRun(t)
	clusters := b.Clusters(model.Cluster{1, 2}, model.Cluster{3, 4})
	db := []string{"--store", "sqlite", "--db-path", filepath.Join(t.TempDir(), "results.db")}

	args := append([]string{"barplot", clusters, "--run", b.Dir, "--min-size", "1", "-o", filepath.Join(t.TempDir(), "bars.png")}, db...)
	if _, err := runCLI(t, args...); err != nil {
		t.Fatalf("barplot: %v", err)
	}

	out, err := runCLI(t, append([]string{"stats"}, db...)...)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	key := strings.TrimSpace(out)
	if key != "barplot:"+clusters {
		t.Fatalf("unexpected keys: %q", out)
	}

	out, err = runCLI(t, append([]string{"stats", "--key", key}, db...)...)
	if err != nil {
		t.Fatalf("stats --key: %v", err)
	}
	if !strings.Contains(out, "series\t0\t1") || !strings.Contains(out, "Complexity\t") {
		t.Fatalf("unexpected record:\n%s", out)
	}

	csvPath := filepath.Join(t.TempDir(), "stats.csv")
	if _, err := runCLI(t, append([]string{"stats", "--key", key, "--csv", csvPath}, db...)...); err != nil {
		t.Fatalf("stats --csv: %v", err)
	}
	record, err := stats.ReadGroupStatsCSV(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(record.Series) != 5 {
		t.Fatalf("unexpected series: %+v", record.Series)
	}

	out, err = runCLI(t, append([]string{"deaths", b.Dir}, db...)...)
	if err != nil {
		t.Fatalf("deaths: %v", err)
	}
	if out != "1\t6\n2\t8\n3\t10\n" {
		t.Fatalf("unexpected deaths:\n%s", out)
	}
}

func TestStoredDeathIndexFollowsRunDir(t *testing.T) {
	root := t.TempDir()
	db := []string{"--store", "sqlite", "--db-path", filepath.Join(t.TempDir(), "results.db")}
	writeLog := func(dir, content string) {
		t.Helper()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "BirthsDeaths.log"), []byte(content), 0o644); err != nil {
			t.Fatalf("write log: %v", err)
		}
	}
	writeLog(filepath.Join(root, "a", "run"), "3 DEATH 1\n")
	writeLog(filepath.Join(root, "b", "run"), "5 DEATH 2\n")

	deathsFrom := func(wd string) string {
		t.Helper()
		t.Chdir(wd)
		out, err := runCLI(t, append([]string{"deaths", "run"}, db...)...)
		if err != nil {
			t.Fatalf("deaths in %s: %v", wd, err)
		}
		return out
	}
	if out := deathsFrom(filepath.Join(root, "a")); out != "1\t3\n" {
		t.Fatalf("unexpected deaths for a: %q", out)
	}
	if out := deathsFrom(filepath.Join(root, "b")); out != "2\t5\n" {
		t.Fatalf("unexpected deaths for b: %q", out)
	}

	logPath := filepath.Join(root, "a", "run", "BirthsDeaths.log")
	writeLog(filepath.Join(root, "a", "run"), "3 DEATH 1\n7 DEATH 4\n")
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(logPath, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if out := deathsFrom(filepath.Join(root, "a")); out != "1\t3\n4\t7\n" {
		t.Fatalf("stale deaths after log change: %q", out)
	}
}
