package stats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pwviz/internal/model"
)

func TestGroupStatsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "bars.csv")
	record := model.GroupStatsRecord{
		Labels: []string{"0", "3"},
		Groups: []int{0, 3},
		Series: []model.GroupStatsRow{
			{Label: "Size", Mean: []float64{0.5, 0.25}, StdErr: []float64{0.1, 0}, N: []int{4, 1}},
			{Label: "Complexity", Mean: []float64{0.75, 0.125}, StdErr: []float64{0.05, 0.02}, N: []int{4, 2}},
		},
	}
	if err := WriteGroupStatsCSV(path, record); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadGroupStatsCSV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	record.Source = path
	if diff := cmp.Diff(record, got); diff != "" {
		t.Fatalf("unexpected record (-want +got):\n%s", diff)
	}
}

func TestWriteGroupStatsCSVRejectsRaggedSeries(t *testing.T) {
	record := model.GroupStatsRecord{
		Labels: []string{"0", "1"},
		Series: []model.GroupStatsRow{{Label: "Size", Mean: []float64{1}, StdErr: []float64{0}, N: []int{1}}},
	}
	if err := WriteGroupStatsCSV(filepath.Join(t.TempDir(), "bars.csv"), record); err == nil {
		t.Fatal("expected ragged series error")
	}
}

func TestPlotPointsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avr.csv")
	series := map[string][]PlotPoint{
		"CC": {{Index: 100, Value: 0.5, StdErr: 0.25, N: 2}, {Index: 200, Value: 0.4, N: 1}},
		"SP": {{Index: 100, Value: 3, StdErr: 1, N: 2}},
	}
	if err := WritePlotPointsCSV(path, []string{"SP", "CC"}, series); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	want := "series,index,value,std_err,n\nSP,100,3,1,2\nCC,100,0.5,0.25,2\nCC,200,0.4,0,1\n"
	if string(data) != want {
		t.Fatalf("unexpected csv:\n%s", data)
	}
	got, err := ReadPlotPointsCSV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff(series, got); diff != "" {
		t.Fatalf("unexpected points (-want +got):\n%s", diff)
	}
}

func TestReadCSVRejectsWrongWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("series,index,value,std_err,n\nCC,1,2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadPlotPointsCSV(path); err == nil {
		t.Fatal("expected width error")
	}
	empty := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadPlotPointsCSV(empty); err == nil {
		t.Fatal("expected missing header error")
	}
}
