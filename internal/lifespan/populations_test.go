package lifespan

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pwviz/internal/model"
)

func TestBuildLifespans(t *testing.T) {
	log := "0 CREATION 1\n0 CREATION 2\n5 BIRTH 3 1 2\n7 DEATH 1\n9 DEATH 3 4\n"
	spans, err := BuildLifespans(strings.NewReader(log))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := Lifespans{
		1: {Birth: 0, Death: 7},
		2: {Birth: 0, Death: -1},
		3: {Birth: 5, Death: 9},
		4: {Birth: 0, Death: 9},
	}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Fatalf("unexpected lifespans (-want +got):\n%s", diff)
	}

	closed := spans.Close(12)
	if closed[2].Death != 12 || spans[2].Death != -1 {
		t.Fatalf("close should fill a copy: %v %v", closed[2], spans[2])
	}
	if got := closed.LastStep(); got != 12 {
		t.Fatalf("unexpected last step: %d", got)
	}
}

func TestBuildLifespansBirthWithoutAgent(t *testing.T) {
	if _, err := BuildLifespans(strings.NewReader("3 BIRTH\n")); err == nil {
		t.Fatal("expected error for birth without agent")
	}
}

func TestPopulations(t *testing.T) {
	agents := []model.Agent{
		{ID: 1, Birth: 0, Death: 2},
		{ID: 2, Birth: 1, Death: 4},
		{ID: 3, Birth: 3, Death: 5},
	}
	pops := Populations(agents, 0, 5)
	got := make([][]int, len(pops))
	for i, pop := range pops {
		for _, a := range pop {
			got[i] = append(got[i], a.ID)
		}
	}
	want := [][]int{{1}, {1, 2}, {2}, {2, 3}, {3}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected populations (-want +got):\n%s", diff)
	}
	if Populations(agents, 3, 3) != nil {
		t.Fatal("expected nil populations for empty window")
	}
}

func TestCountByGroup(t *testing.T) {
	spans := Lifespans{
		1: {Birth: 0, Death: 2},
		2: {Birth: 1, Death: 3},
		3: {Birth: 0, Death: 3},
		4: {Birth: 0, Death: 3},
	}
	group := map[int]int{1: 0, 2: 0, 3: 1}
	counts := CountByGroup(spans, group, 2, 0, 3)
	want := [][]float64{{1, 2, 1}, {1, 1, 1}}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Fatalf("unexpected counts (-want +got):\n%s", diff)
	}
}
