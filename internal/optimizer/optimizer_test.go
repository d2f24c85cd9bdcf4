package optimizer

import (
	"math"
	"strings"
	"testing"

	"github.com/marwanhelal/track-management-system-sub002/internal/config"
	"github.com/marwanhelal/track-management-system-sub002/internal/criticalpath"
	"github.com/marwanhelal/track-management-system-sub002/internal/depgraph"
	"github.com/marwanhelal/track-management-system-sub002/internal/phase"
)

func branchGraph(t *testing.T) (*depgraph.Graph, *criticalpath.Result) {
	t.Helper()
	// 1 -> 2 -> 4 is the long branch; phase 3 on the short branch carries
	// four weeks of float.
	phases := []*phase.Phase{
		{ID: 1, ProjectID: 1, Name: "Concept", Order: 1, Status: phase.StatusCompleted, PlannedWeeks: 1},
		{ID: 2, ProjectID: 1, Name: "Schematic Design", Order: 2, Status: phase.StatusInProgress, PlannedWeeks: 5},
		{ID: 3, ProjectID: 1, Name: "Site Survey", Order: 3, Status: phase.StatusInProgress, PlannedWeeks: 1},
		{ID: 4, ProjectID: 1, Name: "Construction Docs", Order: 4, Status: phase.StatusNotStarted, PlannedWeeks: 2},
	}
	edges := []depgraph.Edge{
		{ID: 1, ProjectID: 1, PredecessorID: 1, SuccessorID: 2, Weight: 1},
		{ID: 2, ProjectID: 1, PredecessorID: 1, SuccessorID: 3, Weight: 1},
		{ID: 3, ProjectID: 1, PredecessorID: 2, SuccessorID: 4, Weight: 1},
		{ID: 4, ProjectID: 1, PredecessorID: 3, SuccessorID: 4, Weight: 1},
	}
	g, err := depgraph.BuildGraph(1, phases, edges)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	res, err := criticalpath.Analyze(g, config.Default())
	if err != nil {
		t.Fatalf("cpm: %v", err)
	}
	return g, res
}

func TestAnalyze_ParallelizationAndSavings(t *testing.T) {
	g, cpm := branchGraph(t)

	res := Analyze(g, cpm, nil, config.Default())

	var found bool
	for _, r := range res.Recommendations {
		if strings.Contains(r, "Site Survey") && strings.Contains(r, "float") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a parallelization recommendation for the floating phase, got %v", res.Recommendations)
	}

	// Phase 3 floats 28 days; savings are 30% of summed float.
	want := math.Round(cpm.FloatByPhase[3]*0.3*10) / 10
	if res.PotentialTimeSavings != want {
		t.Errorf("expected savings %g, got %g", want, res.PotentialTimeSavings)
	}
}

func TestAnalyze_BottleneckRisk(t *testing.T) {
	g, cpm := branchGraph(t)

	res := Analyze(g, cpm, nil, config.Default())

	var found bool
	for _, r := range res.RiskFactors {
		if strings.Contains(r, "Schematic Design") && strings.Contains(r, "bottleneck") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the 5-week critical phase flagged as a bottleneck, got %v", res.RiskFactors)
	}
}

func TestAnalyze_ResourceConflicts(t *testing.T) {
	g, cpm := branchGraph(t)

	// sara splits two in_progress phases; jamal holds one; lena's phases are
	// completed or not started.
	assignments := Assignments{
		"sara":  {2, 3},
		"jamal": {2},
		"lena":  {1, 4},
	}
	res := Analyze(g, cpm, assignments, config.Default())

	var conflicts []string
	for _, r := range res.RiskFactors {
		if strings.Contains(r, "splitting time") {
			conflicts = append(conflicts, r)
		}
	}
	if len(conflicts) != 1 || !strings.Contains(conflicts[0], "sara") {
		t.Errorf("expected exactly one conflict for sara, got %v", conflicts)
	}
}

func TestAnalyze_SerializedFallback(t *testing.T) {
	// A pure chain has zero float everywhere.
	phases := []*phase.Phase{
		{ID: 1, ProjectID: 1, Name: "A", Order: 1, PlannedWeeks: 1},
		{ID: 2, ProjectID: 1, Name: "B", Order: 2, PlannedWeeks: 1},
	}
	edges := []depgraph.Edge{
		{ID: 1, ProjectID: 1, PredecessorID: 1, SuccessorID: 2, Weight: 1},
	}
	g, err := depgraph.BuildGraph(1, phases, edges)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	cpm, err := criticalpath.Analyze(g, config.Default())
	if err != nil {
		t.Fatalf("cpm: %v", err)
	}

	res := Analyze(g, cpm, nil, config.Default())
	if len(res.Recommendations) != 1 || !strings.Contains(res.Recommendations[0], "serialized") {
		t.Errorf("expected the serialized fallback recommendation, got %v", res.Recommendations)
	}
	if res.PotentialTimeSavings != 0 {
		t.Errorf("expected zero savings, got %g", res.PotentialTimeSavings)
	}
}
