package cascade

import (
	"math"
	"testing"

	"github.com/marwanhelal/track-management-system-sub002/internal/config"
	"github.com/marwanhelal/track-management-system-sub002/internal/depgraph"
	"github.com/marwanhelal/track-management-system-sub002/internal/phase"
)

func chainGraph(t *testing.T, n int, weight float64) *depgraph.Graph {
	t.Helper()
	phases := make([]*phase.Phase, n)
	for i := range phases {
		phases[i] = &phase.Phase{
			ID: int64(i + 1), ProjectID: 1,
			Name: string(rune('A' + i)), Order: i + 1, PlannedWeeks: 1,
		}
	}
	var edges []depgraph.Edge
	for i := 1; i < n; i++ {
		edges = append(edges, depgraph.Edge{
			ID: int64(i), ProjectID: 1,
			PredecessorID: int64(i), SuccessorID: int64(i + 1),
			Type: depgraph.FinishToStart, Weight: weight,
		})
	}
	g, err := depgraph.BuildGraph(1, phases, edges)
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	return g
}

func TestAnalyze_DecayedChain(t *testing.T) {
	// Delay phase 1 by 5 days on a chain of 3 dependents with weight 1.0.
	g := chainGraph(t, 4, 1.0)

	effects, err := Analyze(g, 1, 5, ImpactDelay, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(effects) != 3 {
		t.Fatalf("expected 3 effects, got %d", len(effects))
	}

	wantMagnitude := []float64{5.0, 4.0, 3.2}
	wantProbability := []int{90, 75, 60}
	for i, e := range effects {
		if e.Depth != i+1 {
			t.Errorf("effect %d: expected depth %d, got %d", i, i+1, e.Depth)
		}
		if math.Abs(e.Magnitude-wantMagnitude[i]) > 1e-9 {
			t.Errorf("depth %d: expected magnitude %g, got %g", i+1, wantMagnitude[i], e.Magnitude)
		}
		if e.Probability != wantProbability[i] {
			t.Errorf("depth %d: expected probability %d, got %d", i+1, wantProbability[i], e.Probability)
		}
		// 5.0, 4.0, 3.2 all exceed the 3-day bar within depth 3.
		if e.Urgency != UrgencyWithin24h {
			t.Errorf("depth %d: expected within_24h, got %s", i+1, e.Urgency)
		}
	}
}

func TestAnalyze_MonotonicDecay(t *testing.T) {
	g := chainGraph(t, 6, 1.0)

	effects, err := Analyze(g, 1, 12, ImpactDelay, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(effects); i++ {
		if effects[i].Magnitude > effects[i-1].Magnitude {
			t.Errorf("magnitude grew from depth %d to %d: %g -> %g",
				effects[i-1].Depth, effects[i].Depth, effects[i-1].Magnitude, effects[i].Magnitude)
		}
	}
}

func TestAnalyze_DepthCap(t *testing.T) {
	// Eight phases give seven dependents; the cap keeps five.
	g := chainGraph(t, 8, 1.0)

	effects, err := Analyze(g, 1, 10, ImpactDelay, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(effects) != 5 {
		t.Fatalf("expected 5 effects at the depth cap, got %d", len(effects))
	}
	for _, e := range effects {
		if e.Depth > 5 {
			t.Errorf("phase %d reported beyond depth cap: depth %d", e.PhaseID, e.Depth)
		}
	}
}

func TestAnalyze_UrgencyThresholds(t *testing.T) {
	tests := []struct {
		name  string
		delay float64
		depth int
		want  Urgency
	}{
		{"large direct delay", 10, 1, UrgencyImmediate},
		{"moderate delay", 5, 1, UrgencyWithin24h},
		{"small delay", 2, 1, UrgencyWithinWeek},
		{"negligible delay", 0.5, 1, UrgencyMonitor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := chainGraph(t, 2, 1.0)
			effects, err := Analyze(g, 1, tt.delay, ImpactDelay, config.Default())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(effects) != 1 {
				t.Fatalf("expected 1 effect, got %d", len(effects))
			}
			if effects[0].Urgency != tt.want {
				t.Errorf("delay %g: expected %s, got %s", tt.delay, tt.want, effects[0].Urgency)
			}
		})
	}
}

func TestAnalyze_DeepDelayDowngradesUrgency(t *testing.T) {
	// A 10-day delay is immediate at depth 1 but only within_24h at depth 3,
	// where the magnitude is still above 3 (10 * 0.64 = 6.4).
	g := chainGraph(t, 4, 1.0)
	effects, err := Analyze(g, 1, 10, ImpactDelay, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if effects[0].Urgency != UrgencyImmediate {
		t.Errorf("depth 1: expected immediate, got %s", effects[0].Urgency)
	}
	if effects[2].Urgency != UrgencyWithin24h {
		t.Errorf("depth 3: expected within_24h, got %s", effects[2].Urgency)
	}
}

func TestAnalyze_WeightScalesMagnitude(t *testing.T) {
	g := chainGraph(t, 2, 2.0)
	effects, err := Analyze(g, 1, 5, ImpactDelay, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(effects[0].Magnitude-10.0) > 1e-9 {
		t.Errorf("expected weight to double magnitude to 10, got %g", effects[0].Magnitude)
	}
}

func TestAnalyze_DiamondReportsOnce(t *testing.T) {
	// 1 -> 2, 1 -> 3, 2 -> 4, 3 -> 4: phase 4 is reachable twice but is
	// reported once at its first-seen depth.
	phases := []*phase.Phase{
		{ID: 1, ProjectID: 1, Name: "A", Order: 1},
		{ID: 2, ProjectID: 1, Name: "B", Order: 2},
		{ID: 3, ProjectID: 1, Name: "C", Order: 3},
		{ID: 4, ProjectID: 1, Name: "D", Order: 4},
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

	effects, err := Analyze(g, 1, 5, ImpactDelay, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(effects) != 3 {
		t.Fatalf("expected 3 effects (4 reported once), got %d", len(effects))
	}
	count := 0
	for _, e := range effects {
		if e.PhaseID == 4 {
			count++
			if e.Depth != 2 {
				t.Errorf("phase 4: expected first-seen depth 2, got %d", e.Depth)
			}
		}
	}
	if count != 1 {
		t.Errorf("phase 4 reported %d times, want 1", count)
	}
}

func TestAnalyze_InvalidInput(t *testing.T) {
	g := chainGraph(t, 3, 1.0)

	if _, err := Analyze(g, 99, 5, ImpactDelay, config.Default()); err == nil {
		t.Error("expected error for unknown phase")
	}
	if _, err := Analyze(g, 1, 5, "meteor", config.Default()); err == nil {
		t.Error("expected error for unknown impact type")
	}
	if _, err := Analyze(g, 1, -1, ImpactDelay, config.Default()); err == nil {
		t.Error("expected error for negative delay")
	}
}

func TestAnalyze_NoSuccessors(t *testing.T) {
	g := chainGraph(t, 3, 1.0)
	effects, err := Analyze(g, 3, 5, ImpactDelay, config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(effects) != 0 {
		t.Errorf("terminal phase should cascade nowhere, got %d effects", len(effects))
	}
}
