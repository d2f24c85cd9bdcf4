// Package optimizer derives advisory schedule recommendations from critical
// path analysis and current resource usage. Output is text only; nothing here
// mutates phase state.
package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/marwanhelal/track-management-system-sub002/internal/config"
	"github.com/marwanhelal/track-management-system-sub002/internal/criticalpath"
	"github.com/marwanhelal/track-management-system-sub002/internal/depgraph"
	"github.com/marwanhelal/track-management-system-sub002/internal/phase"
)

// Assignments maps engineer id to the in_progress phases they are logging
// work against.
type Assignments map[string][]int64

// Result is the advisory output.
type Result struct {
	Recommendations      []string `json:"recommendations"`
	PotentialTimeSavings float64  `json:"potential_time_savings_days"`
	RiskFactors          []string `json:"risk_factors"`
}

// Analyze inspects float, critical-path durations, and concurrent assignments.
// Phases with float above the configured threshold are parallelizable and
// contribute a conservative fraction of their summed float as potential
// savings; long critical phases are bottlenecks; engineers active on more than
// one in_progress phase are resource conflicts.
func Analyze(g *depgraph.Graph, cpmResult *criticalpath.Result, assignments Assignments, h config.Heuristics) *Result {
	res := &Result{}

	var floatSum float64
	for _, id := range g.Order {
		sc, ok := cpmResult.Schedules[id]
		if !ok {
			continue
		}
		p := g.Phases[id]
		if sc.TotalFloat > h.ParallelFloatDays {
			floatSum += sc.TotalFloat
			res.Recommendations = append(res.Recommendations, fmt.Sprintf(
				"Phase %q has %.1f days of float and can run in parallel with other work", p.Name, sc.TotalFloat))
		}
		if sc.Critical && p.PlannedWeeks > h.BottleneckMinWeeks {
			res.RiskFactors = append(res.RiskFactors, fmt.Sprintf(
				"Phase %q is a bottleneck: %.0f weeks on the critical path", p.Name, p.PlannedWeeks))
		}
	}
	res.PotentialTimeSavings = math.Round(floatSum*h.ParallelSavings*10) / 10

	engineers := make([]string, 0, len(assignments))
	for eng := range assignments {
		engineers = append(engineers, eng)
	}
	sort.Strings(engineers)
	for _, eng := range engineers {
		active := activePhases(g, assignments[eng])
		if len(active) > 1 {
			res.RiskFactors = append(res.RiskFactors, fmt.Sprintf(
				"Engineer %s is splitting time across %d in-progress phases", eng, len(active)))
		}
	}

	if len(res.Recommendations) == 0 {
		res.Recommendations = append(res.Recommendations,
			"Schedule is fully serialized; no parallelization opportunities at current float levels")
	}
	return res
}

// activePhases filters assignment phase ids down to those currently
// in_progress in the graph.
func activePhases(g *depgraph.Graph, ids []int64) []int64 {
	var active []int64
	seen := make(map[int64]bool)
	for _, id := range ids {
		p, ok := g.Phases[id]
		if !ok || seen[id] {
			continue
		}
		if p.Status == phase.StatusInProgress {
			seen[id] = true
			active = append(active, id)
		}
	}
	return active
}
