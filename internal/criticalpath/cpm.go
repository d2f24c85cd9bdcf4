// Package criticalpath implements two-pass critical path method scheduling
// over a project's dependency graph. Durations are planned weeks converted to
// days; the forward pass computes early start/finish, the backward pass late
// start/finish, and total float marks critical-path membership.
package criticalpath

import (
	"context"
	"fmt"
	"sort"

	"github.com/marwanhelal/track-management-system-sub002/internal/config"
	"github.com/marwanhelal/track-management-system-sub002/internal/depgraph"
)

// EdgeMarker persists the recomputed critical-path edge flags wholesale.
type EdgeMarker interface {
	SetCriticalEdges(ctx context.Context, projectID int64, edgeIDs []int64) error
}

// Engine loads a project graph, runs the analysis, and writes the edge flags
// back. marker may be nil for a read-only analysis.
type Engine struct {
	graphs *depgraph.Service
	marker EdgeMarker
	h      config.Heuristics
}

// NewEngine wires a CPM engine.
func NewEngine(graphs *depgraph.Service, marker EdgeMarker, h config.Heuristics) *Engine {
	return &Engine{graphs: graphs, marker: marker, h: h}
}

// Run builds the project graph, analyzes it, and persists critical edge flags.
func (e *Engine) Run(ctx context.Context, projectID int64) (*depgraph.Graph, *Result, error) {
	g, err := e.graphs.Build(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	result, err := Analyze(g, e.h)
	if err != nil {
		return nil, nil, err
	}
	if e.marker != nil {
		if err := e.marker.SetCriticalEdges(ctx, projectID, result.CriticalEdgeIDs); err != nil {
			return nil, nil, fmt.Errorf("mark critical edges: %w", err)
		}
	}
	return g, result, nil
}

// Analyze performs the two CPM passes over the graph. The computation is pure;
// it fails only on a structurally invalid graph (a cycle the edge validation
// let through).
func Analyze(g *depgraph.Graph, h config.Heuristics) (*Result, error) {
	order, err := topoSort(g)
	if err != nil {
		return nil, err
	}

	durations := make(map[int64]float64, len(g.Phases))
	for id, p := range g.Phases {
		durations[id] = p.DurationDays()
	}

	result := &Result{
		Schedules:    make(map[int64]*Schedule, len(order)),
		FloatByPhase: make(map[int64]float64, len(order)),
	}
	for _, id := range order {
		result.Schedules[id] = &Schedule{PhaseID: id}
	}

	// Forward pass: early start is the latest early finish of any predecessor.
	for _, id := range order {
		sc := result.Schedules[id]
		es := 0.0
		for _, e := range g.RevAdj[id] {
			if pred := result.Schedules[e.PredecessorID]; pred.EarlyFinish > es {
				es = pred.EarlyFinish
			}
		}
		sc.EarlyStart = es
		sc.EarlyFinish = es + durations[id]
		if sc.EarlyFinish > result.TotalDuration {
			result.TotalDuration = sc.EarlyFinish
		}
	}

	// Backward pass: late finish is the earliest late start of any successor,
	// defaulting to the total project duration.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		sc := result.Schedules[id]
		lf := result.TotalDuration
		for _, e := range g.Adj[id] {
			if succ := result.Schedules[e.SuccessorID]; succ.LateStart < lf {
				lf = succ.LateStart
			}
		}
		sc.LateFinish = lf
		sc.LateStart = lf - durations[id]
		sc.TotalFloat = sc.LateStart - sc.EarlyStart
		sc.Critical = sc.TotalFloat <= h.CriticalFloatTolerance
		result.FloatByPhase[id] = sc.TotalFloat
	}

	for _, id := range g.Order {
		if result.Schedules[id].Critical {
			result.CriticalPhaseIDs = append(result.CriticalPhaseIDs, id)
		}
	}

	result.CriticalEdgeIDs = criticalEdges(g, result, h)
	return result, nil
}

// criticalEdges selects the edges to flag as critical-path members. The
// default mode flags every edge touching a critical phase, matching the
// historical behavior this engine replaces. Strict mode flags only edges that
// actually lie on a critical path: both endpoints critical and no slack
// between the predecessor's finish and the successor's start.
func criticalEdges(g *depgraph.Graph, result *Result, h config.Heuristics) []int64 {
	var ids []int64
	for _, e := range g.Edges {
		pred := result.Schedules[e.PredecessorID]
		succ := result.Schedules[e.SuccessorID]
		if h.StrictCriticalEdges {
			onPath := pred.Critical && succ.Critical &&
				succ.EarlyStart-pred.EarlyFinish <= h.CriticalFloatTolerance
			if onPath {
				ids = append(ids, e.ID)
			}
			continue
		}
		if pred.Critical || succ.Critical {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// topoSort runs Kahn's algorithm over the graph. Ties break by phase order so
// the result is deterministic and follows the project sequence.
func topoSort(g *depgraph.Graph) ([]int64, error) {
	inDegree := make(map[int64]int, len(g.Phases))
	for id := range g.Phases {
		inDegree[id] = len(g.RevAdj[id])
	}

	byOrder := func(ids []int64) {
		sort.Slice(ids, func(i, j int) bool {
			return g.Phases[ids[i]].Order < g.Phases[ids[j]].Order
		})
	}

	var queue []int64
	for id := range g.Phases {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	byOrder(queue)

	var order []int64
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		var newReady []int64
		for _, e := range g.Adj[node] {
			inDegree[e.SuccessorID]--
			if inDegree[e.SuccessorID] == 0 {
				newReady = append(newReady, e.SuccessorID)
			}
		}
		byOrder(newReady)
		queue = append(queue, newReady...)
	}

	if len(order) != len(g.Phases) {
		return nil, fmt.Errorf("topological sort failed: graph has a cycle (%d of %d phases sorted)", len(order), len(g.Phases))
	}
	return order, nil
}
