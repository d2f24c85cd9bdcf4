// Package cascade computes the decayed downstream impact of a phase delay.
// Breadth-first traversal over successor edges reaches every dependent phase
// up to a fixed depth cap; impact shrinks geometrically with each hop and the
// propagation probability drops linearly to a floor.
package cascade

import (
	"fmt"
	"math"
	"sort"

	"github.com/marwanhelal/track-management-system-sub002/internal/config"
	"github.com/marwanhelal/track-management-system-sub002/internal/depgraph"
)

// ImpactType classifies what kind of impact is being propagated.
type ImpactType string

const (
	ImpactDelay    ImpactType = "delay"
	ImpactCost     ImpactType = "cost"
	ImpactResource ImpactType = "resource"
	ImpactQuality  ImpactType = "quality"
)

// ValidImpactType reports whether t is a known impact type.
func ValidImpactType(t ImpactType) bool {
	switch t {
	case ImpactDelay, ImpactCost, ImpactResource, ImpactQuality:
		return true
	}
	return false
}

// Urgency ranks how quickly mitigation should start.
type Urgency string

const (
	UrgencyImmediate  Urgency = "immediate"
	UrgencyWithin24h  Urgency = "within_24h"
	UrgencyWithinWeek Urgency = "within_week"
	UrgencyMonitor    Urgency = "monitor"
)

// Effect is the computed impact on one dependent phase. Effects are never
// persisted; they are recomputed on every request.
type Effect struct {
	PhaseID     int64
	PhaseName   string
	ImpactType  ImpactType
	Magnitude   float64 // days-equivalent, rounded to 2 decimals
	Probability int     // 0-100
	Urgency     Urgency
	Depth       int // 1 = direct successor
}

// Analyze propagates a delay of delayDays on the given phase through the
// graph. Each dependent phase is reported once at its first-seen depth;
// traversal stops at the configured depth cap.
func Analyze(g *depgraph.Graph, phaseID int64, delayDays float64, impact ImpactType, h config.Heuristics) ([]Effect, error) {
	if _, ok := g.Phases[phaseID]; !ok {
		return nil, fmt.Errorf("phase %d not found in project %d graph", phaseID, g.ProjectID)
	}
	if !ValidImpactType(impact) {
		return nil, fmt.Errorf("unknown impact type %q", impact)
	}
	if delayDays < 0 {
		return nil, fmt.Errorf("delay days must be non-negative, got %g", delayDays)
	}

	type visit struct {
		id     int64
		depth  int
		weight float64 // weight of the edge used to reach the phase
	}

	seen := map[int64]bool{phaseID: true}
	queue := make([]visit, 0, len(g.Adj[phaseID]))
	for _, e := range g.Adj[phaseID] {
		if !seen[e.SuccessorID] {
			seen[e.SuccessorID] = true
			queue = append(queue, visit{id: e.SuccessorID, depth: 1, weight: e.Weight})
		}
	}

	var effects []Effect
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		effects = append(effects, buildEffect(g, v.id, v.depth, v.weight, delayDays, impact, h))

		if v.depth >= h.CascadeMaxDepth {
			continue
		}
		for _, e := range g.Adj[v.id] {
			if seen[e.SuccessorID] {
				continue
			}
			seen[e.SuccessorID] = true
			queue = append(queue, visit{id: e.SuccessorID, depth: v.depth + 1, weight: e.Weight})
		}
	}

	sort.Slice(effects, func(i, j int) bool {
		if effects[i].Depth != effects[j].Depth {
			return effects[i].Depth < effects[j].Depth
		}
		return effects[i].PhaseID < effects[j].PhaseID
	})
	return effects, nil
}

func buildEffect(g *depgraph.Graph, id int64, depth int, weight, delayDays float64, impact ImpactType, h config.Heuristics) Effect {
	magnitude := delayDays * weight * math.Pow(h.CascadeDecayFactor, float64(depth-1))
	magnitude = math.Round(magnitude*100) / 100

	probability := h.PropagationBase - (depth-1)*h.PropagationStep
	if probability < h.PropagationFloor {
		probability = h.PropagationFloor
	}

	return Effect{
		PhaseID:     id,
		PhaseName:   g.Phases[id].Name,
		ImpactType:  impact,
		Magnitude:   magnitude,
		Probability: probability,
		Urgency:     classifyUrgency(magnitude, depth, h),
		Depth:       depth,
	}
}

func classifyUrgency(magnitude float64, depth int, h config.Heuristics) Urgency {
	switch {
	case magnitude > h.UrgencyImmediateDays && depth <= h.UrgencyImmediateDepth:
		return UrgencyImmediate
	case magnitude > h.UrgencySoonDays && depth <= h.UrgencySoonDepth:
		return UrgencyWithin24h
	case magnitude > h.UrgencyWeekDays:
		return UrgencyWithinWeek
	default:
		return UrgencyMonitor
	}
}
