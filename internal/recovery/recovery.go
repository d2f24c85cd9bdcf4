// Package recovery turns an externally detected warning into a ranked list of
// remediation strategies. Each warning type has a small catalog of templated
// strategies; candidates are scored on success probability, recovery speed,
// cost, and effort, and the top suggestions are returned with the internal
// score stripped.
package recovery

import (
	"fmt"
	"math"
	"sort"

	"github.com/marwanhelal/track-management-system-sub002/internal/config"
	"github.com/marwanhelal/track-management-system-sub002/internal/depgraph"
)

// WarningType classifies the risk condition detected upstream.
type WarningType string

const (
	WarnTimelineDeviation    WarningType = "timeline_deviation"
	WarnBudgetOverrun        WarningType = "budget_overrun"
	WarnResourceConflict     WarningType = "resource_conflict"
	WarnQualityGateViolation WarningType = "quality_gate_violation"
	WarnClientApprovalDelay  WarningType = "client_approval_delay"
	WarnDependencyBlockage   WarningType = "dependency_blockage"
	WarnSkillGap             WarningType = "skill_gap"
	WarnCapacityOverload     WarningType = "capacity_overload"
	WarnEarlyAccessAbuse     WarningType = "early_access_abuse"
)

// Severity ranks how serious the warning is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Impact is the predicted schedule and budget damage if nothing is done.
type Impact struct {
	Days float64 `json:"days"`
	Cost float64 `json:"cost"`
}

// Warning is the input from the risk-detection collaborator. This engine only
// reads warnings; it never produces them.
type Warning struct {
	Type            WarningType `json:"type"`
	Severity        Severity    `json:"severity"`
	ProjectID       int64       `json:"project_id"`
	PhaseIDs        []int64     `json:"phase_ids"`
	PredictedImpact Impact      `json:"predicted_impact"`
}

// Effort buckets the work a strategy demands.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// Suggestion is one remediation strategy. Negative CostImpact means savings.
type Suggestion struct {
	Title                 string   `json:"title"`
	Description           string   `json:"description"`
	StrategyType          string   `json:"strategy_type"`
	Effort                Effort   `json:"effort_required"`
	SuccessProbability    int      `json:"success_probability"`
	EstimatedRecoveryDays float64  `json:"estimated_recovery_days"`
	CostImpact            float64  `json:"cost_impact"`
	Prerequisites         []string `json:"prerequisites"`
	ImplementationSteps   []string `json:"implementation_steps"`
	Risks                 []string `json:"risks"`
}

// Engine generates and ranks recovery suggestions.
type Engine struct {
	h config.Heuristics
}

// NewEngine wires a suggestion engine with the given heuristics.
func NewEngine(h config.Heuristics) *Engine {
	return &Engine{h: h}
}

// Suggest maps a warning to its ranked strategies. The graph supplies the
// dependency context for strategies that need it; parallel execution is only
// proposed when at least one affected phase has no predecessor edges.
func (e *Engine) Suggest(w Warning, g *depgraph.Graph) ([]Suggestion, error) {
	candidates := catalogFor(w)

	if w.Type == WarnTimelineDeviation && canParallelize(w, g) {
		candidates = append([]Suggestion{parallelExecution(w)}, candidates...)
	}
	candidates = append(candidates, universal(w)...)

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no strategies for warning type %q", w.Type)
	}

	type scored struct {
		s     Suggestion
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i, s := range candidates {
		ranked[i] = scored{s: s, score: e.score(s, w)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].s.Title < ranked[j].s.Title
	})

	limit := e.h.MaxSuggestions
	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]Suggestion, limit)
	for i := 0; i < limit; i++ {
		out[i] = ranked[i].s
	}
	return out, nil
}

// canParallelize reports whether any affected phase has no predecessors, which
// is the precondition for running it alongside other work.
func canParallelize(w Warning, g *depgraph.Graph) bool {
	if g == nil {
		return false
	}
	for _, id := range w.PhaseIDs {
		if _, ok := g.Phases[id]; !ok {
			continue
		}
		if !g.HasPredecessors(id) {
			return true
		}
	}
	return false
}

// score rates a suggestion on a 0-100 scale; higher is better. Weights are
// configuration, not derived constants.
func (e *Engine) score(s Suggestion, w Warning) float64 {
	h := e.h
	score := float64(s.SuccessProbability) * h.ScoreSuccessWeight

	days := math.Min(s.EstimatedRecoveryDays, h.RecoveryDaysCap)
	score += (1 - days/h.RecoveryDaysCap) * h.ScoreRecoveryPoints

	if s.CostImpact <= 0 {
		score += h.ScoreCostPoints
	} else {
		cost := math.Min(s.CostImpact, h.CostImpactCap)
		score += (1 - cost/h.CostImpactCap) * h.ScoreCostPoints
	}

	switch s.Effort {
	case EffortLow:
		score += h.EffortPointsLow
	case EffortMedium:
		score += h.EffortPointsMedium
	case EffortHigh:
		score += h.EffortPointsHigh
	}

	if w.Severity == SeverityCritical && s.EstimatedRecoveryDays <= h.CriticalFastDays {
		score += h.CriticalFastBonus
	}
	return score
}
