// Package config centralizes the tunable heuristics of the scheduling and
// risk-recovery engine. The numbers encode business judgment, not derived
// constants; they live here as named fields with defaults so operators can
// override them from a YAML file instead of patching literals.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Heuristics holds every tunable constant used by the analysis packages.
type Heuristics struct {
	// Critical-path analysis.
	CriticalFloatTolerance float64 `yaml:"critical_float_tolerance"` // float at or below this counts as critical
	StrictCriticalEdges    bool    `yaml:"strict_critical_edges"`    // mark only edges between consecutive critical phases

	// Cascade impact propagation.
	CascadeMaxDepth      int     `yaml:"cascade_max_depth"`
	CascadeDecayFactor   float64 `yaml:"cascade_decay_factor"` // per-depth multiplier on impact magnitude
	PropagationBase      int     `yaml:"propagation_base"`     // probability at depth 1
	PropagationStep      int     `yaml:"propagation_step"`     // probability lost per extra depth
	PropagationFloor     int     `yaml:"propagation_floor"`    // probability never drops below this
	UrgencyImmediateDays float64 `yaml:"urgency_immediate_days"`
	UrgencyImmediateDepth int    `yaml:"urgency_immediate_depth"`
	UrgencySoonDays      float64 `yaml:"urgency_soon_days"`
	UrgencySoonDepth     int     `yaml:"urgency_soon_depth"`
	UrgencyWeekDays      float64 `yaml:"urgency_week_days"`

	// Recovery suggestion scoring. Weights are points on a 0-100 scale.
	ScoreSuccessWeight  float64 `yaml:"score_success_weight"`  // multiplied by success probability
	ScoreRecoveryPoints float64 `yaml:"score_recovery_points"` // full points for instant recovery
	ScoreCostPoints     float64 `yaml:"score_cost_points"`     // full points for zero or negative cost
	RecoveryDaysCap     float64 `yaml:"recovery_days_cap"`
	CostImpactCap       float64 `yaml:"cost_impact_cap"`
	EffortPointsLow     float64 `yaml:"effort_points_low"`
	EffortPointsMedium  float64 `yaml:"effort_points_medium"`
	EffortPointsHigh    float64 `yaml:"effort_points_high"`
	CriticalFastBonus   float64 `yaml:"critical_fast_bonus"` // critical severity recovered within CriticalFastDays
	CriticalFastDays    float64 `yaml:"critical_fast_days"`
	MaxSuggestions      int     `yaml:"max_suggestions"`

	// Schedule optimizer.
	ParallelFloatDays  float64 `yaml:"parallel_float_days"`  // float above this marks a phase parallelizable
	ParallelSavings    float64 `yaml:"parallel_savings"`     // conservative fraction of summed float
	BottleneckMinWeeks float64 `yaml:"bottleneck_min_weeks"` // critical phases longer than this are bottlenecks
}

// Default returns the shipped heuristic values.
func Default() Heuristics {
	return Heuristics{
		CriticalFloatTolerance: 0.1,
		StrictCriticalEdges:    false,

		CascadeMaxDepth:       5,
		CascadeDecayFactor:    0.8,
		PropagationBase:       90,
		PropagationStep:       15,
		PropagationFloor:      20,
		UrgencyImmediateDays:  5,
		UrgencyImmediateDepth: 2,
		UrgencySoonDays:       3,
		UrgencySoonDepth:      3,
		UrgencyWeekDays:       1,

		ScoreSuccessWeight:  0.30,
		ScoreRecoveryPoints: 25,
		ScoreCostPoints:     20,
		RecoveryDaysCap:     30,
		CostImpactCap:       10000,
		EffortPointsLow:     15,
		EffortPointsMedium:  10,
		EffortPointsHigh:    5,
		CriticalFastBonus:   10,
		CriticalFastDays:    3,
		MaxSuggestions:      5,

		ParallelFloatDays:  5,
		ParallelSavings:    0.3,
		BottleneckMinWeeks: 3,
	}
}

// Load reads a YAML overrides file on top of the defaults. A missing path
// returns the defaults unchanged.
func Load(path string) (Heuristics, error) {
	h := Default()
	if path == "" {
		return h, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return h, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("parse config: %w", err)
	}
	return h, nil
}
