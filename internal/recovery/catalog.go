package recovery

import "math"

// The strategy catalog. Templates are parameterized by the warning's predicted
// impact so recovery estimates track the size of the problem rather than a
// fixed guess.

// recoveryDays estimates how long a strategy needs to claw back the given
// fraction of the predicted slip, with a floor of one day.
func recoveryDays(w Warning, fraction float64) float64 {
	days := w.PredictedImpact.Days * fraction
	return math.Max(1, math.Round(days*10)/10)
}

func parallelExecution(w Warning) Suggestion {
	return Suggestion{
		Title:                 "Run independent phases in parallel",
		Description:           "At least one affected phase has no unmet dependencies and can start immediately alongside current work, compressing the remaining schedule.",
		StrategyType:          "parallel_execution",
		Effort:                EffortMedium,
		SuccessProbability:    80,
		EstimatedRecoveryDays: recoveryDays(w, 0.4),
		CostImpact:            0,
		Prerequisites:         []string{"Supervisor sign-off on early access", "Engineers available for the second track"},
		ImplementationSteps:   []string{"Identify dependency-free phases among those affected", "Grant early access where required", "Assign a dedicated engineer per parallel track"},
		Risks:                 []string{"Context switching across tracks", "Rework if an upstream phase changes scope"},
	}
}

func catalogFor(w Warning) []Suggestion {
	switch w.Type {
	case WarnTimelineDeviation:
		return []Suggestion{
			{
				Title:                 "Accelerate with additional resources",
				Description:           "Add engineering hours to the slipping phases to pull the finish date back toward plan.",
				StrategyType:          "resource_acceleration",
				Effort:                EffortHigh,
				SuccessProbability:    70,
				EstimatedRecoveryDays: recoveryDays(w, 0.5),
				CostImpact:            w.PredictedImpact.Cost * 0.6,
				Prerequisites:         []string{"Budget headroom for extra hours", "Available engineers with the right skills"},
				ImplementationSteps:   []string{"Quantify the remaining work in the slipping phases", "Reassign or hire the additional capacity", "Track burn-down daily until back on plan"},
				Risks:                 []string{"Diminishing returns from onboarding overhead", "Budget pressure on later phases"},
			},
			{
				Title:                 "Trim scope to protect the deadline",
				Description:           "Defer non-essential deliverables out of the affected phases so the remaining scope fits the original window.",
				StrategyType:          "scope_optimization",
				Effort:                EffortLow,
				SuccessProbability:    65,
				EstimatedRecoveryDays: recoveryDays(w, 0.3),
				CostImpact:            -w.PredictedImpact.Cost * 0.2,
				Prerequisites:         []string{"Client agreement on deferred items"},
				ImplementationSteps:   []string{"Rank phase deliverables by contractual necessity", "Negotiate deferrals with the client", "Re-baseline the phase plan"},
				Risks:                 []string{"Client dissatisfaction with reduced scope", "Deferred work resurfacing later"},
			},
		}
	case WarnBudgetOverrun:
		return []Suggestion{
			{
				Title:                 "Tighten delivery efficiency",
				Description:           "Audit how hours are being spent in the affected phases and cut low-value activity before it compounds.",
				StrategyType:          "efficiency_optimization",
				Effort:                EffortMedium,
				SuccessProbability:    70,
				EstimatedRecoveryDays: recoveryDays(w, 0.5),
				CostImpact:            -w.PredictedImpact.Cost * 0.3,
				Prerequisites:         []string{"Accurate work logs for the affected phases"},
				ImplementationSteps:   []string{"Review logged hours against phase deliverables", "Eliminate duplicated or out-of-scope work", "Set weekly hour budgets per phase"},
				Risks:                 []string{"Morale impact of tighter tracking"},
			},
			{
				Title:                 "Reallocate budget between phases",
				Description:           "Move contingency from under-spent phases to cover the overrun without changing the project total.",
				StrategyType:          "budget_reallocation",
				Effort:                EffortLow,
				SuccessProbability:    75,
				EstimatedRecoveryDays: 2,
				CostImpact:            0,
				Prerequisites:         []string{"Under-spent phases with contingency remaining", "Finance approval"},
				ImplementationSteps:   []string{"Identify phases tracking under budget", "Shift contingency to the overrunning phases", "Update the phase budget baselines"},
				Risks:                 []string{"Later phases losing their buffer"},
			},
		}
	case WarnResourceConflict:
		return []Suggestion{
			{
				Title:                 "Cross-train to widen coverage",
				Description:           "Train a second engineer on the contested specialty so the conflicting phases no longer compete for one person.",
				StrategyType:          "cross_training",
				Effort:                EffortMedium,
				SuccessProbability:    65,
				EstimatedRecoveryDays: recoveryDays(w, 0.8),
				CostImpact:            w.PredictedImpact.Cost * 0.2,
				Prerequisites:         []string{"An engineer with adjacent skills and capacity"},
				ImplementationSteps:   []string{"Pair the specialist with a second engineer", "Hand over the lower-risk of the conflicting phases", "Review output for the first two weeks"},
				Risks:                 []string{"Slower output during ramp-up"},
			},
			{
				Title:                 "Bring in contract support",
				Description:           "Augment the team with a short-term contractor to break the contention on the shared resource.",
				StrategyType:          "contractor_augmentation",
				Effort:                EffortHigh,
				SuccessProbability:    70,
				EstimatedRecoveryDays: recoveryDays(w, 0.6),
				CostImpact:            w.PredictedImpact.Cost * 0.8,
				Prerequisites:         []string{"Approved contractor budget", "Onboarding capacity"},
				ImplementationSteps:   []string{"Scope a contract package from the conflicting phases", "Engage a vetted contractor", "Integrate deliverables with weekly reviews"},
				Risks:                 []string{"Quality variance from outside work", "Knowledge leaving with the contractor"},
			},
		}
	case WarnQualityGateViolation:
		return []Suggestion{{
			Title:                 "Run a focused quality review sprint",
			Description:           "Stop new work on the failing phase and dedicate a short sprint to clearing the quality gate findings.",
			StrategyType:          "quality_review_sprint",
			Effort:                EffortMedium,
			SuccessProbability:    75,
			EstimatedRecoveryDays: recoveryDays(w, 0.7),
			CostImpact:            w.PredictedImpact.Cost * 0.3,
			Prerequisites:         []string{"Documented gate findings", "Reviewer availability"},
			ImplementationSteps:   []string{"Triage the gate findings by severity", "Fix and re-review in priority order", "Re-run the gate before resuming new work"},
			Risks:                 []string{"Schedule pressure on downstream phases while paused"},
		}}
	case WarnClientApprovalDelay:
		return []Suggestion{{
			Title:                 "Escalate the pending approval",
			Description:           "Take the stalled submission to the client's decision maker with a clear deadline and the cost of further delay.",
			StrategyType:          "client_escalation",
			Effort:                EffortLow,
			SuccessProbability:    70,
			EstimatedRecoveryDays: recoveryDays(w, 0.5),
			CostImpact:            0,
			Prerequisites:         []string{"Named client-side decision maker"},
			ImplementationSteps:   []string{"Summarize the pending items and their schedule cost", "Book a decision meeting with the client lead", "Record the delay as client-caused against the phase"},
			Risks:                 []string{"Relationship strain if pushed too hard"},
		}}
	case WarnDependencyBlockage:
		return []Suggestion{{
			Title:                 "Re-sequence around the blocked dependency",
			Description:           "Re-order work so phases not gated by the blockage proceed while the blocker is cleared.",
			StrategyType:          "dependency_resequencing",
			Effort:                EffortMedium,
			SuccessProbability:    70,
			EstimatedRecoveryDays: recoveryDays(w, 0.5),
			CostImpact:            0,
			Prerequisites:         []string{"Supervisor authority to edit the dependency graph"},
			ImplementationSteps:   []string{"Identify edges through the blocked phase", "Add or adjust edges to route independent work forward", "Re-run the schedule analysis to confirm the new critical path"},
			Risks:                 []string{"Rework if the blocked phase changes its outputs"},
		}}
	case WarnSkillGap:
		return []Suggestion{{
			Title:                 "Close the gap with targeted mentoring",
			Description:           "Pair the assigned engineer with a senior on the missing skill for the remainder of the phase.",
			StrategyType:          "targeted_mentoring",
			Effort:                EffortMedium,
			SuccessProbability:    65,
			EstimatedRecoveryDays: recoveryDays(w, 0.9),
			CostImpact:            w.PredictedImpact.Cost * 0.25,
			Prerequisites:         []string{"Senior engineer with partial availability"},
			ImplementationSteps:   []string{"Define the specific skill shortfall", "Schedule paired sessions on the phase deliverables", "Review work products jointly until the gap closes"},
			Risks:                 []string{"Senior engineer's own phases slowing down"},
		}}
	case WarnCapacityOverload:
		return []Suggestion{{
			Title:                 "Rebalance the workload",
			Description:           "Move assignments off the overloaded engineers onto team members with slack, using phase float as the guide.",
			StrategyType:          "load_rebalancing",
			Effort:                EffortLow,
			SuccessProbability:    75,
			EstimatedRecoveryDays: recoveryDays(w, 0.4),
			CostImpact:            0,
			Prerequisites:         []string{"Current work logs per engineer"},
			ImplementationSteps:   []string{"List phases per engineer with logged hours", "Shift non-critical phases to engineers with capacity", "Cap concurrent in-progress phases per engineer"},
			Risks:                 []string{"Handover friction on moved phases"},
		}}
	case WarnEarlyAccessAbuse:
		return []Suggestion{{
			Title:                 "Audit and tighten early access",
			Description:           "Review open early-access grants, revoke unused ones, and require justification for new grants.",
			StrategyType:          "early_access_audit",
			Effort:                EffortLow,
			SuccessProbability:    80,
			EstimatedRecoveryDays: 1,
			CostImpact:            0,
			Prerequisites:         []string{"Supervisor review time"},
			ImplementationSteps:   []string{"List phases with early access granted", "Revoke grants with no logged work", "Require a written reason on future grants"},
			Risks:                 []string{"Slower starts for genuinely parallelizable work"},
		}}
	default:
		return nil
	}
}

// universal strategies apply to every warning type and guarantee the engine
// always has at least one suggestion to rank.
func universal(w Warning) []Suggestion {
	return []Suggestion{
		{
			Title:                 "Increase stakeholder engagement",
			Description:           "Brief the client and internal leads on the risk, agree on the recovery plan, and set a review cadence until the warning clears.",
			StrategyType:          "stakeholder_engagement",
			Effort:                EffortLow,
			SuccessProbability:    60,
			EstimatedRecoveryDays: recoveryDays(w, 0.6),
			CostImpact:            0,
			Prerequisites:         []string{},
			ImplementationSteps:   []string{"Prepare a one-page risk summary", "Walk stakeholders through the recovery options", "Schedule weekly check-ins until resolved"},
			Risks:                 []string{"Meeting overhead on an already stretched team"},
		},
		{
			Title:                 "Add recovery checkpoints",
			Description:           "Put short daily checkpoints on the affected phases so slippage in the recovery itself is caught within a day.",
			StrategyType:          "recovery_checkpoints",
			Effort:                EffortLow,
			SuccessProbability:    55,
			EstimatedRecoveryDays: recoveryDays(w, 0.8),
			CostImpact:            0,
			Prerequisites:         []string{},
			ImplementationSteps:   []string{"Define a per-phase recovery target", "Hold a ten-minute daily checkpoint per affected phase", "Escalate after two consecutive misses"},
			Risks:                 []string{"Checkpoint fatigue if the recovery runs long"},
		},
	}
}
