// Package reporter renders analysis results for the terminal. JSON output for
// machine consumers lives here too so commands stay thin.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/marwanhelal/track-management-system-sub002/internal/cascade"
	"github.com/marwanhelal/track-management-system-sub002/internal/criticalpath"
	"github.com/marwanhelal/track-management-system-sub002/internal/depgraph"
	"github.com/marwanhelal/track-management-system-sub002/internal/optimizer"
	"github.com/marwanhelal/track-management-system-sub002/internal/recovery"
	"github.com/marwanhelal/track-management-system-sub002/internal/ui"
)

// WriteJSON emits v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintSchedule writes the CPM analysis as a per-phase table.
func PrintSchedule(w io.Writer, g *depgraph.Graph, res *criticalpath.Result) {
	fmt.Fprintf(w, "%s  project %d — total duration %s days\n\n",
		ui.BoldCyan("Schedule"), g.ProjectID, ui.Bold(fmt.Sprintf("%.0f", res.TotalDuration)))

	fmt.Fprintf(w, "  %-4s %-24s %-12s %8s %8s %8s %8s %7s\n",
		"#", "PHASE", "STATUS", "ES", "EF", "LS", "LF", "FLOAT")
	for _, id := range g.Order {
		p := g.Phases[id]
		sc := res.Schedules[id]
		mark := "  "
		if sc.Critical {
			mark = ui.BoldRed("* ")
		}
		fmt.Fprintf(w, "%s%-4d %-24s %-12s %8.1f %8.1f %8.1f %8.1f %7.1f\n",
			mark, p.Order, truncate(p.Name, 24), ui.PhaseStatus(p.Status),
			sc.EarlyStart, sc.EarlyFinish, sc.LateStart, sc.LateFinish, sc.TotalFloat)
	}
	fmt.Fprintf(w, "\n  %s critical path (%d phases, %d edges flagged)\n",
		ui.BoldRed("*"), len(res.CriticalPhaseIDs), len(res.CriticalEdgeIDs))
}

// PrintCascade writes the cascade effects grouped by depth.
func PrintCascade(w io.Writer, effects []cascade.Effect) {
	if len(effects) == 0 {
		fmt.Fprintf(w, "%s no downstream phases affected\n", ui.Green("ok:"))
		return
	}
	fmt.Fprintf(w, "%s  %d phases affected\n\n", ui.BoldCyan("Cascade impact"), len(effects))
	depth := 0
	for _, e := range effects {
		if e.Depth != depth {
			depth = e.Depth
			fmt.Fprintf(w, "  %s %d\n", ui.BoldWhite("DEPTH"), depth)
		}
		fmt.Fprintf(w, "    %-24s %6.2f days  %3d%%  %s\n",
			truncate(e.PhaseName, 24), e.Magnitude, e.Probability, urgencyColor(e.Urgency))
	}
}

func urgencyColor(u cascade.Urgency) string {
	switch u {
	case cascade.UrgencyImmediate:
		return ui.BoldRed(string(u))
	case cascade.UrgencyWithin24h:
		return ui.Red(string(u))
	case cascade.UrgencyWithinWeek:
		return ui.Yellow(string(u))
	default:
		return ui.Dim(string(u))
	}
}

// PrintSuggestions writes the ranked recovery strategies.
func PrintSuggestions(w io.Writer, warning recovery.Warning, suggestions []recovery.Suggestion) {
	fmt.Fprintf(w, "%s  %s (%s) — %d strategies\n\n",
		ui.BoldCyan("Recovery"), warning.Type, severityColor(warning.Severity), len(suggestions))
	for i, s := range suggestions {
		fmt.Fprintf(w, "  %s %s\n", ui.BoldWhite(fmt.Sprintf("%d.", i+1)), ui.Bold(s.Title))
		fmt.Fprintf(w, "     %s\n", s.Description)
		fmt.Fprintf(w, "     %s effort=%s success=%d%% recovery=%.1fd cost=%s\n",
			ui.Dim(s.StrategyType), s.Effort, s.SuccessProbability,
			s.EstimatedRecoveryDays, costString(s.CostImpact))
		for _, step := range s.ImplementationSteps {
			fmt.Fprintf(w, "     - %s\n", ui.Dim(step))
		}
		fmt.Fprintln(w)
	}
}

func severityColor(s recovery.Severity) string {
	switch s {
	case recovery.SeverityCritical:
		return ui.BoldRed(string(s))
	case recovery.SeverityHigh:
		return ui.Red(string(s))
	case recovery.SeverityMedium:
		return ui.Yellow(string(s))
	default:
		return ui.Dim(string(s))
	}
}

func costString(cost float64) string {
	if cost < 0 {
		return ui.Green(fmt.Sprintf("%.0f (savings)", -cost))
	}
	if cost == 0 {
		return ui.Dim("neutral")
	}
	return ui.Yellow(fmt.Sprintf("+%.0f", cost))
}

// PrintOptimization writes the advisory recommendations.
func PrintOptimization(w io.Writer, res *optimizer.Result) {
	fmt.Fprintf(w, "%s  potential savings %s days\n\n",
		ui.BoldCyan("Optimization"), ui.Bold(fmt.Sprintf("%.1f", res.PotentialTimeSavings)))
	for _, r := range res.Recommendations {
		fmt.Fprintf(w, "  %s %s\n", ui.Green("+"), r)
	}
	for _, r := range res.RiskFactors {
		fmt.Fprintf(w, "  %s %s\n", ui.Red("!"), r)
	}
}

// ScheduleSummary renders a compact plain-text schedule for the advisor.
func ScheduleSummary(g *depgraph.Graph, res *criticalpath.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project %d: %d phases, total duration %.0f days.\n",
		g.ProjectID, len(g.Order), res.TotalDuration)
	for _, id := range g.Order {
		p := g.Phases[id]
		sc := res.Schedules[id]
		crit := ""
		if sc.Critical {
			crit = " [critical]"
		}
		fmt.Fprintf(&b, "- Phase %d %q: status=%s weeks=%.1f float=%.1f%s\n",
			p.Order, p.Name, p.Status, p.PlannedWeeks, sc.TotalFloat, crit)
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
