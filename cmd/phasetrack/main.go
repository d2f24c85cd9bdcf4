// Command phasetrack is the CLI surface over the phase scheduling and
// risk-recovery engine: project seeding, lifecycle transitions, dependency
// edge management, and the four analyses (schedule, cascade, suggest,
// optimize).
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/marwanhelal/track-management-system-sub002/internal/advisor"
	"github.com/marwanhelal/track-management-system-sub002/internal/cascade"
	"github.com/marwanhelal/track-management-system-sub002/internal/config"
	"github.com/marwanhelal/track-management-system-sub002/internal/criticalpath"
	"github.com/marwanhelal/track-management-system-sub002/internal/depgraph"
	"github.com/marwanhelal/track-management-system-sub002/internal/notify"
	"github.com/marwanhelal/track-management-system-sub002/internal/optimizer"
	"github.com/marwanhelal/track-management-system-sub002/internal/phase"
	"github.com/marwanhelal/track-management-system-sub002/internal/recovery"
	"github.com/marwanhelal/track-management-system-sub002/internal/reporter"
	"github.com/marwanhelal/track-management-system-sub002/internal/store"
	"github.com/marwanhelal/track-management-system-sub002/internal/ui"
)

var (
	flagDB     string
	flagActor  string
	flagConfig string
	flagJSON   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "phasetrack",
		Short: "Phase scheduling and risk recovery for architecture projects",
		Long: `Phasetrack manages project phase lifecycles and their dependency graph,
computes critical paths, propagates delay impact through dependents, and
ranks recovery strategies for detected risks.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "phasetrack.db", "Database path")
	rootCmd.PersistentFlags().StringVar(&flagActor, "actor", "system", "Actor id recorded in the audit trail")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Heuristics YAML overrides")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(phasesCmd())
	rootCmd.AddCommand(phaseCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(edgeCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(cascadeCmd())
	rootCmd.AddCommand(suggestCmd())
	rootCmd.AddCommand(optimizeCmd())
	rootCmd.AddCommand(briefCmd())
	rootCmd.AddCommand(auditCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore() (*store.SQLite, error) {
	return store.Open(flagDB)
}

func heuristics() (config.Heuristics, error) {
	return config.Load(flagConfig)
}

func lifecycle(s *store.SQLite) *phase.Lifecycle {
	return phase.NewLifecycle(s, &notify.WriterPublisher{Out: os.Stderr})
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func initCmd() *cobra.Command {
	var name string
	var phasesSpec string
	var startStr string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a project with its phases and default dependency chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, err := parsePhaseSpec(phasesSpec)
			if err != nil {
				return err
			}
			start := time.Now()
			if startStr != "" {
				start, err = time.Parse("2006-01-02", startStr)
				if err != nil {
					return fmt.Errorf("invalid start date %q (want YYYY-MM-DD)", startStr)
				}
			}

			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := context.Background()
			projectID, err := s.CreateProject(ctx, name, start, seeds, flagActor)
			if err != nil {
				return err
			}
			created, err := depgraph.NewService(s).GenerateDefaultEdges(ctx, projectID, flagActor)
			if err != nil {
				return err
			}
			fmt.Printf("%s project %d with %d phases, %d default edges\n",
				ui.Green("created"), projectID, len(seeds), created)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&phasesSpec, "phases", "", "Comma-separated Name:weeks pairs, e.g. 'Concept:2,Design:3'")
	cmd.Flags().StringVar(&startStr, "start", "", "Planned start date (YYYY-MM-DD, default today)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("phases")
	return cmd
}

// parsePhaseSpec parses "Name:weeks,Name:weeks" into seeds.
func parsePhaseSpec(spec string) ([]store.PhaseSeed, error) {
	parts := strings.Split(spec, ",")
	seeds := make([]store.PhaseSeed, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, weeksStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid phase spec %q (want Name:weeks)", part)
		}
		weeks, err := strconv.ParseFloat(weeksStr, 64)
		if err != nil || weeks <= 0 {
			return nil, fmt.Errorf("invalid weeks in %q", part)
		}
		seeds = append(seeds, store.PhaseSeed{Name: strings.TrimSpace(name), PlannedWeeks: weeks})
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no phases in spec %q", spec)
	}
	return seeds, nil
}

func phasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phases <project-id>",
		Short: "List a project's phases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			phases, err := s.ListPhases(context.Background(), projectID)
			if err != nil {
				return err
			}
			if flagJSON {
				return reporter.WriteJSON(os.Stdout, phases)
			}
			for _, p := range phases {
				warn := ""
				if p.WarningFlag {
					warn = ui.BoldYellow(" [warning]")
				}
				early := ""
				if p.EarlyAccessGranted {
					early = ui.Cyan(fmt.Sprintf(" [early:%s]", p.EarlyAccess))
				}
				fmt.Printf("  %-4d %-24s %-6.1fw  id=%-4d %s%s%s\n",
					p.Order, p.Name, p.PlannedWeeks, p.ID, ui.PhaseStatus(p.Status), warn, early)
			}
			return nil
		},
	}
}

func phaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Phase lifecycle transitions",
	}

	transition := func(use, short string, fn func(ctx context.Context, lc *phase.Lifecycle, id int64) (*phase.Phase, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <phase-id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				s, err := openStore()
				if err != nil {
					return err
				}
				defer s.Close()

				p, err := fn(context.Background(), lifecycle(s), id)
				if err != nil {
					return err
				}
				fmt.Printf("%s phase %d %q is now %s\n", ui.Green("ok:"), p.ID, p.Name, ui.PhaseStatus(p.Status))
				return nil
			},
		}
	}

	cmd.AddCommand(transition("start", "Start a ready (or early-accessible) phase",
		func(ctx context.Context, lc *phase.Lifecycle, id int64) (*phase.Phase, error) {
			return lc.Start(ctx, id, flagActor)
		}))
	cmd.AddCommand(transition("submit", "Submit an in-progress phase for approval",
		func(ctx context.Context, lc *phase.Lifecycle, id int64) (*phase.Phase, error) {
			return lc.Submit(ctx, id, flagActor)
		}))
	cmd.AddCommand(transition("complete", "Complete an approved phase",
		func(ctx context.Context, lc *phase.Lifecycle, id int64) (*phase.Phase, error) {
			return lc.Complete(ctx, id, flagActor)
		}))
	cmd.AddCommand(transition("grant-early", "Grant early access to a not-started phase",
		func(ctx context.Context, lc *phase.Lifecycle, id int64) (*phase.Phase, error) {
			return lc.GrantEarlyAccess(ctx, id, flagActor)
		}))
	cmd.AddCommand(transition("revoke-early", "Revoke an unused early-access grant",
		func(ctx context.Context, lc *phase.Lifecycle, id int64) (*phase.Phase, error) {
			return lc.RevokeEarlyAccess(ctx, id, flagActor)
		}))

	cmd.AddCommand(&cobra.Command{
		Use:   "approve <phase-id>",
		Short: "Approve a submitted phase and unlock the next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			p, nextUnlocked, err := lifecycle(s).Approve(context.Background(), id, flagActor)
			if err != nil {
				return err
			}
			fmt.Printf("%s phase %d %q is now %s\n", ui.Green("ok:"), p.ID, p.Name, ui.PhaseStatus(p.Status))
			if nextUnlocked {
				fmt.Printf("%s next phase unlocked\n", ui.Cyan("->"))
			}
			return nil
		},
	})

	var clearWarn bool
	warnCmd := &cobra.Command{
		Use:   "warn <phase-id>",
		Short: "Set or clear the warning flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := lifecycle(s).MarkWarning(context.Background(), id, !clearWarn, flagActor)
			if err != nil {
				return err
			}
			fmt.Printf("%s phase %d warning_flag=%t\n", ui.Green("ok:"), p.ID, p.WarningFlag)
			return nil
		},
	}
	warnCmd.Flags().BoolVar(&clearWarn, "clear", false, "Clear the flag instead of setting it")
	cmd.AddCommand(warnCmd)

	var reason string
	var newEndStr string
	delayCmd := &cobra.Command{
		Use:   "delay <phase-id>",
		Short: "Record a delay; client delays with --new-end shift later phases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var newEnd *time.Time
			if newEndStr != "" {
				t, err := time.Parse("2006-01-02", newEndStr)
				if err != nil {
					return fmt.Errorf("invalid new end date %q (want YYYY-MM-DD)", newEndStr)
				}
				newEnd = &t
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := lifecycle(s).HandleDelay(context.Background(), id, phase.DelayReason(reason), newEnd, flagActor)
			if err != nil {
				return err
			}
			fmt.Printf("%s phase %d delay_reason=%s\n", ui.Green("ok:"), p.ID, p.DelayReason)
			return nil
		},
	}
	delayCmd.Flags().StringVar(&reason, "reason", "", "Delay cause: client or company")
	delayCmd.Flags().StringVar(&newEndStr, "new-end", "", "New planned end date (YYYY-MM-DD)")
	delayCmd.MarkFlagRequired("reason")
	cmd.AddCommand(delayCmd)

	return cmd
}

func logCmd() *cobra.Command {
	var engineer string
	var hours float64

	cmd := &cobra.Command{
		Use:   "log <phase-id>",
		Short: "Log work hours against a phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.AddWorkLog(context.Background(), id, engineer, hours); err != nil {
				return err
			}
			fmt.Printf("%s logged %.1fh by %s on phase %d\n", ui.Green("ok:"), hours, engineer, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&engineer, "engineer", "", "Engineer id")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Hours worked")
	cmd.MarkFlagRequired("engineer")
	cmd.MarkFlagRequired("hours")
	return cmd
}

func edgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Dependency edge management",
	}

	var pred, succ int64
	var typ string
	var lag, weight float64
	addCmd := &cobra.Command{
		Use:   "add <project-id>",
		Short: "Add a custom dependency edge (validated and cycle-checked)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			edgeID, err := depgraph.NewService(s).AddEdge(context.Background(), projectID,
				pred, succ, depgraph.DependencyType(typ), lag, weight, flagActor)
			if err != nil {
				return err
			}
			fmt.Printf("%s edge %d: %d -> %d (%s)\n", ui.Green("created"), edgeID, pred, succ, typ)
			return nil
		},
	}
	addCmd.Flags().Int64Var(&pred, "pred", 0, "Predecessor phase id")
	addCmd.Flags().Int64Var(&succ, "succ", 0, "Successor phase id")
	addCmd.Flags().StringVar(&typ, "type", string(depgraph.FinishToStart), "Dependency type")
	addCmd.Flags().Float64Var(&lag, "lag", 0, "Lag days")
	addCmd.Flags().Float64Var(&weight, "weight", 1.0, "Weight factor")
	addCmd.MarkFlagRequired("pred")
	addCmd.MarkFlagRequired("succ")
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <edge-id>",
		Short: "Remove an edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edgeID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := depgraph.NewService(s).RemoveEdge(context.Background(), edgeID, flagActor); err != nil {
				return err
			}
			fmt.Printf("%s edge %d\n", ui.Green("removed"), edgeID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <project-id>",
		Short: "List a project's edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			edges, err := depgraph.NewService(s).EdgesOf(context.Background(), projectID)
			if err != nil {
				return err
			}
			if flagJSON {
				return reporter.WriteJSON(os.Stdout, edges)
			}
			for _, e := range edges {
				mark := "  "
				if e.Critical {
					mark = ui.BoldRed("* ")
				}
				fmt.Printf("%s%-4d %s -> %s  %s lag=%.0f weight=%.1f\n",
					mark, e.ID, e.PredecessorName, e.SuccessorName, ui.Dim(string(e.Type)), e.LagDays, e.Weight)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "defaults <project-id>",
		Short: "Generate the default consecutive finish-to-start chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			created, err := depgraph.NewService(s).GenerateDefaultEdges(context.Background(), projectID, flagActor)
			if err != nil {
				return err
			}
			fmt.Printf("%s %d default edges\n", ui.Green("created"), created)
			return nil
		},
	})

	return cmd
}

func scheduleCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "schedule <project-id>",
		Short: "Run critical path analysis and flag critical edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			h, err := heuristics()
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			var marker criticalpath.EdgeMarker = s
			if dryRun {
				marker = nil
			}
			engine := criticalpath.NewEngine(depgraph.NewService(s), marker, h)
			g, res, err := engine.Run(context.Background(), projectID)
			if err != nil {
				return err
			}
			if flagJSON {
				return reporter.WriteJSON(os.Stdout, res)
			}
			reporter.PrintSchedule(os.Stdout, g, res)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Analyze without writing critical edge flags")
	return cmd
}

func cascadeCmd() *cobra.Command {
	var phaseID int64
	var delayDays float64
	var impact string

	cmd := &cobra.Command{
		Use:   "cascade <project-id>",
		Short: "Propagate a phase delay through its dependents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			h, err := heuristics()
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			g, err := depgraph.NewService(s).Build(context.Background(), projectID)
			if err != nil {
				return err
			}
			effects, err := cascade.Analyze(g, phaseID, delayDays, cascade.ImpactType(impact), h)
			if err != nil {
				return err
			}
			if flagJSON {
				return reporter.WriteJSON(os.Stdout, effects)
			}
			reporter.PrintCascade(os.Stdout, effects)
			return nil
		},
	}
	cmd.Flags().Int64Var(&phaseID, "phase", 0, "Delayed phase id")
	cmd.Flags().Float64Var(&delayDays, "delay", 0, "Delay in days")
	cmd.Flags().StringVar(&impact, "impact", string(cascade.ImpactDelay), "Impact type: delay, cost, resource, quality")
	cmd.MarkFlagRequired("phase")
	cmd.MarkFlagRequired("delay")
	return cmd
}

func suggestCmd() *cobra.Command {
	var warningPath string

	cmd := &cobra.Command{
		Use:   "suggest <project-id>",
		Short: "Rank recovery strategies for a warning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			w, err := readWarning(warningPath, projectID)
			if err != nil {
				return err
			}
			h, err := heuristics()
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			g, err := depgraph.NewService(s).Build(context.Background(), projectID)
			if err != nil {
				return err
			}
			suggestions, err := recovery.NewEngine(h).Suggest(w, g)
			if err != nil {
				return err
			}
			if flagJSON {
				return reporter.WriteJSON(os.Stdout, suggestions)
			}
			reporter.PrintSuggestions(os.Stdout, w, suggestions)
			return nil
		},
	}
	cmd.Flags().StringVar(&warningPath, "warning", "", "Warning JSON file from the risk detector")
	cmd.MarkFlagRequired("warning")
	return cmd
}

// readWarning parses the risk detector's warning JSON.
func readWarning(path string, projectID int64) (recovery.Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return recovery.Warning{}, fmt.Errorf("read warning file: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return recovery.Warning{}, fmt.Errorf("warning file %s is not valid JSON", path)
	}

	w := recovery.Warning{
		Type:      recovery.WarningType(gjson.GetBytes(data, "type").String()),
		Severity:  recovery.Severity(gjson.GetBytes(data, "severity").String()),
		ProjectID: projectID,
	}
	if pid := gjson.GetBytes(data, "project_id"); pid.Exists() {
		w.ProjectID = pid.Int()
	}
	for _, id := range gjson.GetBytes(data, "phase_ids").Array() {
		w.PhaseIDs = append(w.PhaseIDs, id.Int())
	}
	w.PredictedImpact.Days = gjson.GetBytes(data, "predicted_impact.days").Float()
	w.PredictedImpact.Cost = gjson.GetBytes(data, "predicted_impact.cost").Float()

	if w.Type == "" {
		return recovery.Warning{}, fmt.Errorf("warning file %s has no type field", path)
	}
	return w, nil
}

func optimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize <project-id>",
		Short: "Advisory schedule recommendations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			h, err := heuristics()
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := context.Background()
			engine := criticalpath.NewEngine(depgraph.NewService(s), nil, h)
			g, res, err := engine.Run(ctx, projectID)
			if err != nil {
				return err
			}
			assignments, err := s.ActiveAssignments(ctx, projectID)
			if err != nil {
				return err
			}
			out := optimizer.Analyze(g, res, assignments, h)
			if flagJSON {
				return reporter.WriteJSON(os.Stdout, out)
			}
			reporter.PrintOptimization(os.Stdout, out)
			return nil
		},
	}
}

func briefCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "brief <project-id>",
		Short: "Narrative schedule briefing via Claude (needs ANTHROPIC_API_KEY)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0])
			if err != nil {
				return err
			}
			h, err := heuristics()
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			engine := criticalpath.NewEngine(depgraph.NewService(s), nil, h)
			g, res, err := engine.Run(context.Background(), projectID)
			if err != nil {
				return err
			}

			client, err := advisor.NewClient("", model)
			if err != nil {
				return err
			}
			text, err := client.Brief(context.Background(), reporter.ScheduleSummary(g, res))
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "Claude model override")
	return cmd
}

func auditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <entity-type> <entity-id>",
		Short: "Show the audit trail for a phase, edge, or project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entityID, err := parseID(args[1])
			if err != nil {
				return err
			}
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.AuditTrail(context.Background(), args[0], entityID)
			if err != nil {
				return err
			}
			if flagJSON {
				return reporter.WriteJSON(os.Stdout, entries)
			}
			for _, e := range entries {
				note := ""
				if e.Note != "" {
					note = " " + ui.Dim(e.Note)
				}
				fmt.Printf("  %s %-22s %s%s\n",
					e.CreatedAt.Format(time.RFC3339), e.Action, ui.Dim("by "+e.ActorID), note)
			}
			return nil
		},
	}
}
