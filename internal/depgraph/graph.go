// Package depgraph stores and queries the directed dependency edges between
// the phases of one project, and builds the in-memory graph the scheduling and
// impact analyses consume. Edge sets are validated to stay acyclic at
// insertion time; a cycle is rejected rather than left for the scheduler to
// trip over.
package depgraph

import (
	"context"
	"fmt"
	"sort"

	"github.com/marwanhelal/track-management-system-sub002/internal/phase"
)

// Store is the durable edge and phase access the service needs. ListEdges
// returns edges joined with phase names and orders, ordered by predecessor
// then successor order. Mutating methods append an audit record in the same
// transaction.
type Store interface {
	ListPhases(ctx context.Context, projectID int64) ([]*phase.Phase, error)
	ListEdges(ctx context.Context, projectID int64) ([]Edge, error)
	InsertEdge(ctx context.Context, e Edge, actor string) (int64, error)
	DeleteEdge(ctx context.Context, edgeID int64, actor string) error
}

// NotFoundError reports a phase that does not exist in the project.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// Service owns edge lifecycle and graph construction for all projects.
type Service struct {
	store Store
}

// NewService wires a service over the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GenerateDefaultEdges creates a finish_to_start edge between every
// consecutive pair of phases, skipping pairs that already have one. Default
// edges start on the critical path since the untouched chain is the critical
// path. Idempotent. Returns the number of edges created.
func (s *Service) GenerateDefaultEdges(ctx context.Context, projectID int64, actor string) (int, error) {
	phases, err := s.store.ListPhases(ctx, projectID)
	if err != nil {
		return 0, err
	}
	edges, err := s.store.ListEdges(ctx, projectID)
	if err != nil {
		return 0, err
	}

	have := make(map[[2]int64]bool, len(edges))
	for _, e := range edges {
		have[[2]int64{e.PredecessorID, e.SuccessorID}] = true
	}

	created := 0
	for i := 0; i+1 < len(phases); i++ {
		pred, succ := phases[i], phases[i+1]
		if have[[2]int64{pred.ID, succ.ID}] {
			continue
		}
		_, err := s.store.InsertEdge(ctx, Edge{
			ProjectID:     projectID,
			PredecessorID: pred.ID,
			SuccessorID:   succ.ID,
			Type:          FinishToStart,
			LagDays:       0,
			Weight:        1.0,
			Critical:      true,
		}, actor)
		if err != nil {
			return created, fmt.Errorf("insert default edge %d -> %d: %w", pred.ID, succ.ID, err)
		}
		created++
	}
	return created, nil
}

// AddEdge validates and inserts a custom edge. Both phases must belong to the
// project, the weight must be non-negative, and the resulting edge set must
// stay acyclic. The edge starts off the critical path; only the critical-path
// engine recomputes that flag.
func (s *Service) AddEdge(ctx context.Context, projectID, predecessorID, successorID int64, typ DependencyType, lagDays, weight float64, actor string) (int64, error) {
	if !ValidType(typ) {
		return 0, &ValidationError{Field: "dependency_type", Reason: fmt.Sprintf("unknown type %q", typ)}
	}
	if weight < 0 {
		return 0, &ValidationError{Field: "weight_factor", Reason: "must be non-negative"}
	}
	if predecessorID == successorID {
		return 0, &ValidationError{Field: "edge", Reason: "a phase cannot depend on itself"}
	}

	phases, err := s.store.ListPhases(ctx, projectID)
	if err != nil {
		return 0, err
	}
	known := make(map[int64]bool, len(phases))
	for _, p := range phases {
		known[p.ID] = true
	}
	if !known[predecessorID] {
		return 0, &NotFoundError{Entity: "phase", ID: predecessorID}
	}
	if !known[successorID] {
		return 0, &NotFoundError{Entity: "phase", ID: successorID}
	}

	edges, err := s.store.ListEdges(ctx, projectID)
	if err != nil {
		return 0, err
	}
	for _, e := range edges {
		if e.PredecessorID == predecessorID && e.SuccessorID == successorID && e.Type == typ {
			return 0, &ValidationError{Field: "edge", Reason: fmt.Sprintf("duplicate %s edge %d -> %d", typ, predecessorID, successorID)}
		}
	}

	candidate := Edge{
		ProjectID:     projectID,
		PredecessorID: predecessorID,
		SuccessorID:   successorID,
		Type:          typ,
		LagDays:       lagDays,
		Weight:        weight,
	}
	if cycle := detectCycle(append(edges, candidate)); cycle != nil {
		return 0, &CycleError{Path: cycle}
	}

	return s.store.InsertEdge(ctx, candidate, actor)
}

// RemoveEdge hard-deletes an edge.
func (s *Service) RemoveEdge(ctx context.Context, edgeID int64, actor string) error {
	return s.store.DeleteEdge(ctx, edgeID, actor)
}

// EdgesOf returns all edges of a project joined with phase names, ordered by
// predecessor then successor order.
func (s *Service) EdgesOf(ctx context.Context, projectID int64) ([]Edge, error) {
	return s.store.ListEdges(ctx, projectID)
}

// Build loads phases and edges and assembles the traversal graph.
func (s *Service) Build(ctx context.Context, projectID int64) (*Graph, error) {
	phases, err := s.store.ListPhases(ctx, projectID)
	if err != nil {
		return nil, err
	}
	edges, err := s.store.ListEdges(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return BuildGraph(projectID, phases, edges)
}

// BuildGraph assembles a Graph from pre-fetched rows. Edges referencing phases
// outside the set are dropped rather than failing the build.
func BuildGraph(projectID int64, phases []*phase.Phase, edges []Edge) (*Graph, error) {
	g := &Graph{
		ProjectID: projectID,
		Phases:    make(map[int64]*phase.Phase, len(phases)),
		Adj:       make(map[int64][]Edge),
		RevAdj:    make(map[int64][]Edge),
	}

	for _, p := range phases {
		g.Phases[p.ID] = p
		g.Order = append(g.Order, p.ID)
	}
	sort.Slice(g.Order, func(i, j int) bool {
		return g.Phases[g.Order[i]].Order < g.Phases[g.Order[j]].Order
	})

	for _, e := range edges {
		if _, ok := g.Phases[e.PredecessorID]; !ok {
			continue
		}
		if _, ok := g.Phases[e.SuccessorID]; !ok {
			continue
		}
		g.Edges = append(g.Edges, e)
		g.Adj[e.PredecessorID] = append(g.Adj[e.PredecessorID], e)
		g.RevAdj[e.SuccessorID] = append(g.RevAdj[e.SuccessorID], e)
	}

	// Deterministic traversal order.
	for id := range g.Adj {
		sort.Slice(g.Adj[id], func(i, j int) bool {
			return g.Adj[id][i].SuccessorID < g.Adj[id][j].SuccessorID
		})
	}
	for id := range g.RevAdj {
		sort.Slice(g.RevAdj[id], func(i, j int) bool {
			return g.RevAdj[id][i].PredecessorID < g.RevAdj[id][j].PredecessorID
		})
	}

	for _, id := range g.Order {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}

	if cycle := detectCycle(g.Edges); cycle != nil {
		return nil, &CycleError{Path: cycle}
	}
	return g, nil
}

// detectCycle returns the phase ids along a cycle if one exists, or nil.
// DFS with coloring: white (unvisited), gray (on stack), black (done).
func detectCycle(edges []Edge) []int64 {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	adj := make(map[int64][]int64)
	nodes := make(map[int64]bool)
	for _, e := range edges {
		adj[e.PredecessorID] = append(adj[e.PredecessorID], e.SuccessorID)
		nodes[e.PredecessorID] = true
		nodes[e.SuccessorID] = true
	}
	for id := range adj {
		sort.Slice(adj[id], func(i, j int) bool { return adj[id][i] < adj[id][j] })
	}

	color := make(map[int64]int)
	parent := make(map[int64]int64)

	var dfs func(node int64) []int64
	dfs = func(node int64) []int64 {
		color[node] = gray
		for _, next := range adj[node] {
			if color[next] == gray {
				cycle := []int64{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	ids := make([]int64, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
