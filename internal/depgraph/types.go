package depgraph

import (
	"github.com/marwanhelal/track-management-system-sub002/internal/phase"
)

// DependencyType is the scheduling relationship an edge encodes.
type DependencyType string

const (
	FinishToStart  DependencyType = "finish_to_start"
	StartToStart   DependencyType = "start_to_start"
	FinishToFinish DependencyType = "finish_to_finish"
	StartToFinish  DependencyType = "start_to_finish"
)

// ValidType reports whether t is a known dependency type.
func ValidType(t DependencyType) bool {
	switch t {
	case FinishToStart, StartToStart, FinishToFinish, StartToFinish:
		return true
	}
	return false
}

// Edge is one directed dependency between two phases of the same project.
type Edge struct {
	ID            int64
	ProjectID     int64
	PredecessorID int64
	SuccessorID   int64
	Type          DependencyType
	LagDays       float64
	Weight        float64
	Critical      bool

	// Joined phase fields, populated by EdgesOf for display.
	PredecessorName  string
	SuccessorName    string
	PredecessorOrder int
	SuccessorOrder   int
}

// Graph is the in-memory dependency graph for one project, built from the
// durable phase and edge rows. Adjacency lists carry the full edge so
// consumers can read lag and weight while traversing.
type Graph struct {
	ProjectID int64
	Phases    map[int64]*phase.Phase
	Order     []int64 // phase ids sorted by phase order
	Edges     []Edge
	Adj       map[int64][]Edge // predecessor id -> outgoing edges
	RevAdj    map[int64][]Edge // successor id -> incoming edges
	Roots     []int64          // phases with no predecessors
	Leaves    []int64          // phases with no successors
}

// PhaseCount returns the number of phases in the graph.
func (g *Graph) PhaseCount() int {
	return len(g.Phases)
}

// HasPredecessors reports whether any edge targets the given phase.
func (g *Graph) HasPredecessors(id int64) bool {
	return len(g.RevAdj[id]) > 0
}
