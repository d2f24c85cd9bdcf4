package depgraph

import (
	"fmt"
	"strings"
)

// CycleError reports an edge insertion or traversal that found a dependency
// cycle. Path lists the phase ids along the cycle in forward order.
type CycleError struct {
	Path []int64
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "dependency cycle detected: " + strings.Join(parts, " -> ")
}

// ValidationError reports a malformed edge request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
