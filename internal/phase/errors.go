package phase

import "fmt"

// TransitionError reports an operation attempted against a phase whose current
// state does not allow it. Current carries the status as read, so callers can
// render a precise message without a second lookup.
type TransitionError struct {
	Op      string
	PhaseID int64
	Current Status
	Require string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("phase %d must be %s to %s. Current status: %s",
		e.PhaseID, e.Require, e.Op, e.Current)
}

// ValidationError reports malformed lifecycle input, such as an unknown delay
// reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
