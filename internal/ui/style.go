// Package ui holds the terminal color palette for CLI output.
package ui

import (
	"github.com/fatih/color"

	"github.com/marwanhelal/track-management-system-sub002/internal/phase"
)

// Sprint color functions for building styled strings.
var (
	Bold       = color.New(color.Bold).SprintFunc()
	Dim        = color.New(color.Faint).SprintFunc()
	Cyan       = color.New(color.FgCyan).SprintFunc()
	Green      = color.New(color.FgGreen).SprintFunc()
	Red        = color.New(color.FgRed).SprintFunc()
	Yellow     = color.New(color.FgYellow).SprintFunc()
	Magenta    = color.New(color.FgMagenta).SprintFunc()
	BoldCyan   = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen  = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed    = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldWhite  = color.New(color.Bold, color.FgWhite).SprintFunc()
	BoldYellow = color.New(color.Bold, color.FgYellow).SprintFunc()
)

// PhaseStatus renders a phase status in its conventional color.
func PhaseStatus(s phase.Status) string {
	switch s {
	case phase.StatusNotStarted:
		return Dim(string(s))
	case phase.StatusReady:
		return Cyan(string(s))
	case phase.StatusInProgress:
		return Yellow(string(s))
	case phase.StatusSubmitted:
		return Magenta(string(s))
	case phase.StatusApproved:
		return Green(string(s))
	case phase.StatusCompleted:
		return BoldGreen(string(s))
	default:
		return string(s)
	}
}
