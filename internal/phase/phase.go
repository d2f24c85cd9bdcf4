// Package phase holds the phase data model and the lifecycle state machine.
// All status and date mutations go through the Lifecycle; nothing else in the
// system writes phase status directly.
package phase

import "time"

// Status is the lifecycle state of a phase.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusApproved   Status = "approved"
	StatusCompleted  Status = "completed"
)

// DelayReason records who caused a recorded delay.
type DelayReason string

const (
	DelayNone    DelayReason = "none"
	DelayClient  DelayReason = "client"
	DelayCompany DelayReason = "company"
)

// EarlyAccessStatus is the sub-state of a phase granted early access.
type EarlyAccessStatus string

const (
	EarlyNotAccessible EarlyAccessStatus = "not_accessible"
	EarlyAccessible    EarlyAccessStatus = "accessible"
	EarlyInProgress    EarlyAccessStatus = "in_progress"
)

// Phase is one project phase. Order is the 1-based position in the project's
// sequence; orders form a contiguous 1..N run per project.
type Phase struct {
	ID        int64
	ProjectID int64
	Name      string
	Order     int

	Status Status

	PlannedWeeks   float64
	PredictedHours float64
	ActualHours    float64

	PlannedStart  *time.Time
	PlannedEnd    *time.Time
	ActualStart   *time.Time
	ActualEnd     *time.Time
	SubmittedDate *time.Time
	ApprovedDate  *time.Time

	WarningFlag bool
	DelayReason DelayReason

	EarlyAccessGranted bool
	EarlyAccess        EarlyAccessStatus
}

// DurationDays converts the planned effort to schedule days.
func (p *Phase) DurationDays() float64 {
	return p.PlannedWeeks * 7
}

// Startable reports whether a start transition is currently legal, and whether
// it would go through the early-access branch.
func (p *Phase) Startable() (ok, viaEarlyAccess bool) {
	if p.Status == StatusReady {
		return true, false
	}
	if p.EarlyAccessGranted && p.EarlyAccess == EarlyAccessible {
		return true, true
	}
	return false, false
}

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusNotStarted, StatusReady, StatusInProgress, StatusSubmitted, StatusApproved, StatusCompleted:
		return true
	}
	return false
}
