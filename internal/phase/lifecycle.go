package phase

import (
	"context"
	"log"
	"time"

	"github.com/marwanhelal/track-management-system-sub002/internal/notify"
)

// Store is the persistence the lifecycle needs. Every mutating method must
// apply its write atomically together with its audit append, guarded by a
// compare-and-swap on the column it transitions (UPDATE ... WHERE status = ?),
// and return the store's conflict error when the guard no longer matches.
type Store interface {
	Get(ctx context.Context, id int64) (*Phase, error)
	Start(ctx context.Context, id int64, viaEarlyAccess bool, actor string) (*Phase, error)
	Submit(ctx context.Context, id int64, actor string) (*Phase, error)
	// Approve transitions the phase and, in the same transaction, advances the
	// next phase in order from not_started to ready. The bool reports whether a
	// next phase was unlocked.
	Approve(ctx context.Context, id int64, actor string) (*Phase, bool, error)
	Complete(ctx context.Context, id int64, actor string) (*Phase, error)
	SetWarning(ctx context.Context, id int64, flag bool, actor string) (*Phase, error)
	// RecordDelay sets the delay reason and, when newEnd is non-nil, shifts the
	// planned window of this phase and every later phase by the same delta.
	RecordDelay(ctx context.Context, id int64, reason DelayReason, newEnd *time.Time, actor string) (*Phase, error)
	GrantEarlyAccess(ctx context.Context, id int64, actor string) (*Phase, error)
	RevokeEarlyAccess(ctx context.Context, id int64, actor string) (*Phase, error)
	HasWorkLogs(ctx context.Context, id int64) (bool, error)
}

// Lifecycle enforces the phase state machine:
//
//	not_started -> ready -> in_progress -> submitted -> approved -> completed
//
// with an early-access branch that lets a not_started phase start ahead of its
// predecessor. It is the sole writer of phase status and dates.
type Lifecycle struct {
	store  Store
	events notify.Publisher // optional
}

// NewLifecycle wires a lifecycle over the given store. events may be nil.
func NewLifecycle(store Store, events notify.Publisher) *Lifecycle {
	return &Lifecycle{store: store, events: events}
}

// Start moves a phase to in_progress. Legal from ready, or from not_started
// when early access has been granted and not yet used.
func (l *Lifecycle) Start(ctx context.Context, id int64, actor string) (*Phase, error) {
	p, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, viaEarly := p.Startable()
	if !ok {
		return nil, &TransitionError{Op: "start", PhaseID: id, Current: p.Status, Require: "ready (or accessible via early access)"}
	}
	updated, err := l.store.Start(ctx, id, viaEarly, actor)
	if err != nil {
		return nil, err
	}
	l.publish(ctx, updated, "start", actor)
	return updated, nil
}

// Submit moves an in_progress phase to submitted and stamps the submission date.
func (l *Lifecycle) Submit(ctx context.Context, id int64, actor string) (*Phase, error) {
	p, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusInProgress {
		return nil, &TransitionError{Op: "submit", PhaseID: id, Current: p.Status, Require: string(StatusInProgress)}
	}
	updated, err := l.store.Submit(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	l.publish(ctx, updated, "submit", actor)
	return updated, nil
}

// Approve moves a submitted phase to approved, stamps end and approval dates,
// and unlocks the next phase in order if it is still not_started.
func (l *Lifecycle) Approve(ctx context.Context, id int64, actor string) (*Phase, bool, error) {
	p, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if p.Status != StatusSubmitted {
		return nil, false, &TransitionError{Op: "approve", PhaseID: id, Current: p.Status, Require: string(StatusSubmitted)}
	}
	updated, nextUnlocked, err := l.store.Approve(ctx, id, actor)
	if err != nil {
		return nil, false, err
	}
	l.publish(ctx, updated, "approve", actor)
	return updated, nextUnlocked, nil
}

// Complete moves an approved phase to completed.
func (l *Lifecycle) Complete(ctx context.Context, id int64, actor string) (*Phase, error) {
	p, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusApproved {
		return nil, &TransitionError{Op: "complete", PhaseID: id, Current: p.Status, Require: string(StatusApproved)}
	}
	updated, err := l.store.Complete(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	l.publish(ctx, updated, "complete", actor)
	return updated, nil
}

// MarkWarning sets or clears the warning flag. Legal in any state.
func (l *Lifecycle) MarkWarning(ctx context.Context, id int64, flag bool, actor string) (*Phase, error) {
	updated, err := l.store.SetWarning(ctx, id, flag, actor)
	if err != nil {
		return nil, err
	}
	l.publish(ctx, updated, "warning", actor)
	return updated, nil
}

// HandleDelay records a delay against the phase. For client-caused delays with
// a new planned end date, the planned window of this phase and every
// subsequent phase shifts by the same day delta.
func (l *Lifecycle) HandleDelay(ctx context.Context, id int64, reason DelayReason, newEnd *time.Time, actor string) (*Phase, error) {
	if reason != DelayClient && reason != DelayCompany {
		return nil, &ValidationError{Field: "delay_reason", Reason: "must be client or company"}
	}
	if reason != DelayClient {
		// Only client delays move the planned window.
		newEnd = nil
	}
	updated, err := l.store.RecordDelay(ctx, id, reason, newEnd, actor)
	if err != nil {
		return nil, err
	}
	l.publish(ctx, updated, "delay", actor)
	return updated, nil
}

// GrantEarlyAccess opens a not_started phase for early work.
func (l *Lifecycle) GrantEarlyAccess(ctx context.Context, id int64, actor string) (*Phase, error) {
	p, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusNotStarted {
		return nil, &TransitionError{Op: "grant early access to", PhaseID: id, Current: p.Status, Require: string(StatusNotStarted)}
	}
	if p.EarlyAccessGranted {
		return nil, &ValidationError{Field: "early_access", Reason: "already granted"}
	}
	updated, err := l.store.GrantEarlyAccess(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	l.publish(ctx, updated, "early_access_granted", actor)
	return updated, nil
}

// RevokeEarlyAccess withdraws an unused grant. It fails once the phase has
// started through the grant or once any work has been logged against it.
func (l *Lifecycle) RevokeEarlyAccess(ctx context.Context, id int64, actor string) (*Phase, error) {
	p, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.EarlyAccessGranted || p.EarlyAccess != EarlyAccessible {
		return nil, &TransitionError{Op: "revoke early access from", PhaseID: id, Current: p.Status, Require: "accessible via an unused early-access grant"}
	}
	hasWork, err := l.store.HasWorkLogs(ctx, id)
	if err != nil {
		return nil, err
	}
	if hasWork {
		return nil, &ValidationError{Field: "early_access", Reason: "work has already been logged against this phase"}
	}
	updated, err := l.store.RevokeEarlyAccess(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	l.publish(ctx, updated, "early_access_revoked", actor)
	return updated, nil
}

// publish emits a notification event. Delivery is best-effort: failures are
// logged and never affect the committed transition.
func (l *Lifecycle) publish(ctx context.Context, p *Phase, action, actor string) {
	if l.events == nil {
		return
	}
	ev := notify.Event{
		ProjectID: p.ProjectID,
		PhaseID:   p.ID,
		Action:    action,
		NewStatus: string(p.Status),
		ActorID:   actor,
		At:        time.Now(),
	}
	if err := l.events.Publish(ctx, ev); err != nil {
		log.Printf("warning: failed to publish %s event for phase %d: %v", action, p.ID, err)
	}
}
