package phase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marwanhelal/track-management-system-sub002/internal/notify"
)

// fakeStore applies transitions in memory without a compare-and-swap; the
// lifecycle's own guards are under test here, the real guards live in store.
type fakeStore struct {
	phases   map[int64]*Phase
	workLogs map[int64]bool
	calls    []string
}

func newFakeStore(phases ...*Phase) *fakeStore {
	fs := &fakeStore{phases: make(map[int64]*Phase), workLogs: make(map[int64]bool)}
	for _, p := range phases {
		fs.phases[p.ID] = p
	}
	return fs
}

var errNotFound = errors.New("not found")

func (f *fakeStore) Get(_ context.Context, id int64) (*Phase, error) {
	p, ok := f.phases[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) Start(_ context.Context, id int64, viaEarlyAccess bool, _ string) (*Phase, error) {
	f.calls = append(f.calls, "start")
	p := f.phases[id]
	p.Status = StatusInProgress
	if viaEarlyAccess {
		p.EarlyAccess = EarlyInProgress
	}
	now := time.Now()
	p.ActualStart = &now
	cp := *p
	return &cp, nil
}

func (f *fakeStore) Submit(_ context.Context, id int64, _ string) (*Phase, error) {
	f.calls = append(f.calls, "submit")
	p := f.phases[id]
	p.Status = StatusSubmitted
	now := time.Now()
	p.SubmittedDate = &now
	cp := *p
	return &cp, nil
}

func (f *fakeStore) Approve(_ context.Context, id int64, _ string) (*Phase, bool, error) {
	f.calls = append(f.calls, "approve")
	p := f.phases[id]
	p.Status = StatusApproved
	now := time.Now()
	p.ApprovedDate = &now
	p.ActualEnd = &now

	unlocked := false
	for _, q := range f.phases {
		if q.ProjectID == p.ProjectID && q.Order == p.Order+1 && q.Status == StatusNotStarted {
			q.Status = StatusReady
			unlocked = true
		}
	}
	cp := *p
	return &cp, unlocked, nil
}

func (f *fakeStore) Complete(_ context.Context, id int64, _ string) (*Phase, error) {
	f.calls = append(f.calls, "complete")
	p := f.phases[id]
	p.Status = StatusCompleted
	cp := *p
	return &cp, nil
}

func (f *fakeStore) SetWarning(_ context.Context, id int64, flag bool, _ string) (*Phase, error) {
	f.calls = append(f.calls, "warning")
	p, ok := f.phases[id]
	if !ok {
		return nil, errNotFound
	}
	p.WarningFlag = flag
	cp := *p
	return &cp, nil
}

func (f *fakeStore) RecordDelay(_ context.Context, id int64, reason DelayReason, newEnd *time.Time, _ string) (*Phase, error) {
	f.calls = append(f.calls, "delay")
	p := f.phases[id]
	p.DelayReason = reason
	p.WarningFlag = true
	if newEnd != nil {
		p.PlannedEnd = newEnd
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) GrantEarlyAccess(_ context.Context, id int64, _ string) (*Phase, error) {
	f.calls = append(f.calls, "grant")
	p := f.phases[id]
	p.EarlyAccessGranted = true
	p.EarlyAccess = EarlyAccessible
	cp := *p
	return &cp, nil
}

func (f *fakeStore) RevokeEarlyAccess(_ context.Context, id int64, _ string) (*Phase, error) {
	f.calls = append(f.calls, "revoke")
	p := f.phases[id]
	p.EarlyAccessGranted = false
	p.EarlyAccess = EarlyNotAccessible
	cp := *p
	return &cp, nil
}

func (f *fakeStore) HasWorkLogs(_ context.Context, id int64) (bool, error) {
	return f.workLogs[id], nil
}

// memPublisher records events for assertions.
type memPublisher struct {
	events []notify.Event
	fail   bool
}

func (m *memPublisher) Publish(_ context.Context, ev notify.Event) error {
	if m.fail {
		return errors.New("sink unavailable")
	}
	m.events = append(m.events, ev)
	return nil
}

func testPhase(status Status) *Phase {
	return &Phase{ID: 1, ProjectID: 1, Name: "Schematic Design", Order: 1, Status: status, PlannedWeeks: 2}
}

func TestStart_FromReady(t *testing.T) {
	fs := newFakeStore(testPhase(StatusReady))
	lc := NewLifecycle(fs, nil)

	p, err := lc.Start(context.Background(), 1, "supervisor-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusInProgress {
		t.Errorf("expected in_progress, got %s", p.Status)
	}
	if p.ActualStart == nil {
		t.Error("expected actual start stamped")
	}
}

func TestStart_IllegalStates(t *testing.T) {
	for _, s := range []Status{StatusNotStarted, StatusInProgress, StatusSubmitted, StatusApproved, StatusCompleted} {
		t.Run(string(s), func(t *testing.T) {
			fs := newFakeStore(testPhase(s))
			_, err := NewLifecycle(fs, nil).Start(context.Background(), 1, "supervisor-1")
			var te *TransitionError
			if !errors.As(err, &te) {
				t.Fatalf("expected TransitionError, got %v", err)
			}
			if te.Current != s {
				t.Errorf("error should carry the read status %s, got %s", s, te.Current)
			}
			if fs.phases[1].Status != s {
				t.Errorf("illegal start must not change status, got %s", fs.phases[1].Status)
			}
			if len(fs.calls) != 0 {
				t.Errorf("store must not be written on an illegal transition, calls=%v", fs.calls)
			}
		})
	}
}

func TestStart_ViaEarlyAccess(t *testing.T) {
	p := testPhase(StatusNotStarted)
	p.EarlyAccessGranted = true
	p.EarlyAccess = EarlyAccessible
	fs := newFakeStore(p)

	got, err := NewLifecycle(fs, nil).Start(context.Background(), 1, "supervisor-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusInProgress {
		t.Errorf("expected in_progress, got %s", got.Status)
	}
	if got.EarlyAccess != EarlyInProgress {
		t.Errorf("expected early access consumed, got %s", got.EarlyAccess)
	}
}

func TestFullLifecycle(t *testing.T) {
	first := testPhase(StatusReady)
	second := &Phase{ID: 2, ProjectID: 1, Name: "Design Development", Order: 2, Status: StatusNotStarted, PlannedWeeks: 3}
	fs := newFakeStore(first, second)
	lc := NewLifecycle(fs, nil)
	ctx := context.Background()

	if _, err := lc.Start(ctx, 1, "eng-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := lc.Submit(ctx, 1, "eng-1"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	p, unlocked, err := lc.Approve(ctx, 1, "supervisor-1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !unlocked {
		t.Error("approve should unlock the next phase")
	}
	if p.ApprovedDate == nil || p.ActualEnd == nil {
		t.Error("approve should stamp approval and end dates")
	}
	if fs.phases[2].Status != StatusReady {
		t.Errorf("next phase should be ready, got %s", fs.phases[2].Status)
	}
	if _, err := lc.Complete(ctx, 1, "supervisor-1"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if fs.phases[1].Status != StatusCompleted {
		t.Errorf("expected completed, got %s", fs.phases[1].Status)
	}
}

func TestApprove_RequiresSubmitted(t *testing.T) {
	fs := newFakeStore(testPhase(StatusInProgress))
	_, _, err := NewLifecycle(fs, nil).Approve(context.Background(), 1, "supervisor-1")
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if te.Current != StatusInProgress {
		t.Errorf("expected current in_progress, got %s", te.Current)
	}
}

func TestHandleDelay(t *testing.T) {
	end := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	t.Run("client delay shifts the window", func(t *testing.T) {
		fs := newFakeStore(testPhase(StatusInProgress))
		p, err := NewLifecycle(fs, nil).HandleDelay(context.Background(), 1, DelayClient, &end, "supervisor-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.DelayReason != DelayClient || !p.WarningFlag {
			t.Errorf("expected client delay with warning, got %s / %v", p.DelayReason, p.WarningFlag)
		}
		if p.PlannedEnd == nil || !p.PlannedEnd.Equal(end) {
			t.Errorf("expected planned end moved to %v, got %v", end, p.PlannedEnd)
		}
	})

	t.Run("company delay ignores the new end", func(t *testing.T) {
		fs := newFakeStore(testPhase(StatusInProgress))
		p, err := NewLifecycle(fs, nil).HandleDelay(context.Background(), 1, DelayCompany, &end, "supervisor-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.PlannedEnd != nil {
			t.Errorf("company delay must not move the window, got %v", p.PlannedEnd)
		}
	})

	t.Run("unknown reason rejected", func(t *testing.T) {
		fs := newFakeStore(testPhase(StatusInProgress))
		_, err := NewLifecycle(fs, nil).HandleDelay(context.Background(), 1, "weather", nil, "supervisor-1")
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestEarlyAccess_GrantGuards(t *testing.T) {
	t.Run("only not_started", func(t *testing.T) {
		fs := newFakeStore(testPhase(StatusReady))
		_, err := NewLifecycle(fs, nil).GrantEarlyAccess(context.Background(), 1, "supervisor-1")
		var te *TransitionError
		if !errors.As(err, &te) {
			t.Fatalf("expected TransitionError, got %v", err)
		}
	})

	t.Run("no double grant", func(t *testing.T) {
		p := testPhase(StatusNotStarted)
		p.EarlyAccessGranted = true
		p.EarlyAccess = EarlyAccessible
		fs := newFakeStore(p)
		_, err := NewLifecycle(fs, nil).GrantEarlyAccess(context.Background(), 1, "supervisor-1")
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestEarlyAccess_Revoke(t *testing.T) {
	granted := func() *Phase {
		p := testPhase(StatusNotStarted)
		p.EarlyAccessGranted = true
		p.EarlyAccess = EarlyAccessible
		return p
	}

	t.Run("unused grant revokes", func(t *testing.T) {
		fs := newFakeStore(granted())
		p, err := NewLifecycle(fs, nil).RevokeEarlyAccess(context.Background(), 1, "supervisor-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.EarlyAccessGranted || p.EarlyAccess != EarlyNotAccessible {
			t.Errorf("expected grant withdrawn, got %v / %s", p.EarlyAccessGranted, p.EarlyAccess)
		}
	})

	t.Run("blocked once started", func(t *testing.T) {
		p := granted()
		p.Status = StatusInProgress
		p.EarlyAccess = EarlyInProgress
		fs := newFakeStore(p)
		_, err := NewLifecycle(fs, nil).RevokeEarlyAccess(context.Background(), 1, "supervisor-1")
		var te *TransitionError
		if !errors.As(err, &te) {
			t.Fatalf("expected TransitionError, got %v", err)
		}
	})

	t.Run("blocked by work logs", func(t *testing.T) {
		fs := newFakeStore(granted())
		fs.workLogs[1] = true
		_, err := NewLifecycle(fs, nil).RevokeEarlyAccess(context.Background(), 1, "supervisor-1")
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestMarkWarning(t *testing.T) {
	fs := newFakeStore(testPhase(StatusInProgress))
	lc := NewLifecycle(fs, nil)
	ctx := context.Background()

	p, err := lc.MarkWarning(ctx, 1, true, "system")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.WarningFlag {
		t.Error("expected warning set")
	}
	p, err = lc.MarkWarning(ctx, 1, false, "system")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.WarningFlag {
		t.Error("expected warning cleared")
	}
}

func TestPublishesEvents(t *testing.T) {
	fs := newFakeStore(testPhase(StatusReady))
	pub := &memPublisher{}
	lc := NewLifecycle(fs, pub)
	ctx := context.Background()

	if _, err := lc.Start(ctx, 1, "eng-1"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := lc.Submit(ctx, 1, "eng-1"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	ev := pub.events[1]
	if ev.Action != "submit" || ev.NewStatus != string(StatusSubmitted) || ev.ActorID != "eng-1" {
		t.Errorf("unexpected event payload: %+v", ev)
	}
}

func TestPublishFailureDoesNotBlock(t *testing.T) {
	fs := newFakeStore(testPhase(StatusReady))
	lc := NewLifecycle(fs, &memPublisher{fail: true})

	p, err := lc.Start(context.Background(), 1, "eng-1")
	if err != nil {
		t.Fatalf("transition must survive a failing publisher: %v", err)
	}
	if p.Status != StatusInProgress {
		t.Errorf("expected in_progress, got %s", p.Status)
	}
}

func TestStartable(t *testing.T) {
	tests := []struct {
		name     string
		phase    Phase
		ok       bool
		viaEarly bool
	}{
		{"ready", Phase{Status: StatusReady}, true, false},
		{"not started", Phase{Status: StatusNotStarted}, false, false},
		{"accessible grant", Phase{Status: StatusNotStarted, EarlyAccessGranted: true, EarlyAccess: EarlyAccessible}, true, true},
		{"consumed grant", Phase{Status: StatusInProgress, EarlyAccessGranted: true, EarlyAccess: EarlyInProgress}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, via := tt.phase.Startable()
			if ok != tt.ok || via != tt.viaEarly {
				t.Errorf("Startable() = %v/%v, want %v/%v", ok, via, tt.ok, tt.viaEarly)
			}
		})
	}
}
