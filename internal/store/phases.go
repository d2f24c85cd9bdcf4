package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/marwanhelal/track-management-system-sub002/internal/phase"
)

const phaseColumns = `id, project_id, name, phase_order, status, planned_weeks,
	predicted_hours, actual_hours, planned_start_date, planned_end_date,
	actual_start_date, actual_end_date, submitted_date, approved_date,
	warning_flag, delay_reason, early_access_granted, early_access_status`

// PhaseSeed describes one phase to create with a new project.
type PhaseSeed struct {
	Name           string
	PlannedWeeks   float64
	PredictedHours float64
}

// CreateProject inserts a project and its phases in one transaction. Phases
// get contiguous orders starting at 1; the first phase starts ready, the rest
// not_started. Planned windows are laid out back to back from start.
func (s *SQLite) CreateProject(ctx context.Context, name string, start time.Time, seeds []PhaseSeed, actor string) (int64, error) {
	if len(seeds) == 0 {
		return 0, fmt.Errorf("project needs at least one phase")
	}

	var projectID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(`INSERT INTO projects (name, created_at) VALUES (?, ?)`, name, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		projectID, err = res.LastInsertId()
		if err != nil {
			return err
		}

		cursor := start
		for i, seed := range seeds {
			status := phase.StatusNotStarted
			if i == 0 {
				status = phase.StatusReady
			}
			end := cursor.AddDate(0, 0, int(seed.PlannedWeeks*7))
			res, err := tx.Exec(
				`INSERT INTO phases (project_id, name, phase_order, status, planned_weeks,
					predicted_hours, planned_start_date, planned_end_date, delay_reason, early_access_status)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'none', 'not_accessible')`,
				projectID, seed.Name, i+1, status, seed.PlannedWeeks, seed.PredictedHours, cursor, end,
			)
			if err != nil {
				return fmt.Errorf("insert phase %q: %w", seed.Name, err)
			}
			phaseID, err := res.LastInsertId()
			if err != nil {
				return err
			}
			if err := appendAudit(tx, "phase", phaseID, "created", actor, ""); err != nil {
				return err
			}
			cursor = end
		}
		return appendAudit(tx, "project", projectID, "created", actor, "")
	})
	if err != nil {
		return 0, err
	}
	return projectID, nil
}

// Get returns one phase by id.
func (s *SQLite) Get(ctx context.Context, id int64) (*phase.Phase, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+phaseColumns+` FROM phases WHERE id = ?`, id)
	p, err := scanPhase(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("phase %d: %w", id, ErrNotFound)
	}
	return p, err
}

// ListPhases returns all phases of a project ordered by phase order.
func (s *SQLite) ListPhases(ctx context.Context, projectID int64) ([]*phase.Phase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+phaseColumns+` FROM phases WHERE project_id = ? ORDER BY phase_order`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query phases: %w", err)
	}
	defer rows.Close()

	var phases []*phase.Phase
	for rows.Next() {
		p, err := scanPhase(rows)
		if err != nil {
			return nil, err
		}
		phases = append(phases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(phases) == 0 {
		return nil, fmt.Errorf("project %d: %w", projectID, ErrNotFound)
	}
	return phases, nil
}

// Start is the CAS write for the start transition. viaEarlyAccess switches the
// guard from status=ready to the unused early-access grant, and flips the
// early-access sub-state to in_progress alongside the status.
func (s *SQLite) Start(ctx context.Context, id int64, viaEarlyAccess bool, actor string) (*phase.Phase, error) {
	now := time.Now().UTC()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var res sql.Result
		var err error
		if viaEarlyAccess {
			res, err = tx.Exec(
				`UPDATE phases SET status = ?, early_access_status = ?,
					actual_start_date = COALESCE(actual_start_date, ?)
				 WHERE id = ? AND status = ? AND early_access_granted = 1 AND early_access_status = ?`,
				phase.StatusInProgress, phase.EarlyInProgress, now,
				id, phase.StatusNotStarted, phase.EarlyAccessible,
			)
		} else {
			res, err = tx.Exec(
				`UPDATE phases SET status = ?, actual_start_date = COALESCE(actual_start_date, ?)
				 WHERE id = ? AND status = ?`,
				phase.StatusInProgress, now, id, phase.StatusReady,
			)
		}
		if err != nil {
			return fmt.Errorf("start phase %d: %w", id, err)
		}
		if err := requireHit(tx, res, id); err != nil {
			return err
		}
		note := ""
		if viaEarlyAccess {
			note = "started via early access"
		}
		return appendAudit(tx, "phase", id, "start", actor, note)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Submit is the CAS write for the submit transition.
func (s *SQLite) Submit(ctx context.Context, id int64, actor string) (*phase.Phase, error) {
	now := time.Now().UTC()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE phases SET status = ?, submitted_date = ? WHERE id = ? AND status = ?`,
			phase.StatusSubmitted, now, id, phase.StatusInProgress,
		)
		if err != nil {
			return fmt.Errorf("submit phase %d: %w", id, err)
		}
		if err := requireHit(tx, res, id); err != nil {
			return err
		}
		return appendAudit(tx, "phase", id, "submit", actor, "")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Approve is the CAS write for the approve transition. In the same
// transaction it advances the next phase in order from not_started to ready,
// so a crash can never leave an approved phase with a locked successor.
func (s *SQLite) Approve(ctx context.Context, id int64, actor string) (*phase.Phase, bool, error) {
	now := time.Now().UTC()
	nextUnlocked := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE phases SET status = ?, actual_end_date = ?, approved_date = ?
			 WHERE id = ? AND status = ?`,
			phase.StatusApproved, now, now, id, phase.StatusSubmitted,
		)
		if err != nil {
			return fmt.Errorf("approve phase %d: %w", id, err)
		}
		if err := requireHit(tx, res, id); err != nil {
			return err
		}

		var projectID int64
		var order int
		if err := tx.QueryRow(`SELECT project_id, phase_order FROM phases WHERE id = ?`, id).
			Scan(&projectID, &order); err != nil {
			return fmt.Errorf("read approved phase: %w", err)
		}

		var nextID int64
		err = tx.QueryRow(
			`SELECT id FROM phases WHERE project_id = ? AND phase_order = ? AND status = ?`,
			projectID, order+1, phase.StatusNotStarted,
		).Scan(&nextID)
		switch {
		case err == sql.ErrNoRows:
			// Last phase, or the next one already moved (early access).
		case err != nil:
			return fmt.Errorf("find next phase: %w", err)
		default:
			if _, err := tx.Exec(`UPDATE phases SET status = ? WHERE id = ? AND status = ?`,
				phase.StatusReady, nextID, phase.StatusNotStarted); err != nil {
				return fmt.Errorf("unlock next phase %d: %w", nextID, err)
			}
			nextUnlocked = true
			if err := appendAudit(tx, "phase", nextID, "unlocked", actor, fmt.Sprintf("unlocked by approval of phase %d", id)); err != nil {
				return err
			}
		}
		return appendAudit(tx, "phase", id, "approve", actor, "")
	})
	if err != nil {
		return nil, false, err
	}
	p, err := s.Get(ctx, id)
	return p, nextUnlocked, err
}

// Complete is the CAS write for the complete transition.
func (s *SQLite) Complete(ctx context.Context, id int64, actor string) (*phase.Phase, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE phases SET status = ? WHERE id = ? AND status = ?`,
			phase.StatusCompleted, id, phase.StatusApproved,
		)
		if err != nil {
			return fmt.Errorf("complete phase %d: %w", id, err)
		}
		if err := requireHit(tx, res, id); err != nil {
			return err
		}
		return appendAudit(tx, "phase", id, "complete", actor, "")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// SetWarning flips the warning flag. Legal in any state.
func (s *SQLite) SetWarning(ctx context.Context, id int64, flag bool, actor string) (*phase.Phase, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE phases SET warning_flag = ? WHERE id = ?`, flag, id)
		if err != nil {
			return fmt.Errorf("set warning on phase %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("phase %d: %w", id, ErrNotFound)
		}
		return appendAudit(tx, "phase", id, "warning", actor, fmt.Sprintf("warning_flag=%t", flag))
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// RecordDelay sets the delay reason and, when newEnd is given, shifts the
// planned window of this phase and every later phase by the day delta between
// the old and new planned end.
func (s *SQLite) RecordDelay(ctx context.Context, id int64, reason phase.DelayReason, newEnd *time.Time, actor string) (*phase.Phase, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var projectID int64
		var order int
		var plannedEnd sql.NullTime
		err := tx.QueryRow(`SELECT project_id, phase_order, planned_end_date FROM phases WHERE id = ?`, id).
			Scan(&projectID, &order, &plannedEnd)
		if err == sql.ErrNoRows {
			return fmt.Errorf("phase %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("read phase %d: %w", id, err)
		}

		if _, err := tx.Exec(`UPDATE phases SET delay_reason = ? WHERE id = ?`, reason, id); err != nil {
			return fmt.Errorf("record delay on phase %d: %w", id, err)
		}

		note := fmt.Sprintf("delay_reason=%s", reason)
		if newEnd != nil {
			if !plannedEnd.Valid {
				return fmt.Errorf("phase %d has no planned end date to shift from", id)
			}
			delta := newEnd.Sub(plannedEnd.Time)
			if err := shiftPlannedWindows(tx, projectID, order, delta); err != nil {
				return err
			}
			note = fmt.Sprintf("delay_reason=%s shift=%s", reason, delta)
		}
		return appendAudit(tx, "phase", id, "delay", actor, note)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// shiftPlannedWindows moves planned start and end dates of every phase at or
// after fromOrder by delta.
func shiftPlannedWindows(tx *sql.Tx, projectID int64, fromOrder int, delta time.Duration) error {
	rows, err := tx.Query(
		`SELECT id, planned_start_date, planned_end_date FROM phases
		 WHERE project_id = ? AND phase_order >= ?`, projectID, fromOrder)
	if err != nil {
		return fmt.Errorf("query phases to shift: %w", err)
	}
	type window struct {
		id         int64
		start, end sql.NullTime
	}
	var windows []window
	for rows.Next() {
		var w window
		if err := rows.Scan(&w.id, &w.start, &w.end); err != nil {
			rows.Close()
			return fmt.Errorf("scan phase window: %w", err)
		}
		windows = append(windows, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, w := range windows {
		var start, end any
		if w.start.Valid {
			start = w.start.Time.Add(delta)
		}
		if w.end.Valid {
			end = w.end.Time.Add(delta)
		}
		if _, err := tx.Exec(`UPDATE phases SET planned_start_date = ?, planned_end_date = ? WHERE id = ?`,
			start, end, w.id); err != nil {
			return fmt.Errorf("shift phase %d window: %w", w.id, err)
		}
	}
	return nil
}

// GrantEarlyAccess opens a not_started phase for early work. Guarded against
// double grants and phases that already moved.
func (s *SQLite) GrantEarlyAccess(ctx context.Context, id int64, actor string) (*phase.Phase, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE phases SET early_access_granted = 1, early_access_status = ?
			 WHERE id = ? AND status = ? AND early_access_granted = 0`,
			phase.EarlyAccessible, id, phase.StatusNotStarted,
		)
		if err != nil {
			return fmt.Errorf("grant early access to phase %d: %w", id, err)
		}
		if err := requireHit(tx, res, id); err != nil {
			return err
		}
		return appendAudit(tx, "phase", id, "early_access_granted", actor, "")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// RevokeEarlyAccess clears an unused grant. Guarded so a grant that has been
// started through cannot be revoked.
func (s *SQLite) RevokeEarlyAccess(ctx context.Context, id int64, actor string) (*phase.Phase, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`UPDATE phases SET early_access_granted = 0, early_access_status = ?
			 WHERE id = ? AND early_access_granted = 1 AND early_access_status = ?`,
			phase.EarlyNotAccessible, id, phase.EarlyAccessible,
		)
		if err != nil {
			return fmt.Errorf("revoke early access from phase %d: %w", id, err)
		}
		if err := requireHit(tx, res, id); err != nil {
			return err
		}
		return appendAudit(tx, "phase", id, "early_access_revoked", actor, "")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// requireHit maps a zero-row guarded update to ErrNotFound (no such phase) or
// ErrConflict (phase exists but its state moved under us).
func requireHit(tx *sql.Tx, res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists int
	if err := tx.QueryRow(`SELECT 1 FROM phases WHERE id = ?`, id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("phase %d: %w", id, ErrNotFound)
		}
		return err
	}
	return fmt.Errorf("phase %d: %w", id, ErrConflict)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhase(row rowScanner) (*phase.Phase, error) {
	var p phase.Phase
	var plannedStart, plannedEnd, actualStart, actualEnd, submitted, approved sql.NullTime
	err := row.Scan(
		&p.ID, &p.ProjectID, &p.Name, &p.Order, &p.Status, &p.PlannedWeeks,
		&p.PredictedHours, &p.ActualHours, &plannedStart, &plannedEnd,
		&actualStart, &actualEnd, &submitted, &approved,
		&p.WarningFlag, &p.DelayReason, &p.EarlyAccessGranted, &p.EarlyAccess,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan phase: %w", err)
	}
	p.PlannedStart = timePtr(plannedStart)
	p.PlannedEnd = timePtr(plannedEnd)
	p.ActualStart = timePtr(actualStart)
	p.ActualEnd = timePtr(actualEnd)
	p.SubmittedDate = timePtr(submitted)
	p.ApprovedDate = timePtr(approved)
	return &p, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
