package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/marwanhelal/track-management-system-sub002/internal/optimizer"
)

// AddWorkLog records hours against a phase and folds them into the phase's
// actual hours in the same transaction.
func (s *SQLite) AddWorkLog(ctx context.Context, phaseID int64, engineerID string, hours float64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(`UPDATE phases SET actual_hours = actual_hours + ? WHERE id = ?`, hours, phaseID)
		if err != nil {
			return fmt.Errorf("update actual hours: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("phase %d: %w", phaseID, ErrNotFound)
		}
		if _, err := tx.Exec(
			`INSERT INTO work_logs (phase_id, engineer_id, hours, logged_at) VALUES (?, ?, ?, ?)`,
			phaseID, engineerID, hours, time.Now().UTC(),
		); err != nil {
			return fmt.Errorf("insert work log: %w", err)
		}
		return nil
	})
}

// HasWorkLogs reports whether any work has been logged against the phase.
func (s *SQLite) HasWorkLogs(ctx context.Context, phaseID int64) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM work_logs WHERE phase_id = ? LIMIT 1`, phaseID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check work logs: %w", err)
	}
	return true, nil
}

// ActiveAssignments maps each engineer to the distinct in_progress phases of
// the project they have logged work against.
func (s *SQLite) ActiveAssignments(ctx context.Context, projectID int64) (optimizer.Assignments, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT w.engineer_id, w.phase_id
		FROM work_logs w
		JOIN phases p ON p.id = w.phase_id
		WHERE p.project_id = ? AND p.status = 'in_progress'
		ORDER BY w.engineer_id, w.phase_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	out := make(optimizer.Assignments)
	for rows.Next() {
		var engineer string
		var phaseID int64
		if err := rows.Scan(&engineer, &phaseID); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out[engineer] = append(out[engineer], phaseID)
	}
	return out, rows.Err()
}
