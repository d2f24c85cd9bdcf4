package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/marwanhelal/track-management-system-sub002/internal/depgraph"
)

// ListEdges returns a project's edges joined with phase names and orders,
// ordered by predecessor then successor order.
func (s *SQLite) ListEdges(ctx context.Context, projectID int64) ([]depgraph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.project_id, e.predecessor_phase_id, e.successor_phase_id,
		       e.dependency_type, e.lag_days, e.weight_factor, e.is_critical_path,
		       pred.name, succ.name, pred.phase_order, succ.phase_order
		FROM dependency_edges e
		JOIN phases pred ON pred.id = e.predecessor_phase_id
		JOIN phases succ ON succ.id = e.successor_phase_id
		WHERE e.project_id = ?
		ORDER BY pred.phase_order, succ.phase_order, e.id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var edges []depgraph.Edge
	for rows.Next() {
		var e depgraph.Edge
		if err := rows.Scan(
			&e.ID, &e.ProjectID, &e.PredecessorID, &e.SuccessorID,
			&e.Type, &e.LagDays, &e.Weight, &e.Critical,
			&e.PredecessorName, &e.SuccessorName, &e.PredecessorOrder, &e.SuccessorOrder,
		); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// InsertEdge persists one edge and its audit record.
func (s *SQLite) InsertEdge(ctx context.Context, e depgraph.Edge, actor string) (int64, error) {
	var edgeID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`INSERT INTO dependency_edges (project_id, predecessor_phase_id, successor_phase_id,
				dependency_type, lag_days, weight_factor, is_critical_path)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ProjectID, e.PredecessorID, e.SuccessorID, e.Type, e.LagDays, e.Weight, e.Critical,
		)
		if err != nil {
			return fmt.Errorf("insert edge: %w", err)
		}
		edgeID, err = res.LastInsertId()
		if err != nil {
			return err
		}
		note := fmt.Sprintf("%d -> %d (%s)", e.PredecessorID, e.SuccessorID, e.Type)
		return appendAudit(tx, "dependency_edge", edgeID, "created", actor, note)
	})
	if err != nil {
		return 0, err
	}
	return edgeID, nil
}

// DeleteEdge hard-deletes one edge and records the deletion.
func (s *SQLite) DeleteEdge(ctx context.Context, edgeID int64, actor string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM dependency_edges WHERE id = ?`, edgeID)
		if err != nil {
			return fmt.Errorf("delete edge %d: %w", edgeID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("edge %d: %w", edgeID, ErrNotFound)
		}
		return appendAudit(tx, "dependency_edge", edgeID, "deleted", actor, "")
	})
}

// SetCriticalEdges recomputes the critical-path flags wholesale: every edge of
// the project is cleared, then the given ids are set.
func (s *SQLite) SetCriticalEdges(ctx context.Context, projectID int64, edgeIDs []int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`UPDATE dependency_edges SET is_critical_path = 0 WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("clear critical flags: %w", err)
		}
		if len(edgeIDs) == 0 {
			return nil
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(edgeIDs)), ",")
		args := make([]any, 0, len(edgeIDs)+1)
		args = append(args, projectID)
		for _, id := range edgeIDs {
			args = append(args, id)
		}
		_, err := tx.Exec(
			`UPDATE dependency_edges SET is_critical_path = 1 WHERE project_id = ? AND id IN (`+placeholders+`)`,
			args...,
		)
		if err != nil {
			return fmt.Errorf("set critical flags: %w", err)
		}
		return nil
	})
}
