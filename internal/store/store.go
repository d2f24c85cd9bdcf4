// Package store is the SQLite persistence layer: phase rows, dependency
// edges, work logs, and the append-only audit trail. Lifecycle writes are
// compare-and-swap updates guarded by the expected status column and run in
// one transaction with their audit append, so a losing concurrent transition
// fails with ErrConflict instead of corrupting the unlock side effect.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound marks an unknown phase, edge, or project id.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a guarded write that lost a concurrent race: the row
	// existed but its status no longer matched the expected value.
	ErrConflict = errors.New("concurrent modification conflict")
)

// SQLite is the durable store. Safe for concurrent use; SQLite serializes
// writers and the busy timeout absorbs short lock contention.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS phases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		name TEXT NOT NULL,
		phase_order INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'not_started',
		planned_weeks REAL NOT NULL DEFAULT 1,
		predicted_hours REAL NOT NULL DEFAULT 0,
		actual_hours REAL NOT NULL DEFAULT 0,
		planned_start_date DATETIME,
		planned_end_date DATETIME,
		actual_start_date DATETIME,
		actual_end_date DATETIME,
		submitted_date DATETIME,
		approved_date DATETIME,
		warning_flag INTEGER NOT NULL DEFAULT 0,
		delay_reason TEXT NOT NULL DEFAULT 'none',
		early_access_granted INTEGER NOT NULL DEFAULT 0,
		early_access_status TEXT NOT NULL DEFAULT 'not_accessible',
		UNIQUE(project_id, phase_order)
	);

	CREATE TABLE IF NOT EXISTS dependency_edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL REFERENCES projects(id),
		predecessor_phase_id INTEGER NOT NULL REFERENCES phases(id),
		successor_phase_id INTEGER NOT NULL REFERENCES phases(id),
		dependency_type TEXT NOT NULL DEFAULT 'finish_to_start',
		lag_days REAL NOT NULL DEFAULT 0,
		weight_factor REAL NOT NULL DEFAULT 1.0,
		is_critical_path INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_edges_project ON dependency_edges(project_id);

	CREATE TABLE IF NOT EXISTS work_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		phase_id INTEGER NOT NULL REFERENCES phases(id),
		engineer_id TEXT NOT NULL,
		hours REAL NOT NULL,
		logged_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_work_logs_phase ON work_logs(phase_id);

	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		entity_type TEXT NOT NULL,
		entity_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// appendAudit inserts one immutable audit record within the caller's
// transaction.
func appendAudit(tx *sql.Tx, entityType string, entityID int64, action, actor, note string) error {
	_, err := tx.Exec(
		`INSERT INTO audit_log (id, entity_type, entity_id, action, actor_id, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), entityType, entityID, action, actor, note, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("append audit record: %w", err)
	}
	return nil
}

// AuditEntry is one immutable audit record.
type AuditEntry struct {
	ID         string
	EntityType string
	EntityID   int64
	Action     string
	ActorID    string
	Note       string
	CreatedAt  time.Time
}

// AuditTrail returns audit records for an entity, oldest first.
func (s *SQLite) AuditTrail(ctx context.Context, entityType string, entityID int64) ([]AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, entity_type, entity_id, action, actor_id, note, created_at
		 FROM audit_log WHERE entity_type = ? AND entity_id = ? ORDER BY created_at, id`,
		entityType, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.ActorID, &e.Note, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
