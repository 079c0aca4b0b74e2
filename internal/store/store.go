// Package store provides SQLite-backed history of filter runs for ganttline.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fentz26/ganttline/internal/models"
)

// Store provides access to the ganttline history database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		source TEXT,
		pipeline TEXT,
		task_count INTEGER NOT NULL,
		tasks TEXT NOT NULL,
		generated_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		inputs_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		snapshot_id TEXT,
		details TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
	CREATE INDEX IF NOT EXISTS idx_decisions_snapshot_id ON decisions(snapshot_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- Snapshot Operations ---

// SaveSnapshot stores snap and assigns it an ID when it has none.
func (s *Store) SaveSnapshot(snap *models.Snapshot) (*models.SnapshotSummary, error) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	tasksJSON, err := json.Marshal(snap.Tasks)
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}

	summary := &models.SnapshotSummary{
		ID:        snap.ID,
		Source:    snap.Source,
		Pipeline:  snap.Pipeline,
		TaskCount: len(snap.Tasks),
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.Exec(
		`INSERT INTO snapshots (id, version, source, pipeline, task_count, tasks, generated_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Version, snap.Source, snap.Pipeline, summary.TaskCount, string(tasksJSON), snap.GeneratedAt, summary.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	return summary, nil
}

// GetSnapshot retrieves a snapshot by ID. It returns nil when none exists.
func (s *Store) GetSnapshot(id string) (*models.Snapshot, error) {
	return s.scanSnapshot(s.db.QueryRow(
		`SELECT id, version, source, pipeline, tasks, generated_at FROM snapshots WHERE id = ?`,
		id,
	))
}

// LatestSnapshot returns the most recently saved snapshot, or nil.
func (s *Store) LatestSnapshot() (*models.Snapshot, error) {
	return s.scanSnapshot(s.db.QueryRow(
		`SELECT id, version, source, pipeline, tasks, generated_at FROM snapshots ORDER BY rowid DESC LIMIT 1`,
	))
}

func (s *Store) scanSnapshot(row *sql.Row) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	var source, pipeline sql.NullString
	var tasksJSON string

	err := row.Scan(&snap.ID, &snap.Version, &source, &pipeline, &tasksJSON, &snap.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	snap.Source = source.String
	snap.Pipeline = pipeline.String
	if err := json.Unmarshal([]byte(tasksJSON), &snap.Tasks); err != nil {
		return nil, fmt.Errorf("unmarshal tasks: %w", err)
	}
	if snap.Tasks == nil {
		snap.Tasks = []models.TaskRecord{}
	}
	return snap, nil
}

// ListSnapshots returns summaries, newest first. limit <= 0 means no limit.
func (s *Store) ListSnapshots(limit int) ([]models.SnapshotSummary, error) {
	query := `SELECT id, source, pipeline, task_count, created_at FROM snapshots ORDER BY rowid DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.SnapshotSummary
	for rows.Next() {
		var sum models.SnapshotSummary
		var source, pipeline sql.NullString
		if err := rows.Scan(&sum.ID, &source, &pipeline, &sum.TaskCount, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		sum.Source = source.String
		sum.Pipeline = pipeline.String
		out = append(out, sum)
	}
	return out, rows.Err()
}

// --- Decision Operations ---

// WriteDecision writes an audit record of one filter run.
func (s *Store) WriteDecision(action, inputsHash, outcome, snapshotID, details string) (*models.Decision, error) {
	d := &models.Decision{
		ID:         uuid.New().String(),
		Action:     action,
		InputsHash: inputsHash,
		Outcome:    outcome,
		SnapshotID: snapshotID,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO decisions (id, action, inputs_hash, outcome, snapshot_id, details, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Action, d.InputsHash, d.Outcome, d.SnapshotID, d.Details, d.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert decision: %w", err)
	}
	return d, nil
}

// ListDecisions returns the decisions recorded for a snapshot, oldest first.
func (s *Store) ListDecisions(snapshotID string) ([]models.Decision, error) {
	rows, err := s.db.Query(
		`SELECT id, action, inputs_hash, outcome, snapshot_id, details, timestamp FROM decisions WHERE snapshot_id = ? ORDER BY rowid ASC`,
		snapshotID,
	)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []models.Decision
	for rows.Next() {
		var d models.Decision
		var snapID, details sql.NullString
		if err := rows.Scan(&d.ID, &d.Action, &d.InputsHash, &d.Outcome, &snapID, &details, &d.Timestamp); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.SnapshotID = snapID.String
		d.Details = details.String
		out = append(out, d)
	}
	return out, rows.Err()
}
