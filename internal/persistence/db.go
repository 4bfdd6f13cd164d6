// Package persistence provides the SQLite event journal and the compressed
// per-tick log.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-city/internal/engine"
	"github.com/talgya/mini-city/internal/notify"
	"github.com/talgya/mini-city/internal/world"
)

// DB wraps a SQLite connection holding the run journal.
type DB struct {
	conn  *sqlx.DB
	runID string
}

// Run is one simulation run recorded in the journal.
type Run struct {
	ID        string `db:"id" json:"id"`
	Seed      int64  `db:"seed" json:"seed"`
	StartedAt string `db:"started_at" json:"started_at"`
}

type eventRow struct {
	Tick        uint64 `db:"tick"`
	Kind        string `db:"kind"`
	X           int    `db:"x"`
	Y           int    `db:"y"`
	Description string `db:"description"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun records a new run and makes it the target of SaveEvents.
func (db *DB) StartRun(seed int64) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, seed, started_at) VALUES (?, ?, ?)",
		id, seed, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	db.runID = id
	return id, nil
}

// RunID returns the current run, or "" before StartRun.
func (db *DB) RunID() string { return db.runID }

// Runs lists recorded runs, newest first.
func (db *DB) Runs() ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs, "SELECT id, seed, started_at FROM runs ORDER BY started_at DESC, rowid DESC")
	return runs, err
}

// SaveEvents appends events to the current run.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	if db.runID == "" {
		return fmt.Errorf("save events: no run started")
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, tick, kind, x, y, description) VALUES (?, ?, ?, ?, ?, ?)",
			db.runID, e.Tick, string(e.Kind), e.At.X, e.At.Y, e.Description,
		)
		if err != nil {
			return fmt.Errorf("insert event at tick %d: %w", e.Tick, err)
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveSnapshot flushes pending events and records the tick and statistics.
func (db *DB) SaveSnapshot(sim *engine.Simulation) error {
	pending := sim.TakePending()
	if err := db.SaveEvents(pending); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_tick", fmt.Sprintf("%d", sim.CurrentTick())); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	stats, err := json.Marshal(sim.Snapshot())
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := db.SaveMeta("stats", string(stats)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Debug("journal saved", "events", len(pending), "tick", sim.CurrentTick())
	return nil
}

// RecentEvents returns the most recent N events of the current run, newest
// first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var rows []eventRow
	err := db.conn.Select(&rows,
		"SELECT tick, kind, x, y, description FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		db.runID, limit,
	)
	if err != nil {
		return nil, err
	}
	events := make([]engine.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, engine.Event{
			Tick:        r.Tick,
			Kind:        notify.Kind(r.Kind),
			At:          world.Pt(r.X, r.Y),
			Description: r.Description,
		})
	}
	return events, nil
}
