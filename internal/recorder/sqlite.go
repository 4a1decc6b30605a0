package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the audit trail to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS import_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			batch_id   TEXT NOT NULL,
			source     TEXT,
			delimiter  TEXT,
			headers    TEXT,
			data_rows  INTEGER,
			added      INTEGER,
			updated    INTEGER,
			warnings   INTEGER,
			error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_import_ts ON import_events(timestamp)`,

		`CREATE TABLE IF NOT EXISTS sync_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			cycle_id   TEXT NOT NULL,
			state      TEXT NOT NULL,
			requested  INTEGER,
			updated    INTEGER,
			skipped    INTEGER,
			error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_ts ON sync_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordImport(evt *ImportEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO import_events
		(timestamp, batch_id, source, delimiter, headers, data_rows, added, updated, warnings, error)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.BatchID, evt.Source, evt.Delimiter,
		strings.Join(evt.Headers, " | "), evt.DataRows,
		evt.Added, evt.Updated, evt.Warnings, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecordSync(evt *SyncEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.Exec(`INSERT INTO sync_events
		(timestamp, cycle_id, state, requested, updated, skipped, error)
		VALUES (?,?,?,?,?,?,?)`,
		at.Unix(), evt.CycleID, evt.State,
		evt.Requested, evt.Updated, evt.Skipped, evt.Error,
	)
	return err
}

// RecentSyncs returns the latest sync events, newest first.
func (r *SQLiteRecorder) RecentSyncs(limit int) ([]SyncEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT timestamp, cycle_id, state, requested, updated, skipped, error
		FROM sync_events ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SyncEvent
	for rows.Next() {
		var (
			ts  int64
			evt SyncEvent
		)
		if err := rows.Scan(&ts, &evt.CycleID, &evt.State, &evt.Requested, &evt.Updated, &evt.Skipped, &evt.Error); err != nil {
			return nil, err
		}
		evt.At = time.Unix(ts, 0)
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
