package engine

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLitePersister snapshots the store into a single SQLite table, one JSON
// blob per collection, replaced inside a transaction on every Save. SQLite's
// own locking gives single-writer semantics across processes, which the
// plain file persister cannot offer.
type SQLitePersister struct {
	db *sql.DB
}

// NewSQLitePersister opens (and if needed initializes) the database file.
func NewSQLitePersister(path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		collection TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &SQLitePersister{db: db}, nil
}

// buckets maps collection names to their slice inside a snapshot, for both
// directions of the JSON blob conversion.
func buckets(state *Snapshot) map[string]any {
	return map[string]any{
		"users":         &state.Users,
		"attendance":    &state.Attendance,
		"breaks":        &state.Breaks,
		"tasks":         &state.Tasks,
		"notes":         &state.Notes,
		"incidents":     &state.Incidents,
		"permissions":   &state.Permissions,
		"announcements": &state.Announcements,
		"chat_messages": &state.ChatMessages,
		"daily_reports": &state.DailyReports,
		"activity_logs": &state.ActivityLogs,
	}
}

// Load reads every collection blob. Unknown collections are ignored and an
// undecodable blob empties that collection with a warning, mirroring the
// file persister's malformed-medium behavior.
func (p *SQLitePersister) Load() (*Snapshot, error) {
	rows, err := p.db.Query(`SELECT collection, payload FROM state`)
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	defer rows.Close()

	state := &Snapshot{}
	dest := buckets(state)
	for rows.Next() {
		var name string
		var payload []byte
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		target, ok := dest[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			log.Printf("Warning: could not decode collection %s, starting it empty: %v", name, err)
		}
	}
	return state, rows.Err()
}

// Save replaces every collection blob in one transaction.
func (p *SQLitePersister) Save(state *Snapshot) (retErr error) {
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for name, slice := range buckets(state) {
		payload, err := json.Marshal(slice)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO state (collection, payload) VALUES (?, ?)
			 ON CONFLICT(collection) DO UPDATE SET payload = excluded.payload`,
			name, payload,
		); err != nil {
			return fmt.Errorf("store %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying database.
func (p *SQLitePersister) Close() error { return p.db.Close() }
