package eventstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists command entries in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) a SQLite command log at the given
// path. Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS commands (
		id TEXT PRIMARY KEY,
		connection_id TEXT NOT NULL,
		machine TEXT NOT NULL,
		kind TEXT NOT NULL,
		payload BLOB,
		received_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_commands_connection ON commands(connection_id, received_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one entry.
func (s *SQLiteStore) Append(ctx context.Context, entry Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO commands (id, connection_id, machine, kind, payload, received_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.ConnectionID, entry.Machine, entry.Kind, entry.Payload, entry.ReceivedAt)
	if err != nil {
		return fmt.Errorf("append command: %w", err)
	}
	return nil
}

// ByConnection returns a connection's entries, newest first.
func (s *SQLiteStore) ByConnection(ctx context.Context, connectionID string, limit int) ([]Entry, error) {
	query := `SELECT id, connection_id, machine, kind, payload, received_at
		FROM commands WHERE connection_id = ? ORDER BY received_at DESC, rowid DESC`
	args := []any{connectionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query commands: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ConnectionID, &e.Machine, &e.Kind, &e.Payload, &e.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan command: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
