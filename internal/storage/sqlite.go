package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"fitness-chatter/internal/history"
)

// SQLiteStore keeps turns in a single table. seq records insertion order.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping db at %s: %w", path, err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS turns (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			turn_id TEXT NOT NULL UNIQUE,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			message TEXT NOT NULL,
			timestamp INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_turns_user_ts ON turns(user_id, timestamp, seq);
	`)
	if err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) History(ctx context.Context, userID string) ([]history.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, user_id, role, message, timestamp FROM turns WHERE user_id = ? ORDER BY timestamp, seq`,
		userID)
	if err != nil {
		return nil, history.Unavailable("query turns", err)
	}
	defer rows.Close()

	out := make([]history.Turn, 0)
	for rows.Next() {
		var (
			t    history.Turn
			role string
			ts   int64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &role, &t.Message, &ts); err != nil {
			return nil, history.Unavailable("scan turn", err)
		}
		t.Role = history.Role(role)
		t.Timestamp = unixNanoUTC(ts)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, history.Unavailable("iterate turns", err)
	}
	return out, nil
}

// Append inserts all turns in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, turns ...history.Turn) error {
	if err := history.Validate(turns); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return history.Unavailable("begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO turns (turn_id, user_id, role, message, timestamp) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return history.Unavailable("prepare insert", err)
	}
	defer stmt.Close()

	for _, t := range turns {
		if _, err := stmt.ExecContext(ctx, t.ID, t.UserID, string(t.Role), t.Message, t.Timestamp.UnixNano()); err != nil {
			return history.Unavailable("insert turn", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return history.Unavailable("commit", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
