package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a persisted session does not exist.
var ErrNotFound = errors.New("session not found")

// Open opens the session database at the given path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates the sessions table. Idempotent.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		doc        TEXT NOT NULL,
		state      TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`)
	return err
}

// Repo persists session state as JSON rows.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Save upserts a session.
func (r *Repo) Save(ctx context.Context, s *State) error {
	blob, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, doc, state, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, state = excluded.state, updated_at = excluded.updated_at`,
		s.ID, s.Doc, string(blob), s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// Load reads one session by id.
func (r *Repo) Load(ctx context.Context, id string) (*State, error) {
	var blob string
	err := r.db.QueryRowContext(ctx,
		"SELECT state FROM sessions WHERE id = ?", id,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var s State
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

// LoadAll reads every persisted session, newest first.
func (r *Repo) LoadAll(ctx context.Context) ([]*State, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT state FROM sessions ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	defer rows.Close()

	var out []*State
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		var s State
		if err := json.Unmarshal([]byte(blob), &s); err != nil {
			continue // skip rows written by older builds
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Delete removes a persisted session.
func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
