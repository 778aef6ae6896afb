package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/spigell/ai-interviewer/internal/interview"
)

const schema = `
CREATE TABLE IF NOT EXISTS interview_session (
	session_id TEXT PRIMARY KEY,
	state TEXT NOT NULL,
	complete INTEGER NOT NULL DEFAULT 0,
	updated_ts TEXT NOT NULL
);
`

// SQLite persists sessions in a single-file database, which is what makes a
// Continue call survive a process restart between turns.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (and migrates) the database at the given path.
func NewSQLite(dsn string) (*SQLite, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("sqlite dsn is required")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, sessionID string) (*interview.State, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT state FROM interview_session WHERE session_id = ?",
		sessionID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", interview.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}

	var state interview.State
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}

	return &state, nil
}

func (s *SQLite) Put(ctx context.Context, state *interview.State) error {
	if state == nil || state.SessionID == "" {
		return errors.New("state with a session id is required")
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	complete := 0
	if state.InterviewComplete {
		complete = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO interview_session (session_id, state, complete, updated_ts)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			state = excluded.state,
			complete = excluded.complete,
			updated_ts = excluded.updated_ts`,
		state.SessionID, string(payload), complete, state.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return nil
}

func (s *SQLite) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM interview_session WHERE session_id = ?",
		sessionID,
	); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
