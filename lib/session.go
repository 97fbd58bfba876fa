package lib

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var ErrSessionNotFound = errors.New("session not found")

// Postgres error code for a missing table.
const pqUndefinedTable = "42P01"

// Session is a saved editor state: the program text and the caret offset
// into it (in characters).
type Session struct {
	Name      string
	Source    string
	Caret     int
	UpdatedAt time.Time
}

// clampCaret keeps the caret inside the source, so a stale or corrupt caret
// falls back to a usable position.
func (s Session) clampCaret() Session {
	n := len([]rune(s.Source))
	if s.Caret < 0 {
		s.Caret = 0
	}
	if s.Caret > n {
		s.Caret = n
	}
	return s
}

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func OpenSessionStore(ctx context.Context, connectionString string) (*SessionStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return NewSessionStore(db), nil
}

func (s *SessionStore) Close() error {
	return s.db.Close()
}

func (s *SessionStore) Save(ctx context.Context, session Session) error {
	if session.Name == "" {
		return errors.New("Session name is required")
	}
	session = session.clampCaret()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (name, source, caret, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET source = EXCLUDED.source, caret = EXCLUDED.caret, updated_at = now()`,
		session.Name, session.Source, session.Caret)
	return explainDBError(err)
}

func (s *SessionStore) Load(ctx context.Context, name string) (Session, error) {
	session := Session{Name: name}
	err := s.db.QueryRowContext(ctx,
		"SELECT source, caret, updated_at FROM sessions WHERE name = $1", name,
	).Scan(&session.Source, &session.Caret, &session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: '%s'", ErrSessionNotFound, name)
	}
	if err != nil {
		return Session{}, explainDBError(err)
	}
	return session.clampCaret(), nil
}

func (s *SessionStore) List(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, source, caret, updated_at FROM sessions ORDER BY name")
	if err != nil {
		return nil, explainDBError(err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var session Session
		err := rows.Scan(&session.Name, &session.Source, &session.Caret, &session.UpdatedAt)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session.clampCaret())
	}
	return sessions, rows.Err()
}

func (s *SessionStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE name = $1", name)
	if err != nil {
		return explainDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: '%s'", ErrSessionNotFound, name)
	}
	return nil
}

func explainDBError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUndefinedTable {
		return fmt.Errorf("%w (has the database been migrated?)", err)
	}
	return err
}
