// Package session keeps per-browser-session key/value slots for the preview
// server. A slot is the server-side stand-in for a tab's sessionStorage.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ziadkadry99/sidenav/internal/db"
	"github.com/ziadkadry99/sidenav/internal/sidebar"
)

const timeLayout = "2006-01-02 15:04:05"

// Store provides slot operations backed by the session_slots table.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Get returns the value stored under key for the session.
func (s *Store) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_slots WHERE session_id = ? AND key = ?`,
		sessionID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading slot %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key for the session, replacing any earlier value.
func (s *Store) Set(ctx context.Context, sessionID, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_slots (session_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		sessionID, key, value, s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("writing slot %s: %w", key, err)
	}
	return nil
}

// Delete removes key for the session. Removing a missing key is not an error.
func (s *Store) Delete(ctx context.Context, sessionID, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_slots WHERE session_id = ? AND key = ?`,
		sessionID, key)
	if err != nil {
		return fmt.Errorf("deleting slot %s: %w", key, err)
	}
	return nil
}

// PruneBefore deletes every slot last written before t and returns how many
// were removed.
func (s *Store) PruneBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM session_slots WHERE updated_at < ?`,
		t.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("pruning slots: %w", err)
	}
	return res.RowsAffected()
}

// Scope returns the slots of one session as sidebar storage. Calls made
// through it use ctx.
func (s *Store) Scope(ctx context.Context, sessionID string) sidebar.Storage {
	return &scoped{store: s, ctx: ctx, id: sessionID}
}

type scoped struct {
	store *Store
	ctx   context.Context
	id    string
}

func (sc *scoped) Get(key string) (string, bool, error) {
	return sc.store.Get(sc.ctx, sc.id, key)
}

func (sc *scoped) Set(key, value string) error {
	return sc.store.Set(sc.ctx, sc.id, key, value)
}

func (sc *scoped) Delete(key string) error {
	return sc.store.Delete(sc.ctx, sc.id, key)
}
