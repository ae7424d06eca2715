package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/lure/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS honeypot_sessions (
	session_id  TEXT PRIMARY KEY,
	state       JSONB NOT NULL,
	scam_type   TEXT NOT NULL DEFAULT 'unknown',
	turn_count  INTEGER NOT NULL DEFAULT 0,
	report_sent BOOLEAN NOT NULL DEFAULT false,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS honeypot_sessions_updated_at_idx ON honeypot_sessions (updated_at);
`

// EnsureSchema creates the snapshot table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// LoadSession returns the stored snapshot, or session.ErrNotFound.
func (s *Store) LoadSession(ctx context.Context, sessionID string) (*session.Record, error) {
	var state []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM honeypot_sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	var rec session.Record
	if err := json.Unmarshal(state, &rec); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	if !rec.Stage.Valid() {
		return nil, fmt.Errorf("decode session %s: invalid stage %q", sessionID, rec.Stage)
	}
	return &rec, nil
}

// SaveSession upserts the snapshot of rec.
func (s *Store) SaveSession(ctx context.Context, rec *session.Record) error {
	state, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", rec.SessionID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO honeypot_sessions (session_id, state, scam_type, turn_count, report_sent, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (session_id)
		DO UPDATE SET
			state = $2,
			scam_type = $3,
			turn_count = $4,
			report_sent = $5,
			updated_at = now()`,
		rec.SessionID, state, rec.ScamType, rec.TurnCount, rec.ReportSent,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.SessionID, err)
	}
	return nil
}

// PurgeSessions deletes snapshots idle since before cutoff.
func (s *Store) PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM honeypot_sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountSessions returns the number of stored snapshots and how many of them
// were reported.
func (s *Store) CountSessions(ctx context.Context) (total, reported int, err error) {
	err = s.pool.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE report_sent) FROM honeypot_sessions`,
	).Scan(&total, &reported)
	if err != nil {
		return 0, 0, fmt.Errorf("count sessions: %w", err)
	}
	return total, reported, nil
}
