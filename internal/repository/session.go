package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Session mirrors the 'user_sessions' table: one row per issued refresh
// token. The token string is stored verbatim and treated as an opaque
// credential; ip/user-agent are informational only and play no part in
// authorization decisions.
type Session struct {
	ID           uint64
	UserID       uint64
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	IPAddress    string
	UserAgent    string
}

type SessionRepo struct{ db *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// Create inserts a session row for a freshly issued refresh token.
func (r *SessionRepo) Create(ctx context.Context, s *Session) error {
	const q = `INSERT INTO user_sessions (user_id, refresh_token, expires_at, ip_address, user_agent)
	           VALUES (?, ?, ?, NULLIF(?,''), NULLIF(?,''))`
	res, err := r.db.ExecContext(ctx, q, s.UserID, s.RefreshToken, s.ExpiresAt, s.IPAddress, s.UserAgent)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// FindByTokenAndUser looks up a session by exact token and user match.
// It does NOT filter on expiry; the caller checks ExpiresAt itself so
// expired rows can be purged lazily when touched.
func (r *SessionRepo) FindByTokenAndUser(ctx context.Context, token string, userID uint64) (*Session, error) {
	const q = `SELECT id, user_id, refresh_token, expires_at, created_at,
	                  COALESCE(ip_address,''), COALESCE(user_agent,'')
	           FROM user_sessions WHERE refresh_token = ? AND user_id = ? LIMIT 1`
	var s Session
	err := r.db.QueryRowContext(ctx, q, token, userID).Scan(
		&s.ID, &s.UserID, &s.RefreshToken, &s.ExpiresAt, &s.CreatedAt, &s.IPAddress, &s.UserAgent)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// DeleteByToken removes the session holding the given refresh token.
// Deleting a token that no longer exists is not an error.
func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM user_sessions WHERE refresh_token = ?", token)
	return err
}

// DeleteAllForUser removes every session belonging to the user. Used by
// password change to force re-login on all devices.
func (r *SessionRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM user_sessions WHERE user_id = ?", userID)
	return err
}
