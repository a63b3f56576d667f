// Package service holds the auth orchestration and the pure report
// helpers. The auth service is the only place that decides which error
// kind a flow fails with; handlers just translate kinds to status codes.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/frotalog/fleet-api/internal/apperr"
	"github.com/frotalog/fleet-api/internal/auth"
	"github.com/frotalog/fleet-api/internal/repository"
)

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, u *repository.User) error
	GetByEmail(ctx context.Context, email string) (*repository.User, error)
	GetByID(ctx context.Context, id uint64) (*repository.User, error)
	UpdateProfile(ctx context.Context, u *repository.User) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
}

// SessionStore is the slice of the session repository the auth service needs.
type SessionStore interface {
	Create(ctx context.Context, s *repository.Session) error
	FindByTokenAndUser(ctx context.Context, token string, userID uint64) (*repository.Session, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// ClientMeta carries informational request metadata stored on sessions.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Company  string
	Phone    string
}

// ProfileUpdate carries the whitelisted partial profile fields. Nil means
// "leave unchanged". Email and password cannot travel through this path.
type ProfileUpdate struct {
	Name      *string
	Company   *string
	Phone     *string
	AvatarURL *string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User         *repository.User
	AccessToken  string
	RefreshToken string
}

// Auth implements registration, login, token refresh, logout and profile
// management as guarded sequences over the stores, hasher and issuer.
type Auth struct {
	users      UserStore
	sessions   SessionStore
	tokens     *auth.TokenIssuer
	refreshTTL time.Duration
	bcryptCost int
}

func NewAuth(users UserStore, sessions SessionStore, tokens *auth.TokenIssuer, refreshTTL time.Duration, bcryptCost int) *Auth {
	return &Auth{users: users, sessions: sessions, tokens: tokens, refreshTTL: refreshTTL, bcryptCost: bcryptCost}
}

// Register creates a user and immediately opens a session for it. The
// email is normalized before the uniqueness guard so "X@Y.com" and
// "x@y.com" collide.
func (s *Auth) Register(ctx context.Context, in RegisterInput, meta ClientMeta) (*AuthResult, error) {
	email := repository.NormalizeEmail(in.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.New(apperr.Conflict, "email already registered")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, apperr.Wrap(apperr.Internal, "failed to create user", err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create user", err)
	}

	u := &repository.User{Name: in.Name, Email: email, PasswordHash: hash, Company: in.Company, Phone: in.Phone}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			// covers inactive accounts invisible to GetByEmail
			return nil, apperr.New(apperr.Conflict, "email already registered")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to create user", err)
	}

	return s.openSession(ctx, u, meta)
}

// Login verifies credentials and opens a new session. Unknown email,
// inactive account and wrong password are indistinguishable to the caller.
func (s *Auth) Login(ctx context.Context, email, password string, meta ClientMeta) (*AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, repository.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.New(apperr.Unauthorized, "invalid credentials")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to log in", err)
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return nil, apperr.New(apperr.Unauthorized, "invalid credentials")
	}
	return s.openSession(ctx, u, meta)
}

// openSession issues an access/refresh pair and persists the refresh token
// as a session row. Sessions are additive: each login or registration
// creates its own row, so a user may hold several valid refresh tokens at
// once (one per device).
func (s *Auth) openSession(ctx context.Context, u *repository.User, meta ClientMeta) (*AuthResult, error) {
	access, err := s.tokens.IssueAccessToken(u.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to issue token", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(u.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to issue token", err)
	}
	sess := &repository.Session{
		UserID:       u.ID,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().UTC().Add(s.refreshTTL),
		IPAddress:    meta.IP,
		UserAgent:    meta.UserAgent,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create session", err)
	}
	return &AuthResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token is NOT rotated: it stays valid until its own expiry,
// logout or a password change. A session found expired is deleted on the
// spot (lazy cleanup) before the caller is rejected.
func (s *Auth) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims := s.tokens.Verify(refreshToken)
	if claims == nil || !claims.IsRefresh() {
		return "", apperr.New(apperr.Unauthorized, "invalid refresh token")
	}

	sess, err := s.sessions.FindByTokenAndUser(ctx, refreshToken, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return "", apperr.New(apperr.Unauthorized, "invalid session")
		}
		return "", apperr.Wrap(apperr.Internal, "failed to refresh token", err)
	}

	if sess.ExpiresAt.Before(time.Now().UTC()) {
		_ = s.sessions.DeleteByToken(ctx, refreshToken)
		return "", apperr.New(apperr.Unauthorized, "session expired, please log in again")
	}

	access, err := s.tokens.IssueAccessToken(claims.UserID)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to refresh token", err)
	}
	return access, nil
}

// Logout revokes the supplied refresh token's session. It always succeeds
// with the same message: revoking a missing or already-revoked token is
// not an error, and the token itself is never authorization-checked.
func (s *Auth) Logout(ctx context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) != "" {
		if err := s.sessions.DeleteByToken(ctx, refreshToken); err != nil {
			return "", apperr.Wrap(apperr.Internal, "failed to log out", err)
		}
	}
	return "logout successful", nil
}

// Profile returns the user record for the authenticated id.
func (s *Auth) Profile(ctx context.Context, userID uint64) (*repository.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to load profile", err)
	}
	return u, nil
}

// UpdateProfile merges the supplied partial fields into the user row and
// stamps updated_at.
func (s *Auth) UpdateProfile(ctx context.Context, userID uint64, in ProfileUpdate) (*repository.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Company != nil {
		u.Company = *in.Company
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.AvatarURL != nil {
		u.AvatarURL = *in.AvatarURL
	}
	if err := s.users.UpdateProfile(ctx, u); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to update profile", err)
	}
	return u, nil
}

// ChangePassword verifies the current password, stores the new hash and
// deletes every session for the user. The old refresh tokens remain
// cryptographically valid but their sessions are gone, so refresh fails
// everywhere and every device must log in again.
func (s *Auth) ChangePassword(ctx context.Context, userID uint64, current, newPassword string) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperr.New(apperr.NotFound, "user not found")
		}
		return "", apperr.Wrap(apperr.Internal, "failed to change password", err)
	}
	if !auth.VerifyPassword(u.PasswordHash, current) {
		return "", apperr.New(apperr.BadRequest, "current password incorrect")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to change password", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to change password", err)
	}
	if err := s.sessions.DeleteAllForUser(ctx, userID); err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to change password", err)
	}
	return "password changed successfully, please log in again", nil
}
