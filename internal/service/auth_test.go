package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/frotalog/fleet-api/internal/apperr"
	"github.com/frotalog/fleet-api/internal/auth"
	"github.com/frotalog/fleet-api/internal/repository"
)

// ----- in-memory fakes -----

type fakeUserStore struct {
	users  map[uint64]*repository.User
	nextID uint64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]*repository.User{}, nextID: 1}
}

func (f *fakeUserStore) Create(_ context.Context, u *repository.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = f.nextID
	f.nextID++
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (*repository.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, u *repository.User) error {
	stored, ok := f.users[u.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	stored.Name = u.Name
	stored.Company = u.Company
	stored.Phone = u.Phone
	stored.AvatarURL = u.AvatarURL
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uint64, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeSessionStore struct {
	sessions []*repository.Session
	nextID   uint64
}

func newFakeSessionStore() *fakeSessionStore { return &fakeSessionStore{nextID: 1} }

func (f *fakeSessionStore) Create(_ context.Context, s *repository.Session) error {
	s.ID = f.nextID
	f.nextID++
	cp := *s
	f.sessions = append(f.sessions, &cp)
	return nil
}

func (f *fakeSessionStore) FindByTokenAndUser(_ context.Context, token string, userID uint64) (*repository.Session, error) {
	for _, s := range f.sessions {
		if s.RefreshToken == token && s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (f *fakeSessionStore) DeleteByToken(_ context.Context, token string) error {
	kept := f.sessions[:0]
	for _, s := range f.sessions {
		if s.RefreshToken != token {
			kept = append(kept, s)
		}
	}
	f.sessions = kept
	return nil
}

func (f *fakeSessionStore) DeleteAllForUser(_ context.Context, userID uint64) error {
	kept := f.sessions[:0]
	for _, s := range f.sessions {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	f.sessions = kept
	return nil
}

// setExpiry rewrites the stored expiry for a token, simulating clock advance.
func (f *fakeSessionStore) setExpiry(token string, at time.Time) {
	for _, s := range f.sessions {
		if s.RefreshToken == token {
			s.ExpiresAt = at
		}
	}
}

func newTestAuth() (*Auth, *fakeUserStore, *fakeSessionStore) {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	tokens := auth.NewTokenIssuer("service-test-secret", time.Hour, 24*time.Hour)
	return NewAuth(users, sessions, tokens, 24*time.Hour, bcrypt.MinCost), users, sessions
}

var meta = ClientMeta{IP: "203.0.113.9", UserAgent: "go-test"}

func register(t *testing.T, svc *Auth, email string) *AuthResult {
	t.Helper()
	res, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana Souza",
		Email:    email,
		Password: "s3cret!",
		Company:  "Transportes Souza",
	}, meta)
	require.NoError(t, err)
	return res
}

// ----- tests -----

func TestRegisterCreatesUserAndSession(t *testing.T) {
	svc, users, sessions := newTestAuth()

	res := register(t, svc, "Ana@Example.com")

	assert.NotZero(t, res.User.ID)
	assert.Equal(t, "ana@example.com", res.User.Email, "email is normalized")
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.NotEqual(t, res.AccessToken, res.RefreshToken)

	stored := users.users[res.User.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret!", stored.PasswordHash)

	require.Len(t, sessions.sessions, 1)
	sess := sessions.sessions[0]
	assert.Equal(t, res.RefreshToken, sess.RefreshToken, "refresh token stored verbatim")
	assert.Equal(t, meta.IP, sess.IPAddress)
	assert.Equal(t, meta.UserAgent, sess.UserAgent)
	assert.True(t, sess.ExpiresAt.After(time.Now().UTC()))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuth()
	register(t, svc, "ana@example.com")

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Other", Email: "ANA@EXAMPLE.COM", Password: "different",
	}, meta)
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Equal(t, "email already registered", apperr.MessageOf(err))
}

func TestLogin(t *testing.T) {
	svc, _, sessions := newTestAuth()
	register(t, svc, "ana@example.com")

	res, err := svc.Login(context.Background(), "ana@example.com", "s3cret!", meta)
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Len(t, sessions.sessions, 2, "login adds a session, it does not replace")
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _, _ := newTestAuth()
	register(t, svc, "ana@example.com")

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "s3cret!", meta)
	_, errWrongPw := svc.Login(context.Background(), "ana@example.com", "wrong", meta)

	require.Error(t, errUnknown)
	require.Error(t, errWrongPw)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(errUnknown))
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(errWrongPw))
	assert.Equal(t, apperr.MessageOf(errUnknown), apperr.MessageOf(errWrongPw),
		"unknown email and wrong password must be indistinguishable")
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	svc, _, sessions := newTestAuth()
	res := register(t, svc, "ana@example.com")

	access, err := svc.Refresh(context.Background(), res.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)

	// No rotation: the same refresh token keeps working.
	_, err = svc.Refresh(context.Background(), res.RefreshToken)
	require.NoError(t, err)
	assert.Len(t, sessions.sessions, 1)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _ := newTestAuth()
	res := register(t, svc, "ana@example.com")

	_, err := svc.Refresh(context.Background(), res.AccessToken)
	require.Error(t, err)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
	assert.Equal(t, "invalid refresh token", apperr.MessageOf(err))
}

func TestRefreshRejectsUnknownSession(t *testing.T) {
	svc, _, sessions := newTestAuth()
	res := register(t, svc, "ana@example.com")

	// Token is cryptographically fine but its session row is gone.
	require.NoError(t, sessions.DeleteByToken(context.Background(), res.RefreshToken))

	_, err := svc.Refresh(context.Background(), res.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "invalid session", apperr.MessageOf(err))
}

func TestRefreshExpiredSessionIsLazilyDeleted(t *testing.T) {
	svc, _, sessions := newTestAuth()
	res := register(t, svc, "ana@example.com")

	sessions.setExpiry(res.RefreshToken, time.Now().UTC().Add(-time.Minute))

	_, err := svc.Refresh(context.Background(), res.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "session expired, please log in again", apperr.MessageOf(err))
	assert.Empty(t, sessions.sessions, "expired session is deleted when touched")
}

func TestLogout(t *testing.T) {
	svc, _, sessions := newTestAuth()
	res := register(t, svc, "ana@example.com")

	msg, err := svc.Logout(context.Background(), res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "logout successful", msg)
	assert.Empty(t, sessions.sessions)

	// Idempotent: repeating, or passing garbage, still succeeds.
	msg, err = svc.Logout(context.Background(), res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "logout successful", msg)

	msg, err = svc.Logout(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "logout successful", msg)
}

func TestProfileNotFound(t *testing.T) {
	svc, _, _ := newTestAuth()
	_, err := svc.Profile(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, users, _ := newTestAuth()
	res := register(t, svc, "ana@example.com")

	newName := "Ana S. Lima"
	avatar := "https://cdn.example.com/a.png"
	u, err := svc.UpdateProfile(context.Background(), res.User.ID, ProfileUpdate{
		Name:      &newName,
		AvatarURL: &avatar,
	})
	require.NoError(t, err)
	assert.Equal(t, newName, u.Name)
	assert.Equal(t, avatar, u.AvatarURL)
	assert.Equal(t, "Transportes Souza", u.Company, "omitted fields keep their value")

	stored := users.users[res.User.ID]
	assert.Equal(t, newName, stored.Name)
}

func TestChangePassword(t *testing.T) {
	svc, _, sessions := newTestAuth()
	res := register(t, svc, "ana@example.com")
	// A second device.
	_, err := svc.Login(context.Background(), "ana@example.com", "s3cret!", meta)
	require.NoError(t, err)
	require.Len(t, sessions.sessions, 2)

	msg, err := svc.ChangePassword(context.Background(), res.User.ID, "s3cret!", "n3w-s3cret")
	require.NoError(t, err)
	assert.Equal(t, "password changed successfully, please log in again", msg)
	assert.Empty(t, sessions.sessions, "all sessions revoked")

	// Old refresh token's session is gone even though the JWT is unexpired.
	_, err = svc.Refresh(context.Background(), res.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "invalid session", apperr.MessageOf(err))

	// Old password no longer works, new one does.
	_, err = svc.Login(context.Background(), "ana@example.com", "s3cret!", meta)
	require.Error(t, err)
	_, err = svc.Login(context.Background(), "ana@example.com", "n3w-s3cret", meta)
	require.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	svc, _, sessions := newTestAuth()
	res := register(t, svc, "ana@example.com")

	_, err := svc.ChangePassword(context.Background(), res.User.ID, "wrong", "n3w-s3cret")
	require.Error(t, err)
	assert.Equal(t, apperr.BadRequest, apperr.KindOf(err))
	assert.Equal(t, "current password incorrect", apperr.MessageOf(err))
	assert.Len(t, sessions.sessions, 1, "sessions untouched on failure")
}
