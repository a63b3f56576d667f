package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// User mirrors the 'users' table. PasswordHash is excluded from JSON so a
// user record can be serialized directly without leaking the credential.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"nome"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Company      string    `json:"empresa,omitempty"`
	Phone        string    `json:"telefone,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	IsActive     bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// NormalizeEmail lowercases and trims an email address. Uniqueness in the
// users table is enforced on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const userColumns = `id, nome, email, password_hash,
	COALESCE(empresa,''), COALESCE(telefone,''), COALESCE(avatar_url,''),
	is_active, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Company, &u.Phone, &u.AvatarURL,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a user and reloads the row so the caller receives the
// generated id, active flag and timestamps. The password must already be
// hashed by the service layer; a duplicate email returns ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *User) error {
	const q = `INSERT INTO users (nome, email, password_hash, empresa, telefone)
	           VALUES (?, ?, ?, NULLIF(?,''), NULLIF(?,''))`
	res, err := r.db.ExecContext(ctx, q, u.Name, NormalizeEmail(u.Email), u.PasswordHash, u.Company, u.Phone)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

// GetByEmail fetches an active user by normalized email. Inactive accounts
// are invisible to this lookup so login treats them as unknown.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	q := "SELECT " + userColumns + " FROM users WHERE email = ? AND is_active = 1 LIMIT 1"
	return scanUser(r.db.QueryRowContext(ctx, q, NormalizeEmail(email)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*User, error) {
	q := "SELECT " + userColumns + " FROM users WHERE id = ? LIMIT 1"
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// UpdateProfile writes the whitelisted profile columns (name, company,
// phone, avatar) and stamps updated_at. Email and password never change
// through this path. The struct is reloaded afterwards.
func (r *UserRepo) UpdateProfile(ctx context.Context, u *User) error {
	const q = `UPDATE users
	           SET nome = ?, empresa = NULLIF(?,''), telefone = NULLIF(?,''),
	               avatar_url = NULLIF(?,''), updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, u.Name, u.Company, u.Phone, u.AvatarURL, u.ID); err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *updated
	return nil
}

// UpdatePassword replaces the stored hash and stamps updated_at.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	const q = "UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
