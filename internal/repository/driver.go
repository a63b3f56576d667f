package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Driver mirrors the 'motoristas' table. CPF is unique per owning user.
type Driver struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"-"`
	Name      string    `json:"nome"`
	CPF       string    `json:"cpf"`
	Phone     string    `json:"telefone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type DriverRepo struct{ db *sql.DB }

func NewDriverRepo(db *sql.DB) *DriverRepo { return &DriverRepo{db: db} }

const driverColumns = `id, user_id, nome, cpf, COALESCE(telefone,''), created_at, updated_at`

func scanDriver(row *sql.Row) (*Driver, error) {
	var d Driver
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.CPF, &d.Phone, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Create inserts a driver for the owning user. A duplicate CPF within the
// same tenant returns ErrCPFExists.
func (r *DriverRepo) Create(ctx context.Context, d *Driver) error {
	const q = `INSERT INTO motoristas (user_id, nome, cpf, telefone)
	           VALUES (?, ?, ?, NULLIF(?,''))`
	res, err := r.db.ExecContext(ctx, q, d.UserID, d.Name, d.CPF, d.Phone)
	if err != nil {
		if isDuplicate(err) {
			return ErrCPFExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByIDAndUser(ctx, uint64(id), d.UserID)
	if err != nil {
		return err
	}
	*d = *created
	return nil
}

// ListByUser returns the user's drivers ordered by name.
func (r *DriverRepo) ListByUser(ctx context.Context, userID uint64) ([]*Driver, error) {
	q := "SELECT " + driverColumns + " FROM motoristas WHERE user_id = ? ORDER BY nome ASC"
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Driver
	for rows.Next() {
		d := new(Driver)
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.CPF, &d.Phone, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByIDAndUser fetches a driver only if it belongs to the user.
func (r *DriverRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*Driver, error) {
	q := "SELECT " + driverColumns + " FROM motoristas WHERE id = ? AND user_id = ?"
	return scanDriver(r.db.QueryRowContext(ctx, q, id, userID))
}

// Update rewrites the driver columns, scoped by owner.
func (r *DriverRepo) Update(ctx context.Context, d *Driver) error {
	const q = `UPDATE motoristas
	           SET nome = ?, cpf = ?, telefone = NULLIF(?,''), updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, q, d.Name, d.CPF, d.Phone, d.ID, d.UserID)
	if err != nil {
		if isDuplicate(err) {
			return ErrCPFExists
		}
		return err
	}
	updated, err := r.GetByIDAndUser(ctx, d.ID, d.UserID)
	if err != nil {
		return err
	}
	*d = *updated
	return nil
}

// Delete removes a driver, scoped by owner.
func (r *DriverRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM motoristas WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDriverNotFound
	}
	return nil
}
