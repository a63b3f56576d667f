package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Truck mirrors the 'caminhoes' table. The license plate is unique per
// owning user. JSON field names match the wire contract of the UI.
type Truck struct {
	ID               uint64    `json:"id"`
	UserID           uint64    `json:"-"`
	Plate            string    `json:"placa"`
	Model            string    `json:"modelo"`
	Year             int       `json:"ano,omitempty"`
	CurrentKM        float64   `json:"km_atual"`
	SiloCapacityTons float64   `json:"capacidade_silo_ton,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type TruckRepo struct{ db *sql.DB }

func NewTruckRepo(db *sql.DB) *TruckRepo { return &TruckRepo{db: db} }

const truckColumns = `id, user_id, placa, modelo, COALESCE(ano,0),
	COALESCE(km_atual,0), COALESCE(capacidade_silo_ton,0), created_at, updated_at`

func scanTruck(row *sql.Row) (*Truck, error) {
	var t Truck
	err := row.Scan(&t.ID, &t.UserID, &t.Plate, &t.Model, &t.Year,
		&t.CurrentKM, &t.SiloCapacityTons, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTruckNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts a truck for the owning user. A duplicate plate within the
// same tenant returns ErrPlateExists.
func (r *TruckRepo) Create(ctx context.Context, t *Truck) error {
	const q = `INSERT INTO caminhoes (user_id, placa, modelo, ano, km_atual, capacidade_silo_ton)
	           VALUES (?, ?, ?, NULLIF(?,0), ?, NULLIF(?,0))`
	res, err := r.db.ExecContext(ctx, q, t.UserID, t.Plate, t.Model, t.Year, t.CurrentKM, t.SiloCapacityTons)
	if err != nil {
		if isDuplicate(err) {
			return ErrPlateExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByIDAndUser(ctx, uint64(id), t.UserID)
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

// ListByUser returns the user's trucks, newest first.
func (r *TruckRepo) ListByUser(ctx context.Context, userID uint64) ([]*Truck, error) {
	q := "SELECT " + truckColumns + " FROM caminhoes WHERE user_id = ? ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Truck
	for rows.Next() {
		t := new(Truck)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Plate, &t.Model, &t.Year,
			&t.CurrentKM, &t.SiloCapacityTons, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByIDAndUser fetches a truck only if it belongs to the user.
func (r *TruckRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*Truck, error) {
	q := "SELECT " + truckColumns + " FROM caminhoes WHERE id = ? AND user_id = ?"
	return scanTruck(r.db.QueryRowContext(ctx, q, id, userID))
}

// Update rewrites the mutable truck columns, scoped by owner. The struct
// is reloaded so callers see fresh timestamps.
func (r *TruckRepo) Update(ctx context.Context, t *Truck) error {
	const q = `UPDATE caminhoes
	           SET placa = ?, modelo = ?, ano = NULLIF(?,0), km_atual = ?,
	               capacidade_silo_ton = NULLIF(?,0), updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, q, t.Plate, t.Model, t.Year, t.CurrentKM, t.SiloCapacityTons, t.ID, t.UserID)
	if err != nil {
		if isDuplicate(err) {
			return ErrPlateExists
		}
		return err
	}
	updated, err := r.GetByIDAndUser(ctx, t.ID, t.UserID)
	if err != nil {
		return err
	}
	*t = *updated
	return nil
}

// Delete removes a truck, scoped by owner.
func (r *TruckRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM caminhoes WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTruckNotFound
	}
	return nil
}

// SetMileage writes a new odometer value. Ordering against the current
// value is the caller's guard; this is the shared side effect of fuel and
// maintenance record creation.
func (r *TruckRepo) SetMileage(ctx context.Context, id, userID uint64, km float64) error {
	const q = `UPDATE caminhoes SET km_atual = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, q, km, id, userID)
	return err
}
