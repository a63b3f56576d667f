package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// FuelRecord mirrors the 'abastecimentos' table. List and single-record
// reads join the owning truck's plate/model and the driver's name so the
// dashboard can render rows without extra round trips.
type FuelRecord struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"-"`
	TruckID    uint64    `json:"caminhao_id"`
	DriverID   uint64    `json:"motorista_id"`
	KM         float64   `json:"km_registro"`
	Liters     float64   `json:"litros"`
	TotalCost  float64   `json:"valor_total"`
	Station    string    `json:"posto,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	TruckPlate string    `json:"placa,omitempty"`
	TruckModel string    `json:"modelo,omitempty"`
	DriverName string    `json:"motorista_nome,omitempty"`
}

type FuelRepo struct{ db *sql.DB }

func NewFuelRepo(db *sql.DB) *FuelRepo { return &FuelRepo{db: db} }

const fuelJoined = `a.id, a.user_id, a.caminhao_id, a.motorista_id, a.km_registro,
	a.litros, a.valor_total, COALESCE(a.posto,''), a.created_at,
	c.placa, c.modelo, m.nome
	FROM abastecimentos a
	JOIN caminhoes c ON c.id = a.caminhao_id
	JOIN motoristas m ON m.id = a.motorista_id`

// Create inserts a fuel record. Cross-entity checks (truck and driver
// ownership, mileage ordering) happen in the handler before this call.
func (r *FuelRepo) Create(ctx context.Context, f *FuelRecord) error {
	const q = `INSERT INTO abastecimentos (user_id, caminhao_id, motorista_id, km_registro, litros, valor_total, posto)
	           VALUES (?, ?, ?, ?, ?, ?, NULLIF(?,''))`
	res, err := r.db.ExecContext(ctx, q, f.UserID, f.TruckID, f.DriverID, f.KM, f.Liters, f.TotalCost, f.Station)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByIDAndUser(ctx, uint64(id), f.UserID)
	if err != nil {
		return err
	}
	*f = *created
	return nil
}

// ListByUser returns all of the user's fuel records, newest first, with
// joined truck and driver fields.
func (r *FuelRepo) ListByUser(ctx context.Context, userID uint64) ([]*FuelRecord, error) {
	q := "SELECT " + fuelJoined + " WHERE a.user_id = ? ORDER BY a.created_at DESC"
	return r.list(ctx, q, userID)
}

// ListByTruck returns the user's fuel records for one truck, newest first.
func (r *FuelRepo) ListByTruck(ctx context.Context, truckID, userID uint64) ([]*FuelRecord, error) {
	q := "SELECT " + fuelJoined + " WHERE a.caminhao_id = ? AND a.user_id = ? ORDER BY a.created_at DESC"
	return r.list(ctx, q, truckID, userID)
}

// GetByIDAndUser fetches one fuel record, scoped by owner.
func (r *FuelRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*FuelRecord, error) {
	q := "SELECT " + fuelJoined + " WHERE a.id = ? AND a.user_id = ?"
	var f FuelRecord
	err := r.db.QueryRowContext(ctx, q, id, userID).Scan(
		&f.ID, &f.UserID, &f.TruckID, &f.DriverID, &f.KM,
		&f.Liters, &f.TotalCost, &f.Station, &f.CreatedAt,
		&f.TruckPlate, &f.TruckModel, &f.DriverName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFuelRecordNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FuelRepo) list(ctx context.Context, q string, args ...any) ([]*FuelRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*FuelRecord
	for rows.Next() {
		f := new(FuelRecord)
		if err := rows.Scan(&f.ID, &f.UserID, &f.TruckID, &f.DriverID, &f.KM,
			&f.Liters, &f.TotalCost, &f.Station, &f.CreatedAt,
			&f.TruckPlate, &f.TruckModel, &f.DriverName); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
