package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// MaintenanceRecord mirrors the 'manutencoes' table. Date is kept as a
// YYYY-MM-DD string on the wire; the column is a DATE.
type MaintenanceRecord struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"-"`
	TruckID     uint64    `json:"caminhao_id"`
	Description string    `json:"descricao"`
	Type        string    `json:"tipo_manutencao"`
	TotalCost   float64   `json:"valor_total"`
	KM          float64   `json:"km_manutencao"`
	Date        string    `json:"data_manutencao"`
	CreatedAt   time.Time `json:"created_at"`
	TruckPlate  string    `json:"placa,omitempty"`
	TruckModel  string    `json:"modelo,omitempty"`
}

type MaintenanceRepo struct{ db *sql.DB }

func NewMaintenanceRepo(db *sql.DB) *MaintenanceRepo { return &MaintenanceRepo{db: db} }

const maintenanceJoined = `n.id, n.user_id, n.caminhao_id, n.descricao, n.tipo_manutencao,
	n.valor_total, n.km_manutencao, n.data_manutencao, n.created_at, c.placa, c.modelo
	FROM manutencoes n
	JOIN caminhoes c ON c.id = n.caminhao_id`

func scanMaintenance(m *MaintenanceRecord, scan func(dest ...any) error) error {
	var date time.Time
	if err := scan(&m.ID, &m.UserID, &m.TruckID, &m.Description, &m.Type,
		&m.TotalCost, &m.KM, &date, &m.CreatedAt, &m.TruckPlate, &m.TruckModel); err != nil {
		return err
	}
	m.Date = date.Format("2006-01-02")
	return nil
}

// Create inserts a maintenance record. The truck ownership check and
// mileage bump happen in the handler around this call.
func (r *MaintenanceRepo) Create(ctx context.Context, m *MaintenanceRecord) error {
	const q = `INSERT INTO manutencoes (user_id, caminhao_id, descricao, tipo_manutencao, valor_total, km_manutencao, data_manutencao)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.UserID, m.TruckID, m.Description, m.Type, m.TotalCost, m.KM, m.Date)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByIDAndUser(ctx, uint64(id), m.UserID)
	if err != nil {
		return err
	}
	*m = *created
	return nil
}

// ListByUser returns all of the user's maintenance records, most recent
// maintenance date first, with joined truck fields.
func (r *MaintenanceRepo) ListByUser(ctx context.Context, userID uint64) ([]*MaintenanceRecord, error) {
	q := "SELECT " + maintenanceJoined + " WHERE n.user_id = ? ORDER BY n.data_manutencao DESC"
	return r.list(ctx, q, userID)
}

// ListByTruck returns the user's maintenance records for one truck.
func (r *MaintenanceRepo) ListByTruck(ctx context.Context, truckID, userID uint64) ([]*MaintenanceRecord, error) {
	q := "SELECT " + maintenanceJoined + " WHERE n.caminhao_id = ? AND n.user_id = ? ORDER BY n.data_manutencao DESC"
	return r.list(ctx, q, truckID, userID)
}

// GetByIDAndUser fetches one maintenance record, scoped by owner.
func (r *MaintenanceRepo) GetByIDAndUser(ctx context.Context, id, userID uint64) (*MaintenanceRecord, error) {
	q := "SELECT " + maintenanceJoined + " WHERE n.id = ? AND n.user_id = ?"
	var m MaintenanceRecord
	row := r.db.QueryRowContext(ctx, q, id, userID)
	if err := scanMaintenance(&m, row.Scan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMaintenanceNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MaintenanceRepo) list(ctx context.Context, q string, args ...any) ([]*MaintenanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*MaintenanceRecord
	for rows.Next() {
		m := new(MaintenanceRecord)
		if err := scanMaintenance(m, rows.Scan); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
