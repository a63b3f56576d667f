package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/frotalog/fleet-api/internal/apperr"
	"github.com/frotalog/fleet-api/internal/repository"
	"github.com/frotalog/fleet-api/internal/service"
)

// MaintenanceHandler exposes maintenance-record endpoints. Like fuel
// creation, recording a maintenance verifies truck ownership and bumps
// the odometer.
type MaintenanceHandler struct {
	Maintenance *repository.MaintenanceRepo
	Trucks      *repository.TruckRepo
}

func NewMaintenanceHandler(maintenance *repository.MaintenanceRepo, trucks *repository.TruckRepo) *MaintenanceHandler {
	return &MaintenanceHandler{Maintenance: maintenance, Trucks: trucks}
}

type maintenanceReq struct {
	TruckID     uint64  `json:"caminhao_id"`
	Description string  `json:"descricao"`
	Type        string  `json:"tipo_manutencao"`
	TotalCost   float64 `json:"valor_total"`
	KM          float64 `json:"km_manutencao"`
	Date        string  `json:"data_manutencao"`
}

func (r *maintenanceReq) Validate() error {
	if r.TruckID == 0 {
		return badRequest("invalid caminhao_id")
	}
	r.Description = strings.TrimSpace(r.Description)
	if n := utf8.RuneCountInString(r.Description); n < 3 || n > 500 {
		return badRequest("descricao must be between 3 and 500 characters")
	}
	if !maintenanceTypes[r.Type] {
		return badRequest("invalid tipo_manutencao")
	}
	if r.TotalCost <= 0 {
		return badRequest("valor_total must be positive")
	}
	if r.KM < 0 {
		return badRequest("km_manutencao cannot be negative")
	}
	if !dateRegex.MatchString(r.Date) {
		return badRequest("invalid data_manutencao format (use YYYY-MM-DD)")
	}
	return nil
}

// List handles GET /api/manutencoes.
func (h *MaintenanceHandler) List(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Maintenance.ListByUser(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, items)
}

// Get handles GET /api/manutencoes/:id.
func (h *MaintenanceHandler) Get(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	rec, err := h.Maintenance.GetByIDAndUser(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrMaintenanceNotFound) {
			return fail(c, apperr.New(apperr.NotFound, "maintenance record not found"))
		}
		return fail(c, err)
	}
	return ok(c, http.StatusOK, rec)
}

// ByTruck handles GET /api/manutencoes/truck/:truckId.
func (h *MaintenanceHandler) ByTruck(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	truckID, err := pathID(c, "truckId")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Maintenance.ListByTruck(ctx, truckID, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, items)
}

// Stats handles GET /api/manutencoes/truck/:truckId/stats.
func (h *MaintenanceHandler) Stats(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	truckID, err := pathID(c, "truckId")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	records, err := h.Maintenance.ListByTruck(ctx, truckID, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, service.MaintenanceSummary(records))
}

// Create handles POST /api/manutencoes.
func (h *MaintenanceHandler) Create(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	var req maintenanceReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.New(apperr.BadRequest, "invalid request body"))
	}
	if err := req.Validate(); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	truck, err := h.Trucks.GetByIDAndUser(ctx, req.TruckID, uid)
	if err != nil {
		if errors.Is(err, repository.ErrTruckNotFound) {
			return fail(c, apperr.New(apperr.NotFound, "truck not found"))
		}
		return fail(c, err)
	}
	if req.KM < truck.CurrentKM {
		return fail(c, apperr.New(apperr.BadRequest, "new mileage cannot be less than current mileage"))
	}

	rec := &repository.MaintenanceRecord{
		UserID:      uid,
		TruckID:     req.TruckID,
		Description: req.Description,
		Type:        req.Type,
		TotalCost:   req.TotalCost,
		KM:          req.KM,
		Date:        req.Date,
	}
	if err := h.Maintenance.Create(ctx, rec); err != nil {
		return fail(c, err)
	}
	if err := h.Trucks.SetMileage(ctx, truck.ID, uid, req.KM); err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, rec)
}
