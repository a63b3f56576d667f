package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/frotalog/fleet-api/internal/apperr"
	"github.com/frotalog/fleet-api/internal/repository"
	"github.com/frotalog/fleet-api/internal/service"
)

// FuelHandler exposes fuel-record endpoints. Creating a record crosses
// into the truck and driver repositories for ownership checks and bumps
// the truck's odometer as a side effect.
type FuelHandler struct {
	Fuel    *repository.FuelRepo
	Trucks  *repository.TruckRepo
	Drivers *repository.DriverRepo
}

func NewFuelHandler(fuel *repository.FuelRepo, trucks *repository.TruckRepo, drivers *repository.DriverRepo) *FuelHandler {
	return &FuelHandler{Fuel: fuel, Trucks: trucks, Drivers: drivers}
}

type fuelReq struct {
	TruckID   uint64  `json:"caminhao_id"`
	DriverID  uint64  `json:"motorista_id"`
	KM        float64 `json:"km_registro"`
	Liters    float64 `json:"litros"`
	TotalCost float64 `json:"valor_total"`
	Station   string  `json:"posto"`
}

func (r *fuelReq) Validate() error {
	if r.TruckID == 0 {
		return badRequest("invalid caminhao_id")
	}
	if r.DriverID == 0 {
		return badRequest("invalid motorista_id")
	}
	if r.KM < 0 {
		return badRequest("km_registro cannot be negative")
	}
	if r.Liters <= 0 {
		return badRequest("litros must be positive")
	}
	if r.TotalCost <= 0 {
		return badRequest("valor_total must be positive")
	}
	r.Station = strings.TrimSpace(r.Station)
	if len(r.Station) > 200 {
		return badRequest("posto too long")
	}
	return nil
}

// List handles GET /api/abastecimentos.
func (h *FuelHandler) List(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Fuel.ListByUser(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, items)
}

// Get handles GET /api/abastecimentos/:id.
func (h *FuelHandler) Get(c echo.Context) error {
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

	rec, err := h.Fuel.GetByIDAndUser(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrFuelRecordNotFound) {
			return fail(c, apperr.New(apperr.NotFound, "fuel record not found"))
		}
		return fail(c, err)
	}
	return ok(c, http.StatusOK, rec)
}

// ByTruck handles GET /api/abastecimentos/truck/:truckId.
func (h *FuelHandler) ByTruck(c echo.Context) error {
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

	items, err := h.Fuel.ListByTruck(ctx, truckID, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, items)
}

// Consumption handles GET /api/abastecimentos/truck/:truckId/consumption.
func (h *FuelHandler) Consumption(c echo.Context) error {
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

	records, err := h.Fuel.ListByTruck(ctx, truckID, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, service.Consumption(records))
}

// Create handles POST /api/abastecimentos. The referenced truck and
// driver must belong to the same user, the odometer reading may not run
// backwards, and on success the truck's km_atual is updated to the new
// reading.
func (h *FuelHandler) Create(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	var req fuelReq
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
	if _, err := h.Drivers.GetByIDAndUser(ctx, req.DriverID, uid); err != nil {
		if errors.Is(err, repository.ErrDriverNotFound) {
			return fail(c, apperr.New(apperr.NotFound, "driver not found"))
		}
		return fail(c, err)
	}
	if req.KM < truck.CurrentKM {
		return fail(c, apperr.New(apperr.BadRequest, "new mileage cannot be less than current mileage"))
	}

	rec := &repository.FuelRecord{
		UserID:    uid,
		TruckID:   req.TruckID,
		DriverID:  req.DriverID,
		KM:        req.KM,
		Liters:    req.Liters,
		TotalCost: req.TotalCost,
		Station:   req.Station,
	}
	if err := h.Fuel.Create(ctx, rec); err != nil {
		return fail(c, err)
	}
	if err := h.Trucks.SetMileage(ctx, truck.ID, uid, req.KM); err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, rec)
}
