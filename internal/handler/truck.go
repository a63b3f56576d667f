package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/frotalog/fleet-api/internal/apperr"
	"github.com/frotalog/fleet-api/internal/repository"
)

// TruckHandler exposes the tenant-scoped truck CRUD endpoints.
type TruckHandler struct {
	Trucks *repository.TruckRepo
}

func NewTruckHandler(trucks *repository.TruckRepo) *TruckHandler {
	return &TruckHandler{Trucks: trucks}
}

type truckReq struct {
	Plate            *string  `json:"placa"`
	Model            *string  `json:"modelo"`
	Year             *int     `json:"ano"`
	CurrentKM        *float64 `json:"km_atual"`
	SiloCapacityTons *float64 `json:"capacidade_silo_ton"`
}

// apply merges the request into a truck record and validates the result.
func (r *truckReq) apply(t *repository.Truck) error {
	if r.Plate != nil {
		t.Plate = strings.ToUpper(strings.TrimSpace(*r.Plate))
	}
	if r.Model != nil {
		t.Model = strings.TrimSpace(*r.Model)
	}
	if r.Year != nil {
		t.Year = *r.Year
	}
	if r.CurrentKM != nil {
		t.CurrentKM = *r.CurrentKM
	}
	if r.SiloCapacityTons != nil {
		t.SiloCapacityTons = *r.SiloCapacityTons
	}

	if !plateRegex.MatchString(t.Plate) {
		return badRequest("invalid license plate format")
	}
	if n := utf8.RuneCountInString(t.Model); n < 2 || n > 100 {
		return badRequest("modelo must be between 2 and 100 characters")
	}
	if t.Year != 0 && t.Year < 1990 {
		return badRequest("ano must be 1990 or later")
	}
	if t.CurrentKM < 0 {
		return badRequest("km_atual cannot be negative")
	}
	if t.SiloCapacityTons < 0 {
		return badRequest("capacidade_silo_ton cannot be negative")
	}
	return nil
}

// List handles GET /api/caminhoes.
func (h *TruckHandler) List(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Trucks.ListByUser(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, items)
}

// Get handles GET /api/caminhoes/:id.
func (h *TruckHandler) Get(c echo.Context) error {
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

	t, err := h.Trucks.GetByIDAndUser(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrTruckNotFound) {
			return fail(c, apperr.New(apperr.NotFound, "truck not found"))
		}
		return fail(c, err)
	}
	return ok(c, http.StatusOK, t)
}

// Create handles POST /api/caminhoes.
func (h *TruckHandler) Create(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	var req truckReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.New(apperr.BadRequest, "invalid request body"))
	}
	t := &repository.Truck{UserID: uid}
	if err := req.apply(t); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Trucks.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrPlateExists) {
			return fail(c, apperr.New(apperr.Conflict, "license plate already registered"))
		}
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, t)
}

// Update handles PUT /api/caminhoes/:id.
func (h *TruckHandler) Update(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req truckReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.New(apperr.BadRequest, "invalid request body"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Trucks.GetByIDAndUser(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrTruckNotFound) {
			return fail(c, apperr.New(apperr.NotFound, "truck not found"))
		}
		return fail(c, err)
	}
	if err := req.apply(t); err != nil {
		return fail(c, err)
	}
	if err := h.Trucks.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrPlateExists) {
			return fail(c, apperr.New(apperr.Conflict, "license plate already registered"))
		}
		return fail(c, err)
	}
	return ok(c, http.StatusOK, t)
}

// Delete handles DELETE /api/caminhoes/:id.
func (h *TruckHandler) Delete(c echo.Context) error {
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

	if err := h.Trucks.Delete(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrTruckNotFound) {
			return fail(c, apperr.New(apperr.NotFound, "truck not found"))
		}
		return fail(c, err)
	}
	return okMessage(c, "truck deleted successfully")
}
