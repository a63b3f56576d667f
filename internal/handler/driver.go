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

// DriverHandler exposes the tenant-scoped driver CRUD endpoints.
type DriverHandler struct {
	Drivers *repository.DriverRepo
}

func NewDriverHandler(drivers *repository.DriverRepo) *DriverHandler {
	return &DriverHandler{Drivers: drivers}
}

type driverReq struct {
	Name  *string `json:"nome"`
	CPF   *string `json:"cpf"`
	Phone *string `json:"telefone"`
}

func (r *driverReq) apply(d *repository.Driver) error {
	if r.Name != nil {
		d.Name = strings.TrimSpace(*r.Name)
	}
	if r.CPF != nil {
		d.CPF = strings.TrimSpace(*r.CPF)
	}
	if r.Phone != nil {
		d.Phone = strings.TrimSpace(*r.Phone)
	}

	if n := utf8.RuneCountInString(d.Name); n < 3 || n > 100 {
		return badRequest("nome must be between 3 and 100 characters")
	}
	if !cpfRegex.MatchString(d.CPF) {
		return badRequest("invalid CPF format")
	}
	if len(d.Phone) > 20 {
		return badRequest("telefone too long")
	}
	return nil
}

// List handles GET /api/motoristas.
func (h *DriverHandler) List(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	items, err := h.Drivers.ListByUser(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, items)
}

// Get handles GET /api/motoristas/:id.
func (h *DriverHandler) Get(c echo.Context) error {
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

	d, err := h.Drivers.GetByIDAndUser(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrDriverNotFound) {
			return fail(c, apperr.New(apperr.NotFound, "driver not found"))
		}
		return fail(c, err)
	}
	return ok(c, http.StatusOK, d)
}

// Create handles POST /api/motoristas.
func (h *DriverHandler) Create(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	var req driverReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.New(apperr.BadRequest, "invalid request body"))
	}
	d := &repository.Driver{UserID: uid}
	if err := req.apply(d); err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Drivers.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrCPFExists) {
			return fail(c, apperr.New(apperr.Conflict, "CPF already registered"))
		}
		return fail(c, err)
	}
	return ok(c, http.StatusCreated, d)
}

// Update handles PUT /api/motoristas/:id.
func (h *DriverHandler) Update(c echo.Context) error {
	uid, err := userID(c)
	if err != nil {
		return fail(c, err)
	}
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	var req driverReq
	if err := c.Bind(&req); err != nil {
		return fail(c, apperr.New(apperr.BadRequest, "invalid request body"))
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Drivers.GetByIDAndUser(ctx, id, uid)
	if err != nil {
		if errors.Is(err, repository.ErrDriverNotFound) {
			return fail(c, apperr.New(apperr.NotFound, "driver not found"))
		}
		return fail(c, err)
	}
	if err := req.apply(d); err != nil {
		return fail(c, err)
	}
	if err := h.Drivers.Update(ctx, d); err != nil {
		if errors.Is(err, repository.ErrCPFExists) {
			return fail(c, apperr.New(apperr.Conflict, "CPF already registered"))
		}
		return fail(c, err)
	}
	return ok(c, http.StatusOK, d)
}

// Delete handles DELETE /api/motoristas/:id.
func (h *DriverHandler) Delete(c echo.Context) error {
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

	if err := h.Drivers.Delete(ctx, id, uid); err != nil {
		if errors.Is(err, repository.ErrDriverNotFound) {
			return fail(c, apperr.New(apperr.NotFound, "driver not found"))
		}
		return fail(c, err)
	}
	return okMessage(c, "driver deleted successfully")
}
