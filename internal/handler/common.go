package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/frotalog/fleet-api/internal/apperr"
	"github.com/frotalog/fleet-api/internal/middleware"
	"github.com/frotalog/fleet-api/internal/service"
)

// userID extracts the authenticated user id stored by the Protect
// middleware.
func userID(c echo.Context) (uint64, error) {
	if id, found := c.Get(middleware.UserIDKey).(uint64); found && id != 0 {
		return id, nil
	}
	return 0, apperr.New(apperr.Unauthorized, "not authenticated")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.BadRequest, "invalid id")
	}
	return id, nil
}

// reqCtx bounds database work for one request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// clientMeta captures the informational request metadata persisted on
// sessions.
func clientMeta(c echo.Context) service.ClientMeta {
	return service.ClientMeta{IP: c.RealIP(), UserAgent: c.Request().UserAgent()}
}
