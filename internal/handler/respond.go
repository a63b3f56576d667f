// Package handler defines the HTTP handlers. Every response uses the
// envelope {"success":true,"data":...} or {"success":false,"message":...};
// error kinds map to status codes in exactly one place.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/frotalog/fleet-api/internal/apperr"
)

var statusByKind = map[apperr.Kind]int{
	apperr.Conflict:     http.StatusConflict,
	apperr.Unauthorized: http.StatusUnauthorized,
	apperr.BadRequest:   http.StatusBadRequest,
	apperr.NotFound:     http.StatusNotFound,
	apperr.Internal:     http.StatusInternalServerError,
}

// fail translates an error into the failure envelope. Internal causes are
// logged server-side; the response body carries only the client-safe
// message.
func fail(c echo.Context, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal {
		c.Logger().Error(err)
	}
	status, found := statusByKind[kind]
	if !found {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, echo.Map{"success": false, "message": apperr.MessageOf(err)})
}

func ok(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func okMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": message})
}
