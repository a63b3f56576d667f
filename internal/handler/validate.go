package handler

// Request validation is a pure gate executed after binding and before any
// service call: a DTO either passes unchanged or the request fails with
// BadRequest carrying the first violation.

import (
	"net/mail"
	"net/url"
	"regexp"

	"github.com/frotalog/fleet-api/internal/apperr"
)

var (
	// Brazilian plates: legacy ABC-1234/ABC1234 or Mercosul ABC1D23.
	plateRegex = regexp.MustCompile(`^[A-Z]{3}-?\d{4}$|^[A-Z]{3}\d[A-Z]\d{2}$`)
	cpfRegex   = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$|^\d{11}$`)
	dateRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// maintenanceTypes is the closed set accepted by the maintenance form.
var maintenanceTypes = map[string]bool{
	"Preventiva": true,
	"Corretiva":  true,
	"Pneus":      true,
	"Motor":      true,
	"Freios":     true,
	"Suspensão":  true,
	"Elétrica":   true,
	"Outros":     true,
}

func badRequest(message string) error {
	return apperr.New(apperr.BadRequest, message)
}

func validEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
