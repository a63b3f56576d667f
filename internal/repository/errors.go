// Package repository contains the data access layer. Each repository owns
// its entity struct and a *sql.DB, and every fleet query is scoped by the
// owning user id in addition to any primary-key match.
package repository

import (
	"errors"
	"strings"
)

var (
	ErrEmailExists         = errors.New("email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrTruckNotFound       = errors.New("truck not found")
	ErrPlateExists         = errors.New("license plate already exists")
	ErrDriverNotFound      = errors.New("driver not found")
	ErrCPFExists           = errors.New("cpf already exists")
	ErrFuelRecordNotFound  = errors.New("fuel record not found")
	ErrMaintenanceNotFound = errors.New("maintenance record not found")
)

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062) against a unique index.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
