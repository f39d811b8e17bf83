// Package core defines the fundamental types and errors for Family Guardian.
package core

import "errors"

// Core errors that can occur across the system
var (
	// Alert errors
	ErrAlertNotFound   = errors.New("alert not found")
	ErrAlreadyResolved = errors.New("alert already resolved")
	ErrInvalidAction   = errors.New("invalid alert action")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrMigrationFailed    = errors.New("migration failed")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)
