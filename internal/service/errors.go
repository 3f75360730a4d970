package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrClientNotFound is returned when a client is not found or belongs to another user
	ErrClientNotFound = errors.New("client not found")

	// ErrDuplicateCedulaRUC is returned when another active client of the same
	// owner already carries the identifier
	ErrDuplicateCedulaRUC = errors.New("client with this cedula/RUC already exists")

	// ErrProformaNotFound is returned when a proforma is not found or belongs to another user
	ErrProformaNotFound = errors.New("proforma not found")

	// ErrProformaFinalized is returned on any mutation of a finalized proforma
	ErrProformaFinalized = errors.New("proforma is finalized and cannot be modified")

	// ErrInvalidDate is returned when a date string cannot be parsed
	ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")

	// ErrNoItems is returned when a proforma write carries no items
	ErrNoItems = errors.New("proforma must have at least one item")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")
)
