// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrOutOfStock is an expected user-facing condition while
// ErrInventoryNotFound signals a data inconsistency between the cars
// and car_inventory tables.
package repository

import "errors"

// ErrCarNotFound is returned when no car exists for the given id.
// Handlers translate this into an HTTP 404 response.
var ErrCarNotFound = errors.New("car not found")

// ErrInvoiceNotFound is returned when no invoice exists for the given id.
var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrUserNotFound is returned when no user matches the given id or name.
var ErrUserNotFound = errors.New("user not found")

// ErrInventoryNotFound is returned when a car has no inventory row. A
// car should always have exactly one, so this points at inconsistent
// data rather than user error.
var ErrInventoryNotFound = errors.New("inventory not found")

// ErrOutOfStock is returned when a reservation is attempted against an
// inventory row whose quantity is already zero. Handlers translate this
// into an HTTP 400 response.
var ErrOutOfStock = errors.New("out of stock")

// ErrInvalidTransition is returned when a return or cancel is attempted
// on an invoice that is not currently rented. This is the guard that
// keeps a terminal invoice from releasing inventory twice.
var ErrInvalidTransition = errors.New("invalid rent status transition")

// ErrUserExists is returned when registration collides with an existing
// username or email. Handlers translate this into an HTTP 409 response.
var ErrUserExists = errors.New("username or email already exists")

// ErrConflict is returned when a delete cannot be performed because of
// dependent records, such as deleting a car that still has invoices.
// Handlers translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
