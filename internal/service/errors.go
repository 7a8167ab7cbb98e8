package service

import "errors"

// Sentinel errors for the recoverable failure conditions of the order,
// inventory and invoice services. Handlers map them to HTTP status codes
// with errors.Is; none of them is fatal to the process and nothing is
// retried automatically.
var (
	// ErrValidation covers bad input: non-positive quantities, missing
	// required fields, malformed ids.
	ErrValidation = errors.New("validation error")

	// ErrInsufficientStock is returned when a reservation or movement would
	// drive a product's stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidTransition is returned when an order status change is not
	// permitted from the current state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateInvoice is returned when invoice generation is attempted
	// for an order that already owns one.
	ErrDuplicateInvoice = errors.New("order already has an invoice")

	// ErrNotFound is returned when a referenced entity does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("not found")
)
