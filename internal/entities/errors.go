package entities

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrShopNotFound    = errors.New("shop not found")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")

	// ErrForbidden means the caller's role or ownership does not permit the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition is wrapped with the order's current status so the
	// caller can resync.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInsufficientStock aborts the whole checkout batch, never a single line.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNotEligible covers reviews against non-delivered or already rated orders.
	ErrNotEligible = errors.New("order not eligible for review")

	ErrValidation = errors.New("validation failed")
)
