package orders

import "errors"

// Error kinds the request layer maps to status codes. Services wrap these
// with context via %w, so callers classify with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrInsufficientStock = errors.New("not enough stock")
	ErrValidation        = errors.New("invalid input")
)
