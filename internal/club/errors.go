package club

import "errors"

// Sentinel error kinds shared by every store and service. Handlers map them
// to HTTP status codes with errors.Is; wrap them with fmt.Errorf("%w: ...")
// to add detail.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
)
