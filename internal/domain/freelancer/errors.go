package freelancer

import "errors"

var (
	ErrNotFound       = errors.New("freelancer not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrInvalidStatus  = errors.New("unknown freelancer status")
)
