package performance

import "errors"

var (
	ErrNotFound        = errors.New("performance record not found")
	ErrInvalidScore    = errors.New("sub-score outside the 0 to 5 range")
	ErrInvalidType     = errors.New("unknown record type")
	ErrMissingRequired = errors.New("freelancer and record type are required")
)
