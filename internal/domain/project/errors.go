package project

import "errors"

var (
	ErrNotFound           = errors.New("project not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrDuplicateCode      = errors.New("project code already in use")
	ErrAlreadyAssigned    = errors.New("freelancer already assigned to project")
	ErrInvalidModel       = errors.New("unknown payment model")
	ErrInvalidRole        = errors.New("unknown assignment role")
	ErrMissingRate        = errors.New("payment model requires a matching rate")
)
