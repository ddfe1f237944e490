package application

import "errors"

var (
	ErrNotFound        = errors.New("application not found")
	ErrDuplicateEmail  = errors.New("an application with this email already exists")
	ErrAlreadyReviewed = errors.New("application already reviewed")
	ErrBadTransition   = errors.New("illegal application status transition")
	ErrMissingRequired = errors.New("name and email are required")
)
