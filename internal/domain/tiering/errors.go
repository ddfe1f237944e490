package tiering

import "errors"

var (
	ErrNoData           = errors.New("no performance records with scores in period")
	ErrUnknownPeriod    = errors.New("unknown period selector")
	ErrInvalidTierGrade = errors.New("invalid tier or grade")
	ErrNotFound         = errors.New("freelancer not found")
)
