package payment

import "errors"

var (
	ErrInvalidRange      = errors.New("period end before period start")
	ErrTotalMismatch     = errors.New("total amount does not match line item sum")
	ErrInvalidTransition = errors.New("illegal payment status transition")
	ErrDuplicatePeriod   = errors.New("payment already exists for this period")
	ErrPaidImmutable     = errors.New("paid payments cannot be deleted")
	ErrNotFound          = errors.New("payment not found")
)
