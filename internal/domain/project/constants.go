package project

const (
	PaymentModelHourly    = "HOURLY"
	PaymentModelPerAsset  = "PER_ASSET"
	PaymentModelPerObject = "PER_OBJECT"

	RoleAnnotation = "ANNOTATION"
	RoleReview     = "REVIEW"

	StatusPlanned   = "PLANNED"
	StatusActive    = "ACTIVE"
	StatusOnHold    = "ON_HOLD"
	StatusCompleted = "COMPLETED"
	StatusArchived  = "ARCHIVED"

	AssignmentActive    = "ACTIVE"
	AssignmentCompleted = "COMPLETED"
	AssignmentRemoved   = "REMOVED"
)

func ValidPaymentModel(model string) bool {
	switch model {
	case PaymentModelHourly, PaymentModelPerAsset, PaymentModelPerObject:
		return true
	}
	return false
}

func ValidRole(role string) bool {
	return role == RoleAnnotation || role == RoleReview
}
