package notifications

const (
	TypeApplicationReceived = "application_received"
	TypeApplicationAccepted = "application_accepted"
	TypeApplicationRejected = "application_rejected"
	TypeReviewRecorded      = "review_recorded"
	TypeTierChanged         = "tier_changed"
	TypePaymentCreated      = "payment_created"
	TypePaymentApproved     = "payment_approved"
	TypePaymentPaid         = "payment_paid"
	TypeProjectAssigned     = "project_assigned"
)
