package payment

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusPaid     = "PAID"
	StatusRejected = "REJECTED"

	GapUnresolvedProject = "unresolved_project"
	GapUnassigned        = "unassigned"
	GapMissingQuantity   = "missing_quantity"
	GapMissingRate       = "missing_rate"
)
