package auth

const (
	RoleAdmin      = "ADMIN"
	RoleFreelancer = "FREELANCER"

	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
