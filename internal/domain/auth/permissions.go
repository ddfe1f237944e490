package auth

const (
	PermApplicationsRead  = "applications.read"
	PermApplicationsWrite = "applications.write"
	PermFreelancersRead   = "freelancers.read"
	PermFreelancersWrite  = "freelancers.write"
	PermProjectsRead      = "projects.read"
	PermProjectsWrite     = "projects.write"
	PermPerformanceRead   = "performance.read"
	PermPerformanceWrite  = "performance.write"
	PermTieringRead       = "tiering.read"
	PermTieringApply      = "tiering.apply"
	PermPaymentsRead      = "payments.read"
	PermPaymentsWrite     = "payments.write"
	PermPaymentsApprove   = "payments.approve"
	PermReportsRead       = "reports.read"
	PermAuditRead         = "audit.read"
	PermPortalSelf        = "portal.self"
)

var DefaultPermissions = []string{
	PermApplicationsRead,
	PermApplicationsWrite,
	PermFreelancersRead,
	PermFreelancersWrite,
	PermProjectsRead,
	PermProjectsWrite,
	PermPerformanceRead,
	PermPerformanceWrite,
	PermTieringRead,
	PermTieringApply,
	PermPaymentsRead,
	PermPaymentsWrite,
	PermPaymentsApprove,
	PermReportsRead,
	PermAuditRead,
	PermPortalSelf,
}

var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermApplicationsRead,
		PermApplicationsWrite,
		PermFreelancersRead,
		PermFreelancersWrite,
		PermProjectsRead,
		PermProjectsWrite,
		PermPerformanceRead,
		PermPerformanceWrite,
		PermTieringRead,
		PermTieringApply,
		PermPaymentsRead,
		PermPaymentsWrite,
		PermPaymentsApprove,
		PermReportsRead,
		PermAuditRead,
	},
	RoleFreelancer: {
		PermPortalSelf,
	},
}
