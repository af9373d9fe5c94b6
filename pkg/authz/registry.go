package authz

const (
	// RoleHRAdmin prepares and submits certificates on behalf of employees.
	RoleHRAdmin = "hr-admin"
	// RoleEmployee fills in their own certificate during onboarding.
	RoleEmployee  = "employee"
	RoleAuditor   = "auditor"
	RoleAnonymous = "anonymous"
)

const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionSubmit = "submit"
)

// DomainAny in a policy line matches every tenant.
const DomainAny = "*"

const (
	ObjectWithholdingForms    = "withholding.forms"
	ObjectWithholdingSessions = "withholding.sessions"
)
