package auth

// Role determines which operations a caller may invoke. The record core
// itself is role-agnostic; gating happens in the HTTP layer via Can.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleSecurity Role = "security"
)

// Operation names a gated action.
type Operation string

const (
	OpCheckIn     Operation = "checkin"
	OpCheckOut    Operation = "checkout"
	OpUpload      Operation = "upload"
	OpViewRecords Operation = "view-records"
	OpExport      Operation = "export"
)

// capabilities maps each role to its allowed operations. One table instead
// of per-page conditionals.
var capabilities = map[Role]map[Operation]bool{
	RoleAdmin: {
		OpCheckIn:     true,
		OpCheckOut:    true,
		OpUpload:      true,
		OpViewRecords: true,
		OpExport:      true,
	},
	RoleStaff: {
		OpCheckIn:     true,
		OpCheckOut:    true,
		OpUpload:      true,
		OpViewRecords: true,
	},
	RoleSecurity: {
		OpCheckOut:    true,
		OpViewRecords: true,
	},
}

// Can reports whether a role may perform an operation.
func Can(role Role, op Operation) bool {
	return capabilities[role][op]
}
