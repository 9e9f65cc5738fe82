package models

// Role is the closed set of account roles.
type Role string

const (
	RoleStudent     Role = "STUDENT"
	RoleFaculty     Role = "FACULTY"
	RoleStaff       Role = "STAFF"
	RoleDeptOfficer Role = "DEPT_OFFICER"
	RoleAdmin       Role = "ADMIN"
)

// Roles lists every role, in display order.
var Roles = []Role{RoleStudent, RoleFaculty, RoleStaff, RoleDeptOfficer, RoleAdmin}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleStaff, RoleDeptOfficer, RoleAdmin:
		return true
	default:
		return false
	}
}

// SelfService reports whether a user may pick this role when registering.
func (r Role) SelfService() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleStaff:
		return true
	case RoleDeptOfficer, RoleAdmin:
		return false
	default:
		return false
	}
}

// ParseRole converts a raw string into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
