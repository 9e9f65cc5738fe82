// Package access decides whether an identity may act on a complaint or on
// user accounts. Every function is a pure predicate.
package access

import (
	"github.com/shahmeerabdul/GIKomplain/internal/auth"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
)

// CanRead: the complainant, the assigned officer, any admin, or an officer
// of the complaint's department.
func CanRead(actor auth.Identity, c *models.Complaint) bool {
	if c == nil || actor.UserID == "" {
		return false
	}
	if c.ComplainantID == actor.UserID {
		return true
	}
	if c.AssignedOfficerID != nil && *c.AssignedOfficerID == actor.UserID {
		return true
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleDeptOfficer:
		return actor.OfficerOf(c.AssignedDeptID)
	case models.RoleStudent, models.RoleFaculty, models.RoleStaff:
		return false
	default:
		return false
	}
}

// CanWrite covers status transitions and internal notes: admins, and officers
// of the complaint's department. Being the assigned officer is not enough.
func CanWrite(actor auth.Identity, c *models.Complaint) bool {
	if c == nil || actor.UserID == "" {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleDeptOfficer:
		return actor.OfficerOf(c.AssignedDeptID)
	case models.RoleStudent, models.RoleFaculty, models.RoleStaff:
		return false
	default:
		return false
	}
}

// CanComment follows the read rule.
func CanComment(actor auth.Identity, c *models.Complaint) bool {
	return CanRead(actor, c)
}

// CanSeeInternalNotes reports whether internal notes stay in the complaint
// returned to actor.
func CanSeeInternalNotes(actor auth.Identity, c *models.Complaint) bool {
	if !CanRead(actor, c) {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleDeptOfficer:
		return true
	case models.RoleStudent, models.RoleFaculty, models.RoleStaff:
		return false
	default:
		return false
	}
}

// CanListDepartmentQueue: admins see every complaint, officers their
// department's.
func CanListDepartmentQueue(actor auth.Identity) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleDeptOfficer:
		return actor.DepartmentID != nil
	case models.RoleStudent, models.RoleFaculty, models.RoleStaff:
		return false
	default:
		return false
	}
}

// CanManageUsers covers create, update, list and delete of accounts.
func CanManageUsers(actor auth.Identity) bool {
	return actor.IsAdmin()
}

// CanDeleteUser additionally forbids deleting one's own account.
func CanDeleteUser(actor auth.Identity, targetID string) bool {
	return actor.IsAdmin() && actor.UserID != targetID
}

func CanViewReports(actor auth.Identity) bool {
	return actor.IsAdmin()
}
