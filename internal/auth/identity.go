// Package auth issues and verifies identity tokens and hashes passwords.
package auth

import "github.com/shahmeerabdul/GIKomplain/internal/models"

// Identity is the caller of a service operation. It is passed explicitly
// into every operation.
type Identity struct {
	UserID       string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name"`
	Role         models.Role `json:"role"`
	DepartmentID *string     `json:"departmentId"`
}

// IdentityOf builds the identity of a stored user.
func IdentityOf(u *models.User) Identity {
	return Identity{
		UserID:       u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		DepartmentID: u.DepartmentID,
	}
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// OfficerOf reports whether i is a department officer of department id.
func (i Identity) OfficerOf(id *string) bool {
	return i.Role == models.RoleDeptOfficer && i.DepartmentID != nil && id != nil && *i.DepartmentID == *id
}
