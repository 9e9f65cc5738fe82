package account

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shahmeerabdul/GIKomplain/internal/apperr"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
)

var validate = validator.New()

// RegisterCommand is a self-service sign-up. Role defaults to STUDENT.
type RegisterCommand struct {
	Email        string      `json:"email"`
	Password     string      `json:"password"`
	Name         string      `json:"name"`
	Role         models.Role `json:"role"`
	DepartmentID *string     `json:"departmentId"`
}

// CreateUserCommand is an admin-created account of any role.
type CreateUserCommand RegisterCommand

// UpdateUserCommand changes a user's role and/or department.
type UpdateUserCommand struct {
	Role         *models.Role `json:"role"`
	DepartmentID OptionalID   `json:"departmentId"`
}

// OptionalID tells an absent JSON field from an explicit null.
type OptionalID struct {
	Set   bool
	Value *string
}

func (o *OptionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s = strings.TrimSpace(s); s == "" {
		o.Value = nil
		return nil
	}
	o.Value = &s
	return nil
}

// checkFields validates email, password and name. domain is the required
// email domain, without "@".
func checkFields(email, password, name, domain string) map[string]string {
	fields := map[string]string{}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		fields["email"] = "must be a valid email address"
	} else if !strings.HasSuffix(email, "@"+strings.ToLower(domain)) {
		fields["email"] = "must be a @" + domain + " address"
	}
	if len(password) < config.MinPasswordLength {
		fields["password"] = "must be at least 6 characters"
	}
	if utf8.RuneCountInString(strings.TrimSpace(name)) < config.MinNameLength {
		fields["name"] = "must be at least 2 characters"
	}
	return fields
}

func validationError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apperr.Validation("invalid account details", fields)
}
