package storage

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
)

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// CreateUser inserts u. The email is lower-cased so uniqueness is
// case-insensitive.
func (s *Service) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		err = translate(err)
		if err != ErrDuplicate {
			s.log.Error().Err(err).Str("email", u.Email).Msg("failed to create user")
		}
		return err
	}
	return nil
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var u models.User
	if err := s.DB.WithContext(ctx).Preload("Department").First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).
		Preload("Department").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UpdateUser persists the mutable fields of u: name, role and department.
func (s *Service) UpdateUser(ctx context.Context, u *models.User) error {
	if !validID(u.ID) {
		return ErrNotFound
	}
	res := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"name":          u.Name,
			"role":          u.Role,
			"department_id": u.DepartmentID,
		})
	if res.Error != nil {
		s.log.Error().Err(res.Error).Str("user_id", u.ID).Msg("failed to update user")
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res := s.DB.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		s.log.Error().Err(res.Error).Str("user_id", id).Msg("failed to delete user")
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers returns every user ordered by name, with departments.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).Preload("Department").Order("name asc").Find(&users).Error; err != nil {
		s.log.Error().Err(err).Msg("failed to list users")
		return nil, err
	}
	return users, nil
}

// ListDepartments returns every department ordered by name.
func (s *Service) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var depts []models.Department
	if err := s.DB.WithContext(ctx).Order("name asc").Find(&depts).Error; err != nil {
		s.log.Error().Err(err).Msg("failed to list departments")
		return nil, err
	}
	return depts, nil
}

func (s *Service) GetDepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var d models.Department
	if err := s.DB.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

// EnsureDepartment returns the department called name, creating it if needed.
func (s *Service) EnsureDepartment(ctx context.Context, name string) (*models.Department, error) {
	d := models.Department{}
	res := s.DB.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&d, models.Department{Name: name})
	if res.Error != nil {
		s.log.Error().Err(res.Error).Str("department", name).Msg("failed to ensure department")
		return nil, translate(res.Error)
	}
	if res.RowsAffected > 0 {
		s.log.Info().Str("department", name).Msg("department created")
	}
	return &d, nil
}
