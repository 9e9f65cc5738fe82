package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shahmeerabdul/GIKomplain/internal/auth"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"github.com/shahmeerabdul/GIKomplain/internal/storage"
)

// SeedStore is what Seed writes to.
type SeedStore interface {
	storage.UserStore
	EnsureDepartment(ctx context.Context, name string) (*models.Department, error)
}

// Seed creates the reference departments and an admin account. It is safe
// to run repeatedly: existing departments and an existing admin are kept.
func Seed(ctx context.Context, store SeedStore, hasher *auth.PasswordHasher, adminEmail, adminPassword string, log zerolog.Logger) error {
	for _, name := range config.SeedDepartments {
		if _, err := store.EnsureDepartment(ctx, name); err != nil {
			return fmt.Errorf("seed department %q: %w", name, err)
		}
	}
	log.Info().Int("count", len(config.SeedDepartments)).Msg("departments seeded")

	hash, err := hasher.Hash(adminPassword)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        adminEmail,
		Name:         "System Administrator",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	err = store.CreateUser(ctx, admin)
	switch {
	case errors.Is(err, storage.ErrDuplicate):
		log.Info().Str("email", adminEmail).Msg("admin already exists")
	case err != nil:
		return fmt.Errorf("seed admin: %w", err)
	default:
		log.Info().Str("email", admin.Email).Msg("admin seeded")
	}
	return nil
}
