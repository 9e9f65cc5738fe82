package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shahmeerabdul/GIKomplain/internal/account"
	"github.com/shahmeerabdul/GIKomplain/internal/auth"
	"github.com/shahmeerabdul/GIKomplain/internal/config"
	"github.com/shahmeerabdul/GIKomplain/internal/logger"
	"github.com/shahmeerabdul/GIKomplain/internal/models"
	"github.com/shahmeerabdul/GIKomplain/internal/storage"
)

const usage = `Usage: admin <command> [args]

Commands:
  migrate                                create or update the database schema
  seed                                   create departments and the admin account
  set-role <email> <ROLE> [department]   change a user's role and department
`

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Warning: no .env file loaded")
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	db, err := storage.OpenPostgres(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	s := storage.NewStorageService(db, nil, log) // No redis needed for admin CLI
	ctx := context.Background()

	switch os.Args[1] {
	case "migrate":
		if err := storage.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		fmt.Println("Schema is up to date.")
	case "seed":
		if err := storage.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		email, password, err := config.AdminCredentials(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := account.Seed(ctx, s, auth.NewPasswordHasher(), email, password, log); err != nil {
			log.Fatal().Err(err).Msg("seed failed")
		}
		fmt.Println("Seeding completed.")
	case "set-role":
		if len(os.Args) < 4 || len(os.Args) > 5 {
			fmt.Println("Usage: admin set-role <email> <ROLE> [department]")
			os.Exit(1)
		}
		dept := ""
		if len(os.Args) == 5 {
			dept = os.Args[4]
		}
		if err := setRole(ctx, s, os.Args[2], os.Args[3], dept); err != nil {
			log.Fatal().Err(err).Msg("set-role failed")
		}
		fmt.Printf("User %s is now %s.\n", os.Args[2], strings.ToUpper(os.Args[3]))
	default:
		fmt.Print(usage)
		os.Exit(1)
	}
}

func setRole(ctx context.Context, s storage.Storage, email, rawRole, deptName string) error {
	role, ok := models.ParseRole(strings.ToUpper(rawRole))
	if !ok {
		return fmt.Errorf("unknown role %q", rawRole)
	}
	u, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no user with email %s", email)
	}
	if err != nil {
		return err
	}

	u.Role = role
	u.DepartmentID = nil
	if deptName != "" {
		d, err := findDepartment(ctx, s, deptName)
		if err != nil {
			return err
		}
		u.DepartmentID = &d.ID
	}
	return s.UpdateUser(ctx, u)
}

func findDepartment(ctx context.Context, s storage.Storage, name string) (*models.Department, error) {
	depts, err := s.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	for i := range depts {
		if strings.EqualFold(depts[i].Name, name) {
			return &depts[i], nil
		}
	}
	return nil, fmt.Errorf("no department named %q", name)
}
