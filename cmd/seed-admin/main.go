// Command seed-admin bootstraps the super admin account with full grants.
// It is a no-op when an admin-role account already exists, so it is safe to
// run on every deploy.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/oncoverse/oncoverse/internal/admin"
	"github.com/oncoverse/oncoverse/internal/config"
	"github.com/oncoverse/oncoverse/internal/infra"
	"github.com/oncoverse/oncoverse/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()

	db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := infra.Migrate(ctx, db); err != nil {
		logger.Error("migrate schema", "error", err)
		os.Exit(1)
	}

	svc := admin.NewService(admin.NewPostgresRepository(db), nil, nil, 0)
	seeded, created, err := svc.Seed(ctx, admin.SeedInput{
		FullName: getEnv("SEED_ADMIN_NAME", "Super Admin"),
		Email:    getEnv("SEED_ADMIN_EMAIL", "admin@oncoverse.com"),
		Password: getEnv("SEED_ADMIN_PASSWORD", "Admin@123"),
	})
	if err != nil {
		logger.Error("seed admin", "error", err)
		os.Exit(1)
	}
	if !created {
		logger.Info("super admin already exists, nothing to do")
		return
	}
	logger.Info("super admin created", "admin_id", seeded.ID, "email", seeded.Email)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
