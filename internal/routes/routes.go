// Package routes wires middleware, services, and handlers onto the Fiber app.
package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/oncoverse/oncoverse/internal/admin"
	"github.com/oncoverse/oncoverse/internal/auth"
	"github.com/oncoverse/oncoverse/internal/config"
	"github.com/oncoverse/oncoverse/internal/middleware"
	"github.com/oncoverse/oncoverse/internal/otp"
	"github.com/oncoverse/oncoverse/internal/patient"
	"github.com/oncoverse/oncoverse/internal/token"
	"github.com/oncoverse/oncoverse/internal/upload"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a
// database or Redis the in-memory stores take over, which only makes sense
// in dev and tests.
func Setup(app *fiber.App, d Deps) error {
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.RateLimit(d.Cache, d.Cfg.RateLimitMax, d.Cfg.RateLimitWindow))

	RegisterHealthRoutes(app, d)

	issuer, err := token.NewIssuer(d.Cfg.JWTSecret, d.Cfg.TokenTTL)
	if err != nil {
		return err
	}

	var patientRepo patient.Repository
	if d.DB != nil {
		patientRepo = patient.NewPostgresRepository(d.DB)
	} else {
		patientRepo = patient.NewMemoryRepository()
	}
	var adminRepo admin.Repository
	if d.DB != nil {
		adminRepo = admin.NewPostgresRepository(d.DB)
	} else {
		adminRepo = admin.NewMemoryRepository()
	}
	var otpStore otp.Store
	if d.Cache != nil {
		otpStore = otp.NewRedisStore(d.Cache)
	} else {
		otpStore = otp.NewMemoryStore()
	}
	var fileStore upload.Store
	if d.DB != nil {
		fileStore = upload.NewPostgresStore(d.DB)
	} else {
		fileStore = upload.NewMemoryStore()
	}

	authSvc := auth.NewService(patientRepo, otpStore, issuer, d.Cfg.OTPTTL, d.Cfg.ResetOTPTTL)
	patientSvc := patient.NewService(patientRepo)
	adminSvc := admin.NewService(adminRepo, otpStore, issuer, d.Cfg.OTPTTL)

	authHandler := auth.NewHandler(authSvc, d.Logger)
	patientHandler := patient.NewHandler(patientSvc)
	adminHandler := admin.NewHandler(adminSvc, patientSvc, d.Logger)
	uploadHandler := upload.NewHandler(fileStore, d.Cfg.MaxUploadFiles, d.Cfg.MaxUploadBytes, d.Logger)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	patientAuth := middleware.RequireAuth(issuer, token.AudiencePatient)
	adminAuth := middleware.RequireAuth(issuer, token.AudienceAdmin)
	// Reset-scoped tokens exist only to set a new password; everything else
	// demands the access scope.
	accessScope := middleware.RequireScope(token.ScopeAccess)
	passwordScope := middleware.RequireScope(token.ScopeAccess, token.ScopePasswordReset)

	RegisterAuthRoutes(api, authHandler, patientAuth, passwordScope)
	RegisterPatientRoutes(api, patientHandler, patientAuth, accessScope)
	RegisterAdminRoutes(api, adminHandler, adminAuth, accessScope, passwordScope)
	RegisterUploadRoutes(api, uploadHandler, patientAuth, accessScope)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
