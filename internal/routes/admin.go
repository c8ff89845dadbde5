package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oncoverse/oncoverse/internal/admin"
)

// RegisterAdminRoutes wires the back-office surface under /admin.
func RegisterAdminRoutes(r fiber.Router, h *admin.Handler, requireAuth, accessScope, passwordScope fiber.Handler) {
	group := r.Group("/admin")

	authGroup := group.Group("/auth")
	authGroup.Post("/login", h.Login)
	authGroup.Post("/forgot-password", h.ForgotPassword)
	authGroup.Post("/verify-otp", h.VerifyOTP)
	authGroup.Post("/reset-password", requireAuth, passwordScope, h.ResetPassword)

	viewPatients := h.RequirePermission("view_patients", admin.GrantView)
	group.Get("/patient-list", requireAuth, accessScope, viewPatients, h.PatientList)
	group.Get("/patient-details/:id", requireAuth, accessScope, viewPatients, h.PatientDetails)
}
