package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oncoverse/oncoverse/internal/patient"
)

// RegisterPatientRoutes wires the authenticated profile endpoints.
func RegisterPatientRoutes(r fiber.Router, h *patient.Handler, requireAuth, accessScope fiber.Handler) {
	r.Get("/get-profile", requireAuth, accessScope, h.GetProfile)
	r.Post("/complete-profile", requireAuth, accessScope, h.CompleteProfile)
}
