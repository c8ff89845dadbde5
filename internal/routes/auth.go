package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/oncoverse/oncoverse/internal/auth"
)

// RegisterAuthRoutes wires the patient auth endpoints. Set-password needs a
// bearer token (access or password_reset scope); everything else is public.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, requireAuth, passwordScope fiber.Handler) {
	r.Post("/register", h.Register)
	r.Post("/verify-otp", h.VerifyOTP)
	r.Post("/resend-otp", h.ResendOTP)
	r.Post("/login", h.Login)
	r.Post("/verify-otp-login", h.VerifyOTPLogin)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/verify-otp-forgot-password", h.VerifyOTPForgotPassword)
	r.Post("/set-password", requireAuth, passwordScope, h.SetPassword)
}
