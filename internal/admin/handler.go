package admin

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/oncoverse/oncoverse/internal/apperr"
	"github.com/oncoverse/oncoverse/internal/middleware"
	"github.com/oncoverse/oncoverse/internal/patient"
	"github.com/oncoverse/oncoverse/internal/respond"
	"github.com/oncoverse/oncoverse/internal/validate"
)

// Handler exposes the back-office endpoints: admin auth plus the patient
// list/detail views.
type Handler struct {
	svc      *Service
	patients *patient.Service
	logger   *slog.Logger
}

// NewHandler constructs the admin HTTP handler.
func NewHandler(svc *Service, patients *patient.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, patients: patients, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=100"`
}

// Login authenticates an admin by email+password.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	session, err := h.svc.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.logger.Info("admin logged in", slog.String("admin_id", session.Admin.ID))
	return respond.Data(c, http.StatusCreated, "Admin logged in successfully", session)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword issues a password-reset code to a known admin email.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	code, err := h.svc.ForgotPassword(c.UserContext(), req.Email)
	if err != nil {
		return err
	}

	minutes := int(h.svc.ResetTTL().Minutes())
	phrase := "1 minute"
	if minutes > 1 {
		phrase = fmt.Sprintf("%d minutes", minutes)
	}
	message := fmt.Sprintf("OTP sent successfully. It will expire in %s. Please verify your email with OTP.", phrase)
	return respond.Data(c, http.StatusCreated, message, fiber.Map{"otp": code})
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// VerifyOTP exchanges a valid reset code for a reset-scoped token.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	signed, err := h.svc.VerifyResetOTP(c.UserContext(), req.Email, req.OTP)
	if err != nil {
		return err
	}
	return respond.Data(c, http.StatusCreated,
		"OTP verified successfully, Using this please set your new password",
		fiber.Map{"token": signed})
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=100,password"`
}

// ResetPassword persists a new password for the authenticated admin.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	adminID, err := h.svc.ResetPassword(c.UserContext(), middleware.SubjectID(c), req.Password)
	if err != nil {
		return err
	}
	return respond.Data(c, http.StatusCreated,
		"Password reset successfully, Please login with your new password",
		fiber.Map{"admin": adminID})
}

// RequirePermission gates a route on a named grant. The admin role bypasses
// the check; a sub-admin without the grant gets Forbidden.
func (h *Handler) RequirePermission(name, mode string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		a, err := h.svc.Get(c.UserContext(), middleware.SubjectID(c))
		if err != nil {
			return err
		}
		if !a.Can(name, mode) {
			return apperr.Forbidden("Access denied")
		}
		return c.Next()
	}
}

// PatientList serves the paged, searchable patient list.
func (h *Handler) PatientList(c *fiber.Ctx) error {
	params := patient.ListParams{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 10),
		Search: c.Query("search"),
	}
	if status := c.Query("status"); status != "" {
		active, err := strconv.ParseBool(status)
		if err != nil {
			return apperr.Invalid("status must be true or false")
		}
		params.Status = &active
	}

	result, err := h.patients.List(c.UserContext(), params)
	if err != nil {
		return err
	}
	return respond.Data(c, http.StatusOK, "Patients list fetched successfully", result)
}

// PatientDetails serves one sanitized patient record.
func (h *Handler) PatientDetails(c *fiber.Ctx) error {
	view, err := h.patients.Details(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound("Patient not found")
		}
		return err
	}
	return respond.Data(c, http.StatusOK, "Patient details fetched successfully", fiber.Map{"patient": view})
}
