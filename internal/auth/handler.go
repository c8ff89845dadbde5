package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/oncoverse/oncoverse/internal/apperr"
	"github.com/oncoverse/oncoverse/internal/middleware"
	"github.com/oncoverse/oncoverse/internal/otp"
	"github.com/oncoverse/oncoverse/internal/respond"
	"github.com/oncoverse/oncoverse/internal/validate"
)

// Handler exposes the patient auth endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler constructs the auth HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func ttlPhrase(ttl time.Duration) string {
	if ttl < time.Minute {
		return fmt.Sprintf("%d seconds", int(ttl.Seconds()))
	}
	minutes := int(ttl.Minutes())
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

type registerRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,e164"`
}

// Register starts a registration by issuing one code per channel.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	result, err := h.svc.Register(c.UserContext(), RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}

	h.logger.Info("registration started", slog.String("email", otp.NormalizeEmail(req.Email)))
	message := fmt.Sprintf("OTP sent successfully. It will expire in %s.", ttlPhrase(h.svc.OTPTTL()))
	return respond.Data(c, http.StatusCreated, message, result)
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,e164"`
	OTP   struct {
		OTPForEmail string `json:"otpForEmail" validate:"required,len=6,numeric"`
		OTPForPhone string `json:"otpForPhone" validate:"required,len=6,numeric"`
	} `json:"otp"`
}

// VerifyOTP completes a registration: both channel codes must verify.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	result, err := h.svc.VerifyRegistration(c.UserContext(), VerifyRegistrationInput{
		Email:       req.Email,
		Phone:       req.Phone,
		OTPForEmail: req.OTP.OTPForEmail,
		OTPForPhone: req.OTP.OTPForPhone,
	})
	if err != nil {
		return err
	}

	h.logger.Info("registration completed", slog.String("user_id", result.User.ID))
	return respond.Data(c, http.StatusCreated, "User created successfully", result)
}

type resendOTPRequest struct {
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
	Type     string `json:"type" validate:"required,oneof=email phone"`
}

// ResendOTP re-issues a code for one channel, invalidating the prior one.
func (h *Handler) ResendOTP(c *fiber.Ctx) error {
	var req resendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	channel := otp.Channel(req.Type)
	if channel == otp.ChannelEmail && req.Email == "" {
		return apperr.Invalid("email is required for the email channel")
	}
	if channel == otp.ChannelPhone && req.Phone == "" {
		return apperr.Invalid("phone is required for the phone channel")
	}

	code, err := h.svc.Resend(c.UserContext(), ResendInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Channel:  channel,
	})
	if err != nil {
		return err
	}

	data := fiber.Map{}
	verifyTarget := "phone number"
	if channel == otp.ChannelEmail {
		data["otpForEmail"] = code
		verifyTarget = "email"
	} else {
		data["otpForPhone"] = code
	}
	message := fmt.Sprintf("OTP sent successfully. It will expire in %s. Please verify your %s with OTP.",
		ttlPhrase(h.svc.OTPTTL()), verifyTarget)
	return respond.Data(c, http.StatusCreated, message, data)
}

type loginRequest struct {
	Type     string `json:"type" validate:"required,oneof=email phone"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=6,max=100"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
}

// Login authenticates by email+password, or starts the OTP login variant
// for a phone.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	switch req.Type {
	case "email":
		if req.Email == "" || req.Password == "" {
			return apperr.Invalid("email and password are required for email login")
		}
		result, err := h.svc.LoginEmail(c.UserContext(), LoginEmailInput{Email: req.Email, Password: req.Password})
		if err != nil {
			return err
		}
		return respond.Data(c, http.StatusOK, "Login successful", result)
	default:
		if req.Phone == "" {
			return apperr.Invalid("phone is required for phone login")
		}
		code, err := h.svc.LoginPhone(c.UserContext(), req.Phone)
		if err != nil {
			return err
		}
		message := fmt.Sprintf("OTP sent successfully. It will expire in %s. Please verify your phone number with OTP.",
			ttlPhrase(h.svc.OTPTTL()))
		return respond.Data(c, http.StatusCreated, message, fiber.Map{"otp": code})
	}
}

type verifyLoginOTPRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// VerifyOTPLogin completes the OTP login variant.
func (h *Handler) VerifyOTPLogin(c *fiber.Ctx) error {
	var req verifyLoginOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	result, err := h.svc.VerifyLoginOTP(c.UserContext(), req.Phone, req.OTP)
	if err != nil {
		return err
	}
	return respond.Data(c, http.StatusOK, "Login successful", result)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword issues a password-reset code to a known email.
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

	message := fmt.Sprintf("OTP sent successfully. It will expire in %s. Please verify your email with OTP.",
		ttlPhrase(h.svc.ResetTTL()))
	return respond.Data(c, http.StatusCreated, message, fiber.Map{"otp": code})
}

type verifyResetOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// VerifyOTPForgotPassword exchanges a valid reset code for a reset-scoped token.
func (h *Handler) VerifyOTPForgotPassword(c *fiber.Ctx) error {
	var req verifyResetOTPRequest
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

type setPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6,max=100,password"`
}

// SetPassword hashes and persists a new password for the authenticated patient.
func (h *Handler) SetPassword(c *fiber.Ctx) error {
	var req setPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Invalid("Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	user, err := h.svc.SetPassword(c.UserContext(), middleware.SubjectID(c), req.Password)
	if err != nil {
		return err
	}
	return respond.Data(c, http.StatusCreated, "Password set successfully", fiber.Map{"user": user})
}
