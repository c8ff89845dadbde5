package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oncoverse/oncoverse/internal/apperr"
	"github.com/oncoverse/oncoverse/internal/otp"
	"github.com/oncoverse/oncoverse/internal/token"
)

// Service implements the back-office auth workflow: password login and the
// forgot-password OTP exchange, mirroring the patient flow against the same
// OTP store with the admin token audience.
type Service struct {
	admins   Repository
	otps     otp.Store
	tokens   *token.Issuer
	resetTTL time.Duration
	now      func() time.Time
}

// NewService wires the admin workflow.
func NewService(admins Repository, otps otp.Store, tokens *token.Issuer, resetTTL time.Duration) *Service {
	if resetTTL <= 0 {
		resetTTL = time.Minute
	}
	return &Service{
		admins:   admins,
		otps:     otps,
		tokens:   tokens,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

// ResetTTL exposes the reset code lifetime for response messages.
func (s *Service) ResetTTL() time.Duration { return s.resetTTL }

// Session is a logged-in admin plus its token.
type Session struct {
	Admin View   `json:"admin"`
	Token string `json:"token"`
}

// Login authenticates by email+password and issues an admin-audience token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	a, err := s.admins.FindByEmail(ctx, otp.NormalizeEmail(email))
	if err != nil {
		return Session{}, err
	}
	if !a.VerifyPassword(password) {
		return Session{}, apperr.Unauthorized("Invalid email or password")
	}

	signed, err := s.tokens.Issue(a.ID, token.AudienceAdmin, token.ScopeAccess)
	if err != nil {
		return Session{}, apperr.Internal(err)
	}
	return Session{Admin: a.Sanitized(), Token: signed}, nil
}

// ForgotPassword issues a reset code to a known admin email, superseding any
// live one. An unknown email is NotFound.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	a, err := s.admins.FindByEmail(ctx, otp.NormalizeEmail(email))
	if err != nil {
		return "", err
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return "", apperr.Internal(err)
	}
	rec := otp.Record{
		FullName:  a.FullName,
		Email:     a.Email,
		Code:      code,
		Channel:   otp.ChannelEmail,
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.otps.Issue(ctx, rec, s.resetTTL); err != nil {
		return "", apperr.Internal(err)
	}
	return code, nil
}

// VerifyResetOTP validates a reset code and exchanges it for a
// password_reset-scoped token. The password itself is untouched.
func (s *Service) VerifyResetOTP(ctx context.Context, email, code string) (string, error) {
	a, err := s.admins.FindByEmail(ctx, otp.NormalizeEmail(email))
	if err != nil {
		return "", err
	}

	rec, ok, err := s.otps.Find(ctx, otp.ChannelEmail, a.Email)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if !ok {
		return "", apperr.NotFound("OTP expired")
	}
	if rec.Code != code {
		return "", apperr.Unauthorized("Invalid OTP")
	}
	if rec.ExpiresAt.Before(s.now()) {
		return "", apperr.Unauthorized("OTP expired")
	}
	if err := s.otps.Consume(ctx, otp.ChannelEmail, a.Email); err != nil {
		return "", apperr.Internal(err)
	}

	signed, err := s.tokens.Issue(a.ID, token.AudienceAdmin, token.ScopePasswordReset)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return signed, nil
}

// ResetPassword hashes and persists a new password for the authenticated
// admin, returning its id.
func (s *Service) ResetPassword(ctx context.Context, adminID, password string) (string, error) {
	a, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		return "", err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if err := s.admins.UpdatePassword(ctx, a.ID, hash); err != nil {
		return "", err
	}
	return a.ID, nil
}

// Get fetches an admin by id for permission checks.
func (s *Service) Get(ctx context.Context, id string) (Admin, error) {
	return s.admins.FindByID(ctx, id)
}

// SeedInput describes the bootstrap super admin.
type SeedInput struct {
	FullName string
	Email    string
	Password string
}

// Seed creates the super admin with full grants iff no admin-role identity
// exists yet. Returns the created admin, or ok=false when one already exists.
func (s *Service) Seed(ctx context.Context, in SeedInput) (Admin, bool, error) {
	exists, err := s.admins.HasRole(ctx, RoleAdmin)
	if err != nil {
		return Admin{}, false, err
	}
	if exists {
		return Admin{}, false, nil
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return Admin{}, false, err
	}
	now := s.now().UTC()
	a := Admin{
		ID:           uuid.New().String(),
		FullName:     strings.TrimSpace(in.FullName),
		Email:        otp.NormalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         RoleAdmin,
		IsActive:     true,
		Permissions:  FullGrants(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, a); err != nil {
		// A concurrent seed run losing the race gets the same outcome as
		// finding the admin up front.
		if errors.Is(err, apperr.ErrConflict) {
			return Admin{}, false, nil
		}
		return Admin{}, false, fmt.Errorf("create super admin: %w", err)
	}
	return a, true, nil
}
