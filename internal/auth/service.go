// Package auth implements the OTP-based identity workflow: registration,
// verification, login, resend, and password reset. Each operation is a small
// fixed sequence of store reads/writes with no multi-step transaction; the
// stores' uniqueness constraints are the only serialization point.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oncoverse/oncoverse/internal/apperr"
	"github.com/oncoverse/oncoverse/internal/otp"
	"github.com/oncoverse/oncoverse/internal/patient"
	"github.com/oncoverse/oncoverse/internal/token"
)

// Service orchestrates the auth state machine over the OTP store, the
// patient identity store, and the token issuer.
type Service struct {
	patients patient.Repository
	otps     otp.Store
	tokens   *token.Issuer
	otpTTL   time.Duration
	resetTTL time.Duration
	now      func() time.Time
}

// NewService wires the auth workflow.
func NewService(patients patient.Repository, otps otp.Store, tokens *token.Issuer, otpTTL, resetTTL time.Duration) *Service {
	if otpTTL <= 0 {
		otpTTL = time.Minute
	}
	if resetTTL <= 0 {
		resetTTL = 5 * time.Minute
	}
	return &Service{
		patients: patients,
		otps:     otps,
		tokens:   tokens,
		otpTTL:   otpTTL,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

// OTPTTL exposes the registration code lifetime for response messages.
func (s *Service) OTPTTL() time.Duration { return s.otpTTL }

// ResetTTL exposes the reset code lifetime for response messages.
func (s *Service) ResetTTL() time.Duration { return s.resetTTL }

func (s *Service) issueCode(ctx context.Context, rec otp.Record, ttl time.Duration) (string, error) {
	code, err := otp.GenerateCode()
	if err != nil {
		return "", apperr.Internal(err)
	}
	rec.Code = code
	rec.ExpiresAt = s.now().Add(ttl)
	if err := s.otps.Issue(ctx, rec, ttl); err != nil {
		return "", apperr.Internal(err)
	}
	return code, nil
}

// RegisterInput starts a registration for a new email+phone pair.
type RegisterInput struct {
	FullName string
	Email    string
	Phone    string
}

// RegisterResult carries the raw codes back to the caller. The system has no
// outbound email/SMS channel; delivering the codes is the caller's problem.
type RegisterResult struct {
	OTPForEmail string `json:"otpForEmail"`
	OTPForPhone string `json:"otpForPhone"`
}

// Register pre-checks both channels for an existing owner (email first),
// then issues one fresh code per channel, superseding any live ones.
// No identity is created here: the OTP records carry the full name so the
// identity can be materialized at verification time.
func (s *Service) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	email := otp.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.FullName)

	if _, err := s.patients.FindByEmail(ctx, email); err == nil {
		return RegisterResult{}, apperr.Conflict("User with this email already exists")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return RegisterResult{}, apperr.Internal(err)
	}
	if _, err := s.patients.FindByPhone(ctx, in.Phone); err == nil {
		return RegisterResult{}, apperr.Conflict("User with this phone number already exists")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return RegisterResult{}, apperr.Internal(err)
	}

	emailCode, err := s.issueCode(ctx, otp.Record{
		FullName: name,
		Email:    email,
		Channel:  otp.ChannelEmail,
	}, s.otpTTL)
	if err != nil {
		return RegisterResult{}, err
	}
	phoneCode, err := s.issueCode(ctx, otp.Record{
		FullName: name,
		Phone:    in.Phone,
		Channel:  otp.ChannelPhone,
	}, s.otpTTL)
	if err != nil {
		return RegisterResult{}, err
	}

	return RegisterResult{OTPForEmail: emailCode, OTPForPhone: phoneCode}, nil
}

// VerifyRegistrationInput completes a registration. Both channels that were
// issued codes must verify independently.
type VerifyRegistrationInput struct {
	Email       string
	Phone       string
	OTPForEmail string
	OTPForPhone string
}

// SessionResult is a verified identity plus its session token.
type SessionResult struct {
	User  patient.View `json:"user"`
	Token string       `json:"token"`
}

// checkCode validates one channel's record against the supplied code. A
// missing record (never issued or evicted) is NotFound; a wrong code or a
// record past its logical expiry is Unauthorized. Nothing is mutated on
// failure, so a rejected code stays rejectable.
func (s *Service) checkCode(ctx context.Context, channel otp.Channel, key, code string) (otp.Record, error) {
	rec, ok, err := s.otps.Find(ctx, channel, key)
	if err != nil {
		return otp.Record{}, apperr.Internal(err)
	}
	if !ok {
		return otp.Record{}, apperr.NotFound(fmt.Sprintf("OTP expired for %s", channel))
	}
	if rec.Code != code {
		return otp.Record{}, apperr.Unauthorized(fmt.Sprintf("Invalid OTP for %s", channel))
	}
	if rec.ExpiresAt.Before(s.now()) {
		return otp.Record{}, apperr.Unauthorized(fmt.Sprintf("OTP expired for %s", channel))
	}
	return rec, nil
}

// VerifyRegistration validates both channel codes, consumes them, creates
// the identity, and issues a session token. The OTPs are consumed before the
// identity insert with no rollback: if the insert fails the codes are spent
// and the client must register again. The unique indexes catch a concurrent
// registration racing the same email or phone.
func (s *Service) VerifyRegistration(ctx context.Context, in VerifyRegistrationInput) (SessionResult, error) {
	email := otp.NormalizeEmail(in.Email)

	emailRec, err := s.checkCode(ctx, otp.ChannelEmail, email, in.OTPForEmail)
	if err != nil {
		return SessionResult{}, err
	}
	phoneRec, err := s.checkCode(ctx, otp.ChannelPhone, in.Phone, in.OTPForPhone)
	if err != nil {
		return SessionResult{}, err
	}

	if err := s.otps.Consume(ctx, otp.ChannelEmail, email); err != nil {
		return SessionResult{}, apperr.Internal(err)
	}
	if err := s.otps.Consume(ctx, otp.ChannelPhone, in.Phone); err != nil {
		return SessionResult{}, apperr.Internal(err)
	}

	now := s.now().UTC()
	created := patient.Patient{
		ID:         uuid.New().String(),
		FullName:   phoneRec.FullName,
		Email:      emailRec.Email,
		Phone:      phoneRec.Phone,
		IsVerified: true,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.patients.Create(ctx, created); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return SessionResult{}, err
		}
		return SessionResult{}, apperr.Internal(err)
	}

	signed, err := s.tokens.Issue(created.ID, token.AudiencePatient, token.ScopeAccess)
	if err != nil {
		return SessionResult{}, apperr.Internal(err)
	}
	return SessionResult{User: created.Sanitized(), Token: signed}, nil
}

// ResendInput re-issues a code on a single channel.
type ResendInput struct {
	FullName string
	Email    string
	Phone    string
	Channel  otp.Channel
}

// Resend issues a fresh code for the channel, invalidating any prior one.
func (s *Service) Resend(ctx context.Context, in ResendInput) (string, error) {
	rec := otp.Record{FullName: strings.TrimSpace(in.FullName), Channel: in.Channel}
	switch in.Channel {
	case otp.ChannelEmail:
		rec.Email = otp.NormalizeEmail(in.Email)
	case otp.ChannelPhone:
		rec.Phone = in.Phone
	default:
		return "", apperr.Invalid("Unknown channel")
	}
	return s.issueCode(ctx, rec, s.otpTTL)
}

// LoginEmailInput is the password login variant.
type LoginEmailInput struct {
	Email    string
	Password string
}

// LoginEmail authenticates by email+password and issues a session token.
// An unverified identity cannot log in regardless of password correctness.
func (s *Service) LoginEmail(ctx context.Context, in LoginEmailInput) (SessionResult, error) {
	p, err := s.patients.FindByEmail(ctx, otp.NormalizeEmail(in.Email))
	if err != nil {
		return SessionResult{}, err
	}
	if !p.IsVerified {
		return SessionResult{}, apperr.Unauthorized("User not verified")
	}
	if !p.VerifyPassword(in.Password) {
		return SessionResult{}, apperr.Unauthorized("Invalid email or password")
	}

	signed, err := s.tokens.Issue(p.ID, token.AudiencePatient, token.ScopeAccess)
	if err != nil {
		return SessionResult{}, apperr.Internal(err)
	}
	return SessionResult{User: p.Sanitized(), Token: signed}, nil
}

// LoginPhone starts the OTP login variant: it issues a login code to a
// verified identity's phone; VerifyLoginOTP completes the exchange.
func (s *Service) LoginPhone(ctx context.Context, phone string) (string, error) {
	p, err := s.patients.FindByPhone(ctx, phone)
	if err != nil {
		return "", err
	}
	if !p.IsVerified {
		return "", apperr.Unauthorized("User not verified")
	}
	return s.issueCode(ctx, otp.Record{
		FullName: p.FullName,
		Email:    p.Email,
		Phone:    p.Phone,
		Channel:  otp.ChannelPhone,
	}, s.otpTTL)
}

// VerifyLoginOTP completes an OTP login and issues the session token.
func (s *Service) VerifyLoginOTP(ctx context.Context, phone, code string) (SessionResult, error) {
	p, err := s.patients.FindByPhone(ctx, phone)
	if err != nil {
		return SessionResult{}, err
	}

	if _, err := s.checkCode(ctx, otp.ChannelPhone, phone, code); err != nil {
		return SessionResult{}, err
	}
	if err := s.otps.Consume(ctx, otp.ChannelPhone, phone); err != nil {
		return SessionResult{}, apperr.Internal(err)
	}

	signed, err := s.tokens.Issue(p.ID, token.AudiencePatient, token.ScopeAccess)
	if err != nil {
		return SessionResult{}, apperr.Internal(err)
	}
	return SessionResult{User: p.Sanitized(), Token: signed}, nil
}

// ForgotPassword issues a reset code to a known email. Per the product
// contract this leaks identity existence: an unknown email is NotFound.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	p, err := s.patients.FindByEmail(ctx, otp.NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	return s.issueCode(ctx, otp.Record{
		FullName: p.FullName,
		Email:    p.Email,
		Phone:    p.Phone,
		Channel:  otp.ChannelEmail,
	}, s.resetTTL)
}

// VerifyResetOTP validates a reset code and issues a token scoped to setting
// a new password. The password itself is untouched here.
func (s *Service) VerifyResetOTP(ctx context.Context, email, code string) (string, error) {
	p, err := s.patients.FindByEmail(ctx, otp.NormalizeEmail(email))
	if err != nil {
		return "", err
	}

	if _, err := s.checkCode(ctx, otp.ChannelEmail, p.Email, code); err != nil {
		return "", err
	}
	if err := s.otps.Consume(ctx, otp.ChannelEmail, p.Email); err != nil {
		return "", apperr.Internal(err)
	}

	signed, err := s.tokens.Issue(p.ID, token.AudiencePatient, token.ScopePasswordReset)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return signed, nil
}

// SetPassword hashes and persists a new password for the authenticated
// subject. After this the previous password no longer authenticates.
func (s *Service) SetPassword(ctx context.Context, userID, password string) (patient.View, error) {
	p, err := s.patients.FindByID(ctx, userID)
	if err != nil {
		return patient.View{}, err
	}

	hash, err := patient.HashPassword(password)
	if err != nil {
		return patient.View{}, apperr.Internal(err)
	}
	if err := s.patients.UpdatePassword(ctx, p.ID, hash); err != nil {
		return patient.View{}, err
	}

	p.PasswordHash = hash
	return p.Sanitized(), nil
}
