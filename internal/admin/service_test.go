package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oncoverse/oncoverse/internal/apperr"
	"github.com/oncoverse/oncoverse/internal/otp"
	"github.com/oncoverse/oncoverse/internal/token"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	issuer, err := token.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return NewService(NewMemoryRepository(), otp.NewMemoryStore(), issuer, time.Minute)
}

func seed(t *testing.T, svc *Service) Admin {
	t.Helper()
	a, created, err := svc.Seed(context.Background(), SeedInput{
		FullName: "Super Admin",
		Email:    "admin@oncoverse.com",
		Password: "Admin@123",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !created {
		t.Fatal("expected seed to create the super admin")
	}
	return a
}

func TestSeedCreatesFullGrantAdminOnce(t *testing.T) {
	svc := newTestService(t)
	a := seed(t, svc)

	if a.Role != RoleAdmin || !a.IsActive {
		t.Fatalf("unexpected seeded admin: %+v", a)
	}
	if len(a.Permissions) != len(Catalog) {
		t.Fatalf("expected %d grants, got %d", len(Catalog), len(a.Permissions))
	}
	for _, p := range a.Permissions {
		if !p.View || !p.Edit {
			t.Fatalf("expected full grant for %s", p.Name)
		}
	}

	if _, created, err := svc.Seed(context.Background(), SeedInput{
		FullName: "Second",
		Email:    "second@oncoverse.com",
		Password: "Admin@123",
	}); err != nil || created {
		t.Fatalf("second seed must be a no-op, got created=%v err=%v", created, err)
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService(t)
	seed(t, svc)

	session, err := svc.Login(context.Background(), "Admin@Oncoverse.com", "Admin@123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" || session.Admin.Email != "admin@oncoverse.com" {
		t.Fatalf("unexpected session: %+v", session)
	}

	if _, err := svc.Login(context.Background(), "admin@oncoverse.com", "Wrong@123"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for wrong password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@oncoverse.com", "Admin@123"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for unknown email, got %v", err)
	}
}

func TestLoginTokenHasAdminAudience(t *testing.T) {
	svc := newTestService(t)
	seed(t, svc)
	issuer, _ := token.NewIssuer("test-secret", time.Hour)

	session, err := svc.Login(context.Background(), "admin@oncoverse.com", "Admin@123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := issuer.Verify(session.Token, token.AudienceAdmin); err != nil {
		t.Fatalf("token must carry the admin audience: %v", err)
	}
	if _, err := issuer.Verify(session.Token, token.AudiencePatient); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("admin token must not verify for the patient audience, got %v", err)
	}
}

func TestPasswordResetRoundTrip(t *testing.T) {
	svc := newTestService(t)
	seed(t, svc)
	issuer, _ := token.NewIssuer("test-secret", time.Hour)

	code, err := svc.ForgotPassword(context.Background(), "admin@oncoverse.com")
	if err != nil {
		t.Fatalf("forgot password: %v", err)
	}

	if _, err := svc.VerifyResetOTP(context.Background(), "admin@oncoverse.com", "000000"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for wrong code, got %v", err)
	}

	signed, err := svc.VerifyResetOTP(context.Background(), "admin@oncoverse.com", code)
	if err != nil {
		t.Fatalf("verify reset otp: %v", err)
	}
	claims, err := issuer.Verify(signed, token.AudienceAdmin)
	if err != nil {
		t.Fatalf("reset token invalid: %v", err)
	}
	if claims.Scope != token.ScopePasswordReset {
		t.Fatalf("expected password_reset scope, got %s", claims.Scope)
	}

	if _, err := svc.ResetPassword(context.Background(), claims.Subject, "NewAdmin@123"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if _, err := svc.Login(context.Background(), "admin@oncoverse.com", "NewAdmin@123"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := svc.Login(context.Background(), "admin@oncoverse.com", "Admin@123"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("old password must no longer authenticate, got %v", err)
	}

	// The reset code is single use.
	if _, err := svc.VerifyResetOTP(context.Background(), "admin@oncoverse.com", code); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for consumed code, got %v", err)
	}
}

func TestCan(t *testing.T) {
	full := Admin{Role: RoleAdmin}
	if !full.Can("view_patients", GrantView) || !full.Can("anything_at_all", GrantEdit) {
		t.Fatal("admin role must bypass grant checks")
	}

	sub := Admin{
		Role: RoleSubAdmin,
		Permissions: []Permission{
			{Name: "view_patients", View: true, Edit: false},
		},
	}
	if !sub.Can("view_patients", GrantView) {
		t.Fatal("granted view must pass")
	}
	if sub.Can("view_patients", GrantEdit) {
		t.Fatal("ungranted edit must fail")
	}
	if sub.Can("view_payments", GrantView) {
		t.Fatal("absent permission must fail")
	}
}
