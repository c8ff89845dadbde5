package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/oncoverse/oncoverse/internal/apperr"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer, err := NewIssuer("secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	signed, err := issuer.Issue("user-1", AudiencePatient, ScopeAccess)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Verify(signed, AudiencePatient)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected subject user-1, got %s", claims.Subject)
	}
	if claims.Scope != ScopeAccess {
		t.Errorf("expected access scope, got %s", claims.Scope)
	}
}

func TestVerifyRejectsWrongAudience(t *testing.T) {
	issuer, _ := NewIssuer("secret", time.Hour)
	signed, _ := issuer.Issue("user-1", AudiencePatient, ScopeAccess)

	if _, err := issuer.Verify(signed, AudienceAdmin); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for admin audience, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuer, _ := NewIssuer("secret", -time.Minute)
	signed, _ := issuer.Issue("user-1", AudiencePatient, ScopeAccess)

	if _, err := issuer.Verify(signed, AudiencePatient); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	issuer, _ := NewIssuer("secret", time.Hour)
	other, _ := NewIssuer("other-secret", time.Hour)

	signed, _ := other.Issue("user-1", AudiencePatient, ScopeAccess)
	if _, err := issuer.Verify(signed, AudiencePatient); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for foreign signature, got %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatal("expected compact JWT")
	}
	mangled := parts[0] + "." + parts[1] + ".AAAA"
	if _, err := issuer.Verify(mangled, AudiencePatient); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for mangled token, got %v", err)
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestResetScopeSurvivesRoundTrip(t *testing.T) {
	issuer, _ := NewIssuer("secret", time.Hour)
	signed, _ := issuer.Issue("admin-1", AudienceAdmin, ScopePasswordReset)

	claims, err := issuer.Verify(signed, AudienceAdmin)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Scope != ScopePasswordReset {
		t.Errorf("expected password_reset scope, got %s", claims.Scope)
	}
}
