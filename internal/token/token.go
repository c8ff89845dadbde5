// Package token issues and verifies the signed session credentials that bind
// a subject id to an audience (patient or admin) and a scope.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oncoverse/oncoverse/internal/apperr"
)

// Audiences keep the patient and admin identity namespaces disjoint: a token
// minted for one surface never authenticates on the other.
const (
	AudiencePatient = "patient"
	AudienceAdmin   = "admin"
)

// Scopes limit what an authenticated holder may do.
const (
	ScopeAccess        = "access"
	ScopePasswordReset = "password_reset"
)

// Claims is the verified content of a session token.
type Claims struct {
	Subject  string
	Audience string
	Scope    string
}

type signedClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens with a fixed validity window.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer builds an Issuer. A missing secret is a fatal configuration
// error, not something to retry per request.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a token for the subject, valid for the issuer's window.
func (i *Issuer) Issue(subjectID, audience, scope string) (string, error) {
	now := time.Now()
	claims := signedClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, and audience, and returns the claims.
// Any failure is Unauthorized: the boundary rejects before a workflow runs.
func (i *Issuer) Verify(tokenStr, audience string) (Claims, error) {
	var claims signedClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, apperr.Unauthorized("Invalid or expired token")
	}
	if claims.Subject == "" {
		return Claims{}, apperr.Unauthorized("Invalid or expired token")
	}

	scope := claims.Scope
	if scope == "" {
		scope = ScopeAccess
	}
	return Claims{Subject: claims.Subject, Audience: audience, Scope: scope}, nil
}
