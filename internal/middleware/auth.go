package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/oncoverse/oncoverse/internal/apperr"
	"github.com/oncoverse/oncoverse/internal/token"
)

const (
	subjectKey = "subject_id"
	scopeKey   = "token_scope"
)

// RequireAuth validates the bearer token for one audience and stores the
// verified subject on the request. An absent or invalid token is rejected
// before any workflow runs.
func RequireAuth(tokens *token.Issuer, audience string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return apperr.Unauthorized("Missing bearer token")
		}
		raw := strings.TrimSpace(authz[len("Bearer "):])

		claims, err := tokens.Verify(raw, audience)
		if err != nil {
			return err
		}

		c.Locals(subjectKey, claims.Subject)
		c.Locals(scopeKey, claims.Scope)
		return c.Next()
	}
}

// SubjectID returns the authenticated subject set by RequireAuth.
func SubjectID(c *fiber.Ctx) string {
	id, _ := c.Locals(subjectKey).(string)
	return id
}

// TokenScope returns the scope of the credential set by RequireAuth.
func TokenScope(c *fiber.Ctx) string {
	scope, _ := c.Locals(scopeKey).(string)
	return scope
}

// RequireScope restricts a route to tokens carrying one of the listed
// scopes. It runs after RequireAuth, so a reset-scoped token cannot reach
// anything beyond the password endpoints it was minted for.
func RequireScope(scopes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		held := TokenScope(c)
		for _, scope := range scopes {
			if held == scope {
				return c.Next()
			}
		}
		return apperr.Forbidden("Insufficient token scope")
	}
}
