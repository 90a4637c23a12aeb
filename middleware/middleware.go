// Package middleware provides Fiber handlers that gate requests on the
// aggregated auth state and on subscription features.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	unifiedauth "github.com/imperfectbreath/go-unifiedauth"
	"github.com/imperfectbreath/go-unifiedauth/subscription"
)

const (
	// ClaimsContextKey is the Locals key holding validated token claims.
	ClaimsContextKey = "auth_claims"
	// SessionContextKey is the Locals key holding the auth session snapshot.
	SessionContextKey = "auth_session"

	authScheme = "Bearer"
)

// RequireToken extracts a bearer token from the Authorization header,
// validates it, and stores the claims in Locals and the request context.
func RequireToken(validator unifiedauth.TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := tokenFromHeader(c)
		if err != nil {
			return unauthorized(c, "missing or malformed token")
		}

		claims, err := validator.Validate(raw)
		if err != nil {
			if unifiedauth.IsTokenExpiredError(err) {
				return unauthorized(c, "token expired")
			}
			return unauthorized(c, "invalid token")
		}

		c.Locals(ClaimsContextKey, claims)
		c.SetUserContext(unifiedauth.WithClaimsContext(c.UserContext(), claims))

		return c.Next()
	}
}

// RequireAuthLevel rejects requests whose current auth session is below the
// given level. The session snapshot is stored in Locals for handlers.
func RequireAuthLevel(store *unifiedauth.Store, min unifiedauth.AuthLevel) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := store.Snapshot()
		if !unifiedauth.AuthLevelIsAtLeast(session.AuthLevel(), min) {
			return unauthorized(c, "authentication level too low")
		}

		c.Locals(SessionContextKey, session)
		c.SetUserContext(unifiedauth.WithSessionContext(c.UserContext(), session))

		return c.Next()
	}
}

// RequireFeature rejects requests when the current subscription tier does
// not include the feature.
func RequireFeature(resolver *subscription.Resolver, feature string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := subscription.Require(resolver, feature); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "feature_not_allowed",
				"feature": feature,
			})
		}
		return c.Next()
	}
}

// SessionFromCtx returns the session snapshot stored by RequireAuthLevel.
func SessionFromCtx(c *fiber.Ctx) (unifiedauth.AuthSession, bool) {
	session, ok := c.Locals(SessionContextKey).(unifiedauth.AuthSession)
	return session, ok
}

// ClaimsFromCtx returns the claims stored by RequireToken.
func ClaimsFromCtx(c *fiber.Ctx) (*unifiedauth.JWTClaims, bool) {
	claims, ok := c.Locals(ClaimsContextKey).(*unifiedauth.JWTClaims)
	return claims, ok
}

func tokenFromHeader(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) {
		return strings.TrimSpace(header[l:]), nil
	}
	return "", fiber.ErrUnauthorized
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
	})
}
