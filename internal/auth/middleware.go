package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

const claimsKey = "session_claims"

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "auth_token"

// SessionMiddleware resolves session claims from the auth cookie or a
// Bearer header and stores them in the request locals. Routes that need an
// identity read it explicitly through ClaimsFromContext; nothing consults
// ambient state.
type SessionMiddleware struct {
	tokens *TokenManager
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(tokens *TokenManager) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens}
}

// Handle enforces a valid session for protected routes.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := TokenFromRequest(c)
	if tokenStr == "" {
		return apperrors.NewUnauthorized("missing session token")
	}

	claims := m.tokens.Verify(tokenStr)
	if claims == nil {
		return apperrors.NewUnauthorized("invalid session token")
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// TokenFromRequest extracts the raw session token, preferring the cookie
// over the Authorization header.
func TokenFromRequest(c *fiber.Ctx) string {
	if cookie := c.Cookies(SessionCookieName); cookie != "" {
		return cookie
	}

	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// ClaimsFromContext retrieves the authenticated session claims.
func ClaimsFromContext(c *fiber.Ctx) (*SessionClaims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*SessionClaims)
	return claims, ok
}
