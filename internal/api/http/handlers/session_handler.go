package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-market/internal/api/dto"
	"github.com/spec-kit/campus-market/internal/auth"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// SessionHandler exposes the current-session endpoint.
type SessionHandler struct{}

// NewSessionHandler constructs handler.
func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Get handles GET /session. The session middleware has already verified
// the token; this only echoes the claims it stored.
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no session")
	}

	return c.JSON(fiber.Map{"session": dto.SessionResponse{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Username:  claims.Username,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}})
}
