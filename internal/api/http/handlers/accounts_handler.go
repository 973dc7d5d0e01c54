package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-market/internal/api/dto"
	"github.com/spec-kit/campus-market/internal/auth"
	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/service"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// AccountsHandler exposes account endpoints.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accounts *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accounts}
}

// Register handles POST /account.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.AccountRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	account, err := h.accounts.Register(c.UserContext(), req.Username, req.Email, req.PasswordHash)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"account": account})
}

// Login handles POST /account/login. A successful login issues a session
// token and mirrors it into the auth cookie.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.AccountLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	account, err := h.accounts.Login(c.UserContext(), req.Email, req.PasswordHash)
	if err != nil {
		return err
	}

	token, exp, err := h.accounts.IssueSession(account)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Expires:  exp,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{
		"account": account,
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Verify handles POST /account/verify.
func (h *AccountsHandler) Verify(c *fiber.Ctx) error {
	var req dto.AccountVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	account, err := h.accounts.Verify(c.UserContext(), req.Token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"account": account})
}

// Logout handles POST /account/logout. The session artifact lives only on
// the client, so logout just clears the cookie; an already-issued token
// stays valid until it expires.
func (h *AccountsHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.SendStatus(http.StatusNoContent)
}

// Update handles PATCH /account/:id.
func (h *AccountsHandler) Update(c *fiber.Ctx) error {
	var req dto.AccountUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	update := domain.AccountUpdate{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		IsVerified:   req.IsVerified,
	}

	account, err := h.accounts.Update(c.UserContext(), c.Params("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"account": account})
}

// Delete handles DELETE /account/:id. Listings owned by the account are
// not cascaded.
func (h *AccountsHandler) Delete(c *fiber.Ctx) error {
	account, err := h.accounts.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": account})
}
