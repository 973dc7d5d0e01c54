package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-market/internal/api/dto"
	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/service"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// ListingsHandler exposes listing endpoints.
type ListingsHandler struct {
	listings *service.ListingService
}

// NewListingsHandler constructs handler.
func NewListingsHandler(listings *service.ListingService) *ListingsHandler {
	return &ListingsHandler{listings: listings}
}

// List handles GET /posts. Query params: user_id, category, limit, offset.
// Out-of-range limit and offset values are clamped, not rejected.
func (h *ListingsHandler) List(c *fiber.Ctx) error {
	query := service.ListingQuery{}

	if userID := c.Query("user_id"); userID != "" {
		query.OwnerID = &userID
	}
	if category := c.Query("category"); category != "" {
		cat := domain.ListingCategory(category)
		query.Category = &cat
	}
	if limit := c.Query("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil {
			return apperrors.NewValidationError("limit must be an integer", nil)
		}
		query.Limit = parsed
	}
	if offset := c.Query("offset"); offset != "" {
		parsed, err := strconv.Atoi(offset)
		if err != nil {
			return apperrors.NewValidationError("offset must be an integer", nil)
		}
		query.Offset = parsed
	}

	listings, err := h.listings.List(c.UserContext(), query)
	if err != nil {
		return err
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return c.JSON(fiber.Map{"posts": listings})
}

// Create handles POST /posts.
func (h *ListingsHandler) Create(c *fiber.Ctx) error {
	var req dto.ListingCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	listing, err := h.listings.Create(c.UserContext(), req.UserID, req.Title, req.Content, domain.ListingCategory(req.Category))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"post": listing})
}

// Update handles PATCH /posts/:id.
func (h *ListingsHandler) Update(c *fiber.Ctx) error {
	var req dto.ListingUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	update := domain.ListingUpdate{
		Title:   req.Title,
		Content: req.Content,
	}
	if req.Category != nil {
		cat := domain.ListingCategory(*req.Category)
		update.Category = &cat
	}

	listing, err := h.listings.Update(c.UserContext(), c.Params("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"post": listing})
}

// Delete handles DELETE /posts/:id.
func (h *ListingsHandler) Delete(c *fiber.Ctx) error {
	listing, err := h.listings.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": listing})
}
