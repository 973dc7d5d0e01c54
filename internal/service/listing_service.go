package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/events"
	"github.com/spec-kit/campus-market/internal/repository"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

const (
	defaultPageSize = 20
	minPageSize     = 1
	maxPageSize     = 100
)

// ListingQuery captures browse parameters before clamping. A zero Limit
// means "not supplied".
type ListingQuery struct {
	OwnerID  *string
	Category *domain.ListingCategory
	Limit    int
	Offset   int
}

// ListingService coordinates listing CRUD.
type ListingService struct {
	listings   repository.ListingRepository
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
}

// NewListingService builds the service.
func NewListingService(listings repository.ListingRepository, accounts repository.AccountRepository, dispatcher events.Dispatcher) *ListingService {
	return &ListingService{listings: listings, accounts: accounts, dispatcher: dispatcher}
}

// List returns listings newest-first within the [offset, offset+limit)
// window. Pagination is offset-based only; page boundaries can shift under
// concurrent inserts.
func (s *ListingService) List(ctx context.Context, query ListingQuery) ([]domain.Listing, error) {
	if query.Category != nil && !domain.ValidCategory(*query.Category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": *query.Category})
	}

	filter := repository.ListingFilter{
		OwnerID:  query.OwnerID,
		Category: query.Category,
		Limit:    clampLimit(query.Limit),
		Offset:   clampOffset(query.Offset),
	}

	listings, err := s.listings.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewStoreError(err)
	}
	return listings, nil
}

// Create inserts a listing for a verified owner. The owner check and the
// insert are two separate store calls; a concurrent account change between
// them is not guarded against.
func (s *ListingService) Create(ctx context.Context, ownerID, title, content string, category domain.ListingCategory) (*domain.Listing, error) {
	if ownerID == "" || title == "" || content == "" {
		return nil, apperrors.NewValidationError("user_id, title and content are required", nil)
	}
	if category == "" {
		category = domain.CategoryOther
	}
	if !domain.ValidCategory(category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": category})
	}

	account, err := s.accounts.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"user_id": ownerID})
		}
		return nil, apperrors.NewStoreError(err)
	}
	if !account.IsVerified {
		return nil, apperrors.NewForbidden("email not verified")
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		UserID:    ownerID,
		Title:     title,
		Content:   content,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventListingCreated,
			UserID:    ownerID,
			Timestamp: now,
			Payload: events.ListingCreatedPayload{
				PostID:   listing.PostID,
				Title:    listing.Title,
				Category: listing.Category,
			},
		})
	}
	return listing, nil
}

// Update applies a partial listing update and refreshes updated_at.
// Ownership of the listing is not checked here; the reference system leaves
// that to the caller.
func (s *ListingService) Update(ctx context.Context, postID string, update domain.ListingUpdate) (*domain.Listing, error) {
	if postID == "" {
		return nil, apperrors.NewValidationError("post_id is required", nil)
	}
	if update.IsEmpty() {
		return nil, apperrors.NewValidationError("no updates provided", nil)
	}
	if update.Category != nil && !domain.ValidCategory(*update.Category) {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": *update.Category})
	}

	listing, err := s.listings.Update(ctx, postID, update, time.Now().UTC())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", map[string]any{"post_id": postID})
		}
		return nil, apperrors.NewStoreError(err)
	}
	return listing, nil
}

// Delete removes and returns the listing. Repeating a delete fails with
// not-found rather than succeeding silently.
func (s *ListingService) Delete(ctx context.Context, postID string) (*domain.Listing, error) {
	if postID == "" {
		return nil, apperrors.NewValidationError("post_id is required", nil)
	}

	listing, err := s.listings.Delete(ctx, postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("post", map[string]any{"post_id": postID})
		}
		return nil, apperrors.NewStoreError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventListingDeleted,
			UserID:    listing.UserID,
			Timestamp: time.Now().UTC(),
			Payload:   events.ListingDeletedPayload{PostID: listing.PostID, Title: listing.Title},
		})
	}
	return listing, nil
}

func clampLimit(limit int) int {
	if limit == 0 {
		return defaultPageSize
	}
	if limit < minPageSize {
		return minPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
