package events

import (
	"time"

	"github.com/spec-kit/campus-market/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered EventType = "account_registered"
	EventAccountVerified   EventType = "account_verified"
	EventListingCreated    EventType = "listing_created"
	EventListingDeleted    EventType = "listing_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AccountRegisteredPayload carries what the verification email needs.
type AccountRegisteredPayload struct {
	Email             string `json:"email"`
	Username          string `json:"username"`
	VerificationToken string `json:"verification_token"`
}

// AccountVerifiedPayload payload.
type AccountVerifiedPayload struct {
	Email string `json:"email"`
}

// ListingCreatedPayload payload.
type ListingCreatedPayload struct {
	PostID   string                 `json:"post_id"`
	Title    string                 `json:"title"`
	Category domain.ListingCategory `json:"category"`
}

// ListingDeletedPayload payload.
type ListingDeletedPayload struct {
	PostID string `json:"post_id"`
	Title  string `json:"title"`
}
