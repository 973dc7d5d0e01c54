package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/events"
	"github.com/spec-kit/campus-market/internal/repository"
)

// fakeAccountRepository keeps accounts in memory with store-like semantics:
// uuid assignment on insert, unique email, pgx.ErrNoRows on misses.
type fakeAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{accounts: make(map[string]*domain.Account)}
}

func (f *fakeAccountRepository) Create(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Email == account.Email {
			return fmt.Errorf("duplicate key value violates unique constraint %q", "accounts_email_key")
		}
	}
	account.UserID = uuid.NewString()
	account.IsVerified = false
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	stored := *account
	f.accounts[account.UserID] = &stored
	return nil
}

func (f *fakeAccountRepository) GetByID(_ context.Context, userID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepository) GetByCredentials(_ context.Context, email, passwordHash string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email && account.PasswordHash == passwordHash {
			copied := *account
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccountRepository) Update(_ context.Context, userID string, update domain.AccountUpdate) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if update.Username != nil {
		account.Username = *update.Username
	}
	if update.Email != nil {
		account.Email = *update.Email
	}
	if update.PasswordHash != nil {
		account.PasswordHash = *update.PasswordHash
	}
	if update.IsVerified != nil {
		account.IsVerified = *update.IsVerified
	}
	account.UpdatedAt = time.Now().UTC()
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepository) Delete(_ context.Context, userID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	delete(f.accounts, userID)
	return account, nil
}

// fakeListingRepository mirrors the Postgres ordering and windowing
// behavior so pagination properties can be asserted end to end.
type fakeListingRepository struct {
	mu         sync.Mutex
	listings   []domain.Listing
	lastFilter repository.ListingFilter
}

func newFakeListingRepository() *fakeListingRepository {
	return &fakeListingRepository{}
}

func (f *fakeListingRepository) Create(_ context.Context, listing *domain.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing.PostID = uuid.NewString()
	f.listings = append(f.listings, *listing)
	return nil
}

func (f *fakeListingRepository) List(_ context.Context, filter repository.ListingFilter) ([]domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter

	var matched []domain.Listing
	for _, listing := range f.listings {
		if filter.OwnerID != nil && listing.UserID != *filter.OwnerID {
			continue
		}
		if filter.Category != nil && listing.Category != *filter.Category {
			continue
		}
		matched = append(matched, listing)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (f *fakeListingRepository) Update(_ context.Context, postID string, update domain.ListingUpdate, updatedAt time.Time) (*domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.listings {
		if f.listings[i].PostID != postID {
			continue
		}
		if update.Title != nil {
			f.listings[i].Title = *update.Title
		}
		if update.Content != nil {
			f.listings[i].Content = *update.Content
		}
		if update.Category != nil {
			f.listings[i].Category = *update.Category
		}
		f.listings[i].UpdatedAt = updatedAt
		copied := f.listings[i]
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeListingRepository) Delete(_ context.Context, postID string) (*domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.listings {
		if f.listings[i].PostID != postID {
			continue
		}
		deleted := f.listings[i]
		f.listings = append(f.listings[:i], f.listings[i+1:]...)
		return &deleted, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeListingRepository) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listings)
}

// fakeVerificationRepository keeps tokens in a map; TTL is ignored because
// tests never wait it out.
type fakeVerificationRepository struct {
	mu     sync.Mutex
	tokens map[string]string
}

func newFakeVerificationRepository() *fakeVerificationRepository {
	return &fakeVerificationRepository{tokens: make(map[string]string)}
}

func (f *fakeVerificationRepository) Store(_ context.Context, token, userID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = userID
	return nil
}

func (f *fakeVerificationRepository) Consume(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, ok := f.tokens[token]
	if !ok {
		return "", repository.ErrTokenNotFound
	}
	delete(f.tokens, token)
	return userID, nil
}

// capturingDispatcher records every published event.
type capturingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func newCapturingDispatcher() *capturingDispatcher {
	return &capturingDispatcher{}
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *capturingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}
