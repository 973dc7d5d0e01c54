package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-market/internal/auth"
	"github.com/spec-kit/campus-market/internal/config"
	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/events"
	"github.com/spec-kit/campus-market/internal/repository"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// AccountService coordinates registration, login and account mutation.
type AccountService struct {
	accounts   repository.AccountRepository
	verifyRepo repository.VerificationTokenRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	verifyTTL  time.Duration
}

// AccountDependencies encapsulates collaborator requirements.
type AccountDependencies struct {
	AccountRepo      repository.AccountRepository
	VerificationRepo repository.VerificationTokenRepository
	Dispatcher       events.Dispatcher
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	return &AccountService{
		accounts:   deps.AccountRepo,
		verifyRepo: deps.VerificationRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenTTL()),
		verifyTTL:  cfg.Auth.VerificationTTL(),
	}
}

// Register creates a new unverified account. Duplicate emails are not
// checked here; a uniqueness violation from the store surfaces as a store
// failure. The password arrives pre-hashed, never as plaintext.
func (s *AccountService) Register(ctx context.Context, username, email, passwordHash string) (*domain.Account, error) {
	if username == "" || email == "" || passwordHash == "" {
		return nil, apperrors.NewValidationError("username, email and password_hash are required", nil)
	}

	account := &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.NewStoreError(err)
	}

	s.issueVerification(ctx, account)
	return account, nil
}

// issueVerification stores a single-use token and hands it to the
// notification pipeline. Registration itself never fails on this path.
func (s *AccountService) issueVerification(ctx context.Context, account *domain.Account) {
	if s.verifyRepo == nil || s.dispatcher == nil {
		return
	}

	token, err := auth.RandomToken()
	if err != nil {
		return
	}
	if err := s.verifyRepo.Store(ctx, token, account.UserID, s.verifyTTL); err != nil {
		return
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAccountRegistered,
		UserID:    account.UserID,
		Timestamp: time.Now().UTC(),
		Payload: events.AccountRegisteredPayload{
			Email:             account.Email,
			Username:          account.Username,
			VerificationToken: token,
		},
	})
}

// Login matches the stored digest by exact equality. Every failure mode
// collapses into the same credentials error so callers cannot tell which
// field was wrong.
func (s *AccountService) Login(ctx context.Context, email, passwordHash string) (*domain.Account, error) {
	if email == "" || passwordHash == "" {
		return nil, apperrors.NewValidationError("email and password_hash are required", nil)
	}

	account, err := s.accounts.GetByCredentials(ctx, email, passwordHash)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return account, nil
}

// IssueSession signs a session token for the account.
func (s *AccountService) IssueSession(account *domain.Account) (string, time.Time, error) {
	return s.tokenMgr.Issue(account.UserID, account.Email, account.Username)
}

// Update applies a partial account update.
func (s *AccountService) Update(ctx context.Context, userID string, update domain.AccountUpdate) (*domain.Account, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user_id is required", nil)
	}
	if update.IsEmpty() {
		return nil, apperrors.NewValidationError("no updates provided", nil)
	}

	account, err := s.accounts.Update(ctx, userID, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"user_id": userID})
		}
		return nil, apperrors.NewStoreError(err)
	}
	return account, nil
}

// Delete removes and returns the account. Listings owned by the account
// are left in place; there is no cascade.
func (s *AccountService) Delete(ctx context.Context, userID string) (*domain.Account, error) {
	if userID == "" {
		return nil, apperrors.NewValidationError("user_id is required", nil)
	}

	account, err := s.accounts.Delete(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"user_id": userID})
		}
		return nil, apperrors.NewStoreError(err)
	}
	return account, nil
}

// Verify consumes a single-use verification token and flips the account's
// verified flag. A replayed or expired token is indistinguishable from an
// unknown one.
func (s *AccountService) Verify(ctx context.Context, token string) (*domain.Account, error) {
	if token == "" {
		return nil, apperrors.NewValidationError("token is required", nil)
	}

	userID, err := s.verifyRepo.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, apperrors.NewNotFound("verification token", nil)
		}
		return nil, apperrors.NewStoreError(err)
	}

	verified := true
	account, err := s.accounts.Update(ctx, userID, domain.AccountUpdate{IsVerified: &verified})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", map[string]any{"user_id": userID})
		}
		return nil, apperrors.NewStoreError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAccountVerified,
			UserID:    account.UserID,
			Timestamp: time.Now().UTC(),
			Payload:   events.AccountVerifiedPayload{Email: account.Email},
		})
	}
	return account, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
