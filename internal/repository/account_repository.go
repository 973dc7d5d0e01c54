package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/campus-market/internal/domain"
)

// AccountRepository encapsulates account persistence.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, userID string) (*domain.Account, error)
	GetByCredentials(ctx context.Context, email, passwordHash string) (*domain.Account, error)
	Update(ctx context.Context, userID string, update domain.AccountUpdate) (*domain.Account, error)
	Delete(ctx context.Context, userID string) (*domain.Account, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = "user_id, username, email, password_hash, is_verified, created_at, updated_at"

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (username, email, password_hash, is_verified)
        VALUES ($1, $2, $3, FALSE)
        RETURNING user_id, is_verified, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		account.Username,
		account.Email,
		account.PasswordHash,
	).Scan(&account.UserID, &account.IsVerified, &account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) GetByID(ctx context.Context, userID string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE user_id=$1`, accountColumns)
	return r.fetchSingle(ctx, query, userID)
}

func (r *accountRepository) GetByCredentials(ctx context.Context, email, passwordHash string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE email=$1 AND password_hash=$2`, accountColumns)
	return r.fetchSingle(ctx, query, email, passwordHash)
}

func (r *accountRepository) Update(ctx context.Context, userID string, update domain.AccountUpdate) (*domain.Account, error) {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	if update.Username != nil {
		args = append(args, *update.Username)
		sets = append(sets, fmt.Sprintf("username=$%d", len(args)))
	}
	if update.Email != nil {
		args = append(args, *update.Email)
		sets = append(sets, fmt.Sprintf("email=$%d", len(args)))
	}
	if update.PasswordHash != nil {
		args = append(args, *update.PasswordHash)
		sets = append(sets, fmt.Sprintf("password_hash=$%d", len(args)))
	}
	if update.IsVerified != nil {
		args = append(args, *update.IsVerified)
		sets = append(sets, fmt.Sprintf("is_verified=$%d", len(args)))
	}

	args = append(args, userID)
	query := fmt.Sprintf(`UPDATE accounts SET %s WHERE user_id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), accountColumns)

	return r.fetchSingle(ctx, query, args...)
}

func (r *accountRepository) Delete(ctx context.Context, userID string) (*domain.Account, error) {
	query := fmt.Sprintf(`DELETE FROM accounts WHERE user_id=$1 RETURNING %s`, accountColumns)
	return r.fetchSingle(ctx, query, userID)
}

func (r *accountRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Account, error) {
	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&account.UserID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.IsVerified,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}
