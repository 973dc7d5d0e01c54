package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/campus-market/internal/domain"
)

// ListingFilter captures browse parameters. Limit and Offset are expected
// to arrive clamped by the service layer.
type ListingFilter struct {
	OwnerID  *string
	Category *domain.ListingCategory
	Limit    int
	Offset   int
}

// ListingRepository encapsulates listing persistence.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	List(ctx context.Context, filter ListingFilter) ([]domain.Listing, error)
	Update(ctx context.Context, postID string, update domain.ListingUpdate, updatedAt time.Time) (*domain.Listing, error)
	Delete(ctx context.Context, postID string) (*domain.Listing, error)
}

type listingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository instantiates repository.
func NewListingRepository(pool *pgxpool.Pool) ListingRepository {
	return &listingRepository{pool: pool}
}

const listingColumns = "post_id, user_id, title, content, category, created_at, updated_at"

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	const query = `
        INSERT INTO posts (user_id, title, content, category, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING post_id`

	return r.pool.QueryRow(ctx, query,
		listing.UserID,
		listing.Title,
		listing.Content,
		listing.Category,
		listing.CreatedAt,
		listing.UpdatedAt,
	).Scan(&listing.PostID)
}

func (r *listingRepository) List(ctx context.Context, filter ListingFilter) ([]domain.Listing, error) {
	base := fmt.Sprintf(`SELECT %s FROM posts`, listingColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func (r *listingRepository) Update(ctx context.Context, postID string, update domain.ListingUpdate, updatedAt time.Time) (*domain.Listing, error) {
	args := []any{updatedAt}
	sets := []string{"updated_at=$1"}

	if update.Title != nil {
		args = append(args, *update.Title)
		sets = append(sets, fmt.Sprintf("title=$%d", len(args)))
	}
	if update.Content != nil {
		args = append(args, *update.Content)
		sets = append(sets, fmt.Sprintf("content=$%d", len(args)))
	}
	if update.Category != nil {
		args = append(args, *update.Category)
		sets = append(sets, fmt.Sprintf("category=$%d", len(args)))
	}

	args = append(args, postID)
	query := fmt.Sprintf(`UPDATE posts SET %s WHERE post_id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), listingColumns)

	return r.fetchSingle(ctx, query, args...)
}

func (r *listingRepository) Delete(ctx context.Context, postID string) (*domain.Listing, error) {
	query := fmt.Sprintf(`DELETE FROM posts WHERE post_id=$1 RETURNING %s`, listingColumns)
	return r.fetchSingle(ctx, query, postID)
}

func (r *listingRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Listing, error) {
	var listing domain.Listing
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&listing.PostID,
		&listing.UserID,
		&listing.Title,
		&listing.Content,
		&listing.Category,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &listing, nil
}

func scanListings(rows pgx.Rows) ([]domain.Listing, error) {
	var result []domain.Listing
	for rows.Next() {
		var listing domain.Listing
		if err := rows.Scan(
			&listing.PostID,
			&listing.UserID,
			&listing.Title,
			&listing.Content,
			&listing.Category,
			&listing.CreatedAt,
			&listing.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, listing)
	}
	return result, rows.Err()
}
