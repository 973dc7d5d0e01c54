package domain

import "time"

// ListingCategory enumerates the marketplace categories.
type ListingCategory string

const (
	CategoryTextbooks   ListingCategory = "textbooks"
	CategoryElectronics ListingCategory = "electronics"
	CategoryFurniture   ListingCategory = "furniture"
	CategoryClothing    ListingCategory = "clothing"
	CategoryTickets     ListingCategory = "tickets"
	CategoryServices    ListingCategory = "services"
	CategoryHousing     ListingCategory = "housing"
	CategoryOther       ListingCategory = "other"
)

// ValidCategory reports whether the value is a known category.
func ValidCategory(c ListingCategory) bool {
	switch c {
	case CategoryTextbooks, CategoryElectronics, CategoryFurniture, CategoryClothing,
		CategoryTickets, CategoryServices, CategoryHousing, CategoryOther:
		return true
	}
	return false
}

// Listing is a marketplace post describing an item or service for sale.
type Listing struct {
	PostID    string          `json:"post_id"`
	UserID    string          `json:"user_id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Category  ListingCategory `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ListingUpdate enumerates the mutable listing columns. Nil fields are
// left untouched; updated_at is refreshed regardless.
type ListingUpdate struct {
	Title    *string
	Content  *string
	Category *ListingCategory
}

// IsEmpty reports whether the update carries no fields at all.
func (u ListingUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Category == nil
}
