package dto

// ListingCreateRequest payload for new listings.
type ListingCreateRequest struct {
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// ListingUpdateRequest payload for partial listing updates.
type ListingUpdateRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}
