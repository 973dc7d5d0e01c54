package domain

import "time"

// Account is the domain model for marketplace members.
type Account struct {
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountUpdate enumerates the mutable account columns. Nil fields are
// left untouched.
type AccountUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
	IsVerified   *bool
}

// IsEmpty reports whether the update carries no fields at all.
func (u AccountUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil && u.IsVerified == nil
}
