package dto

import "time"

// AccountRegisterRequest payload for new accounts. The password arrives
// already digested; plaintext never crosses the wire.
type AccountRegisterRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// AccountLoginRequest payload for login.
type AccountLoginRequest struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// AccountUpdateRequest payload for partial account updates. Absent fields
// are left untouched; unknown fields are ignored.
type AccountUpdateRequest struct {
	Username     *string `json:"username"`
	Email        *string `json:"email"`
	PasswordHash *string `json:"password_hash"`
	IsVerified   *bool   `json:"is_verified"`
}

// AccountVerifyRequest payload for consuming a verification token.
type AccountVerifyRequest struct {
	Token string `json:"token"`
}

// AuthResponse standard response for session issuance.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse echoes the claims of a verified session.
type SessionResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
