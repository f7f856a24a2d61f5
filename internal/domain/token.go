package domain

import "time"

// AccessToken represents an issued bearer token. The row is keyed by the
// JWT jti claim; revocation marks exactly one row and never touches the
// user's other tokens.
type AccessToken struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Revoked   bool      `json:"revoked" db:"revoked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

// TokenClaims represents the claims carried by a signed access token
type TokenClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	TokenID string `json:"jti"`
	Exp     int64  `json:"exp"`
	Iat     int64  `json:"iat"`
}

// IsExpired checks if the token is expired
func (tc TokenClaims) IsExpired() bool {
	return time.Now().Unix() > tc.Exp
}
