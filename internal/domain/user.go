package domain

import "time"

// Social login providers accepted by the API
const (
	ProviderFacebook = "facebook"
	ProviderGoogle   = "google"
)

// User represents a user account. Accounts created through social login
// carry provider linkage and no password hash; password_reset_code and
// code_expires_at are always set and cleared together.
type User struct {
	ID                string     `json:"id" db:"id"`
	Email             string     `json:"email" db:"email"`
	PasswordHash      *string    `json:"-" db:"password_hash"`
	Provider          *string    `json:"provider" db:"provider"`
	ProviderUserID    *string    `json:"provider_user_id" db:"provider_user_id"`
	PasswordResetCode *string    `json:"-" db:"password_reset_code"`
	CodeExpiresAt     *time.Time `json:"-" db:"code_expires_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// HasResetCode reports whether a password reset code is currently issued.
func (u *User) HasResetCode() bool {
	return u.PasswordResetCode != nil && u.CodeExpiresAt != nil
}

// IsResetCodeExpired reports whether the issued reset code is past its
// expiry. Returns false when no code is issued.
func (u *User) IsResetCodeExpired(now time.Time) bool {
	return u.HasResetCode() && now.After(*u.CodeExpiresAt)
}
