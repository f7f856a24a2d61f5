package dto

import (
	"time"

	"github.com/get30seconds/auth-api/internal/domain"
)

// UserResponse represents a user in API responses
type UserResponse struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Provider       *string `json:"provider"`
	ProviderUserID *string `json:"provider_user_id"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// AuthResponse represents a successful authentication response
type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
}

// MessageResponse represents a plain message response, success or error
type MessageResponse struct {
	Message string `json:"message"`
}

// NewUserResponse converts a domain user into its API representation.
func NewUserResponse(user *domain.User) *UserResponse {
	return &UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		Provider:       user.Provider,
		ProviderUserID: user.ProviderUserID,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      user.UpdatedAt.Format(time.RFC3339),
	}
}
