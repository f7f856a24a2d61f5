package repository

import (
	"context"
	"time"

	"github.com/get30seconds/auth-api/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetBySocialIdentity(ctx context.Context, email, provider, providerUserID string) (*domain.User, error)
	GetByEmailAndResetCode(ctx context.Context, email, code string) (*domain.User, error)
	SetResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error
	ClearResetCode(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// TokenRepository defines methods for access token operations
type TokenRepository interface {
	Create(ctx context.Context, token *domain.AccessToken) error
	GetByID(ctx context.Context, id string) (*domain.AccessToken, error)
	Revoke(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) error
}
