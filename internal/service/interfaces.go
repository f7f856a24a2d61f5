package service

import (
	"context"
	"time"

	"github.com/get30seconds/auth-api/internal/domain"
	"github.com/get30seconds/auth-api/internal/dto"
)

// AuthService defines methods for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error)
	SocialLogin(ctx context.Context, req *dto.SocialLoginRequest) (*AuthResult, error)
	Logout(ctx context.Context, claims *domain.TokenClaims) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error
	CheckResetCode(ctx context.Context, req *dto.CheckResetCodeRequest) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) (*AuthResult, error)
	CurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// RevocationStore caches revoked token ids so the auth middleware can
// reject them without a database probe.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
