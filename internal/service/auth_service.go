package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/get30seconds/auth-api/internal/apperror"
	"github.com/get30seconds/auth-api/internal/domain"
	"github.com/get30seconds/auth-api/internal/dto"
	"github.com/get30seconds/auth-api/internal/mailer"
	"github.com/get30seconds/auth-api/internal/repository"
	"github.com/get30seconds/auth-api/internal/social"
	"github.com/get30seconds/auth-api/internal/utils"
)

// AuthResult bundles the authenticated user and the issued token so the
// handler can respond in one step.
type AuthResult struct {
	User  *domain.User
	Token string
}

// authService implements AuthService interface
type authService struct {
	userRepo     repository.UserRepository
	tokenRepo    repository.TokenRepository
	jwtManager   *utils.JWTManager
	revocation   RevocationStore
	verifier     social.Verifier
	mailer       mailer.Mailer
	bcryptCost   int
	resetCodeTTL time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *utils.JWTManager,
	revocation RevocationStore,
	verifier social.Verifier,
	m mailer.Mailer,
	bcryptCost int,
	resetCodeTTL time.Duration,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		jwtManager:   jwtManager,
		revocation:   revocation,
		verifier:     verifier,
		mailer:       m,
		bcryptCost:   bcryptCost,
		resetCodeTTL: resetCodeTTL,
	}
}

// Register registers a new user with email and password
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	// Email uniqueness check
	_, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err == nil {
		return nil, apperror.Validation("The email has already been taken.")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: &passwordHash,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperror.Validation("The email has already been taken.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueToken(ctx, user)
}

// Login authenticates a user with email and password
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("User does not exist.")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Social-only accounts carry no password hash and can never pass
	// a password check.
	if user.PasswordHash == nil || !utils.CheckPasswordHash(req.Password, *user.PasswordHash) {
		return nil, apperror.Auth("Incorrect password.")
	}

	return s.issueToken(ctx, user)
}

// SocialLogin authenticates a user via a provider-issued access token.
// A user matching the (email, provider, provider_user_id) triple is
// reused; otherwise a new passwordless account is created, provided the
// email is not already held by a different account.
func (s *authService) SocialLogin(ctx context.Context, req *dto.SocialLoginRequest) (*AuthResult, error) {
	if err := utils.ValidateRequest(req); err != nil {
		return nil, err
	}

	identity, err := s.verifier.UserFromToken(ctx, req.Provider, req.Token)
	if err != nil {
		if errors.Is(err, social.ErrInvalidToken) {
			return nil, apperror.Auth("Token is invalid.")
		}
		return nil, fmt.Errorf("failed to verify provider token: %w", err)
	}

	user, err := s.userRepo.GetBySocialIdentity(ctx, identity.Email, req.Provider, identity.ID)
	if err == nil {
		return s.issueToken(ctx, user)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user by social identity: %w", err)
	}

	// The email must not belong to a different account
	_, err = s.userRepo.GetByEmail(ctx, identity.Email)
	if err == nil {
		return nil, apperror.Validation("The email has already been taken.")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	provider := req.Provider
	providerUserID := identity.ID
	user = &domain.User{
		Email:          identity.Email,
		Provider:       &provider,
		ProviderUserID: &providerUserID,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueToken(ctx, user)
}

// Logout revokes exactly the token used for the current request
func (s *authService) Logout(ctx context.Context, claims *domain.TokenClaims) error {
	if err := s.tokenRepo.Revoke(ctx, claims.TokenID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	// Cache the revocation for the token's remaining lifetime. A cache
	// failure is not fatal: the database row is already marked.
	ttl := time.Until(time.Unix(claims.Exp, 0))
	if ttl > 0 {
		_ = s.revocation.Revoke(ctx, claims.TokenID, ttl)
	}

	return nil
}

// CurrentUser returns the authenticated user's profile
func (s *authService) CurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("User does not exist.")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return dto.NewUserResponse(user), nil
}

// ValidateToken validates an access token and rejects revoked sessions
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	revoked, err := s.revocation.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("token is revoked")
	}

	dbToken, err := s.tokenRepo.GetByID(ctx, claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if dbToken.Revoked {
		return nil, fmt.Errorf("token is revoked")
	}

	return claims, nil
}

// issueToken persists a new access token row and signs the matching JWT.
func (s *authService) issueToken(ctx context.Context, user *domain.User) (*AuthResult, error) {
	tokenID := s.jwtManager.NewTokenID()

	token := &domain.AccessToken{
		ID:        tokenID,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.jwtManager.AccessTokenExpiry()),
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to save access token: %w", err)
	}

	signed, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, tokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResult{User: user, Token: signed}, nil
}
