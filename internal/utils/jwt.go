package utils

import (
	"fmt"
	"time"

	"github.com/get30seconds/auth-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTManager signs and validates access tokens. Every token carries a
// jti claim matching a row in the access_tokens table, which is what
// makes per-token revocation possible.
type JWTManager struct {
	secret            []byte
	accessTokenExpiry time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessTokenExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:            []byte(secret),
		accessTokenExpiry: accessTokenExpiry,
	}
}

// GenerateAccessToken signs a new access token for the user. tokenID
// becomes the jti claim and must match the persisted token row.
func (j *JWTManager) GenerateAccessToken(userID, email, tokenID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"jti":     tokenID,
		"exp":     now.Add(j.accessTokenExpiry).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// NewTokenID generates a fresh jti value.
func (j *JWTManager) NewTokenID() string {
	return uuid.New().String()
}

// AccessTokenExpiry returns the configured access token lifetime.
func (j *JWTManager) AccessTokenExpiry() time.Duration {
	return j.accessTokenExpiry
}

// ValidateToken validates a signed access token and returns its claims
func (j *JWTManager) ValidateToken(tokenString string) (*domain.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid user_id in token")
	}

	email, ok := claims["email"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid email in token")
	}

	tokenID, ok := claims["jti"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid jti in token")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid exp in token")
	}

	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, fmt.Errorf("invalid iat in token")
	}

	tokenClaims := &domain.TokenClaims{
		UserID:  userID,
		Email:   email,
		TokenID: tokenID,
		Exp:     int64(exp),
		Iat:     int64(iat),
	}

	if tokenClaims.IsExpired() {
		return nil, fmt.Errorf("token is expired")
	}

	return tokenClaims, nil
}
