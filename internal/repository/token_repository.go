package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/get30seconds/auth-api/internal/domain"
	"github.com/get30seconds/auth-api/pkg/database"
	"github.com/google/uuid"
)

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new access token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

// Create records a newly issued access token
func (r *tokenRepository) Create(ctx context.Context, token *domain.AccessToken) error {
	query := `
		INSERT INTO access_tokens (id, user_id, revoked, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.Revoked,
		token.CreatedAt,
		token.ExpiresAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create access token: %w", err)
	}

	return nil
}

// GetByID retrieves an access token by its id (the JWT jti claim)
func (r *tokenRepository) GetByID(ctx context.Context, id string) (*domain.AccessToken, error) {
	query := `
		SELECT id, user_id, revoked, created_at, expires_at
		FROM access_tokens
		WHERE id = $1
	`

	token := &domain.AccessToken{}
	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&token.ID,
		&token.UserID,
		&token.Revoked,
		&token.CreatedAt,
		&token.ExpiresAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("access token %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return token, nil
}

// Revoke marks a single access token as revoked. Other tokens issued to
// the same user are unaffected.
func (r *tokenRepository) Revoke(ctx context.Context, id string) error {
	query := `UPDATE access_tokens SET revoked = TRUE WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to revoke access token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("access token %s not found: %w", id, ErrNotFound)
	}

	return nil
}

// DeleteExpired deletes all expired access tokens
func (r *tokenRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM access_tokens WHERE expires_at < $1`

	_, err := r.db.DB.ExecContext(ctx, query, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	return nil
}
