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
	"github.com/lib/pq"
)

const userColumns = `id, email, password_hash, provider, provider_user_id, password_reset_code, code_expires_at, created_at, updated_at`

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, provider, provider_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Provider,
		user.ProviderUserID,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Unique constraint violations: email or (provider, provider_user_id)
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_provider_identity_key" {
				return fmt.Errorf("social identity already linked: %w", ErrDuplicateSocialIdentity)
			}
			return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetBySocialIdentity retrieves a user by the (email, provider,
// provider_user_id) triple used for social login matching.
func (r *userRepository) GetBySocialIdentity(ctx context.Context, email, provider, providerUserID string) (*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE email = $1 AND provider = $2 AND provider_user_id = $3
	`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, email, provider, providerUserID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with social identity %s/%s not found: %w", provider, providerUserID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by social identity: %w", err)
	}

	return user, nil
}

// GetByEmailAndResetCode retrieves a user by the exact (email,
// password_reset_code) pair. The lookup deliberately ignores
// code_expires_at; expiry handling belongs to the caller.
func (r *userRepository) GetByEmailAndResetCode(ctx context.Context, email, code string) (*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE email = $1 AND password_reset_code = $2
	`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, email, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s and reset code not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by reset code: %w", err)
	}

	return user, nil
}

// SetResetCode stores a password reset code and its expiry on the user.
func (r *userRepository) SetResetCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET password_reset_code = $2, code_expires_at = $3, updated_at = $4
		WHERE id = $1
	`

	return r.execOnUser(ctx, query, userID, code, expiresAt, time.Now())
}

// ClearResetCode removes the reset code and expiry together.
func (r *userRepository) ClearResetCode(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET password_reset_code = NULL, code_expires_at = NULL, updated_at = $2
		WHERE id = $1
	`

	return r.execOnUser(ctx, query, userID, time.Now())
}

// UpdatePassword sets a new password hash and clears the reset code and
// expiry in the same statement, so a consumed code can never be reused.
func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, password_reset_code = NULL, code_expires_at = NULL, updated_at = $3
		WHERE id = $1
	`

	return r.execOnUser(ctx, query, userID, passwordHash, time.Now())
}

func (r *userRepository) execOnUser(ctx context.Context, query string, userID string, args ...interface{}) error {
	result, err := r.db.DB.ExecContext(ctx, query, append([]interface{}{userID}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *userRepository) scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var passwordHash, provider, providerUserID, resetCode sql.NullString
	var codeExpiresAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Email,
		&passwordHash,
		&provider,
		&providerUserID,
		&resetCode,
		&codeExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		user.PasswordHash = &passwordHash.String
	}
	if provider.Valid {
		user.Provider = &provider.String
	}
	if providerUserID.Valid {
		user.ProviderUserID = &providerUserID.String
	}
	if resetCode.Valid {
		user.PasswordResetCode = &resetCode.String
	}
	if codeExpiresAt.Valid {
		user.CodeExpiresAt = &codeExpiresAt.Time
	}

	return user, nil
}
