package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/get30seconds/auth-api/internal/domain"
	"github.com/get30seconds/auth-api/internal/repository"
	"github.com/get30seconds/auth-api/internal/social"
)

// In-memory fakes standing in for Postgres, Redis, SMTP and the
// provider userinfo endpoints.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("duplicate: %w", repository.ErrDuplicateEmail)
		}
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("no user: %w", repository.ErrNotFound)
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("no user: %w", repository.ErrNotFound)
}

func (r *fakeUserRepo) GetBySocialIdentity(_ context.Context, email, provider, providerUserID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.Provider != nil && *u.Provider == provider &&
			u.ProviderUserID != nil && *u.ProviderUserID == providerUserID {
			return u, nil
		}
	}
	return nil, fmt.Errorf("no user: %w", repository.ErrNotFound)
}

func (r *fakeUserRepo) GetByEmailAndResetCode(_ context.Context, email, code string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.PasswordResetCode != nil && *u.PasswordResetCode == code {
			return u, nil
		}
	}
	return nil, fmt.Errorf("no user: %w", repository.ErrNotFound)
}

func (r *fakeUserRepo) SetResetCode(_ context.Context, userID, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("no user: %w", repository.ErrNotFound)
	}
	u.PasswordResetCode = &code
	u.CodeExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ClearResetCode(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("no user: %w", repository.ErrNotFound)
	}
	u.PasswordResetCode = nil
	u.CodeExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("no user: %w", repository.ErrNotFound)
	}
	u.PasswordHash = &passwordHash
	u.PasswordResetCode = nil
	u.CodeExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.AccessToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*domain.AccessToken{}}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *domain.AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token.ID] = token
	return nil
}

func (r *fakeTokenRepo) GetByID(_ context.Context, id string) (*domain.AccessToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("no token: %w", repository.ErrNotFound)
}

func (r *fakeTokenRepo) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return fmt.Errorf("no token: %w", repository.ErrNotFound)
	}
	t.Revoked = true
	return nil
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, t := range r.tokens {
		if t.ExpiresAt.Before(now) {
			delete(r.tokens, id)
		}
	}
	return nil
}

type fakeRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newFakeRevocationStore() *fakeRevocationStore {
	return &fakeRevocationStore{revoked: map[string]bool{}}
}

func (s *fakeRevocationStore) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = true
	return nil
}

func (s *fakeRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revoked[tokenID], nil
}

type fakeVerifier struct {
	identity *social.Identity
	err      error
}

func (v *fakeVerifier) UserFromToken(_ context.Context, _, _ string) (*social.Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	to   string
	code string
}

func (m *fakeMailer) SendPasswordResetCode(_ context.Context, to, code string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, code: code})
	return nil
}

var errSMTPDown = errors.New("smtp connection refused")
