package repository

import (
	"github.com/get30seconds/auth-api/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User  UserRepository
	Token TokenRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:  NewUserRepository(db),
		Token: NewTokenRepository(db),
	}
}
