package repository

import (
	"github.com/mapda-dev/mapda-api/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserRepository
	Token   TokenRepository
	Place   PlaceRepository
	Message MessageRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Token:   NewTokenRepository(db),
		Place:   NewPlaceRepository(db),
		Message: NewMessageRepository(db),
	}
}
