package repository

import (
	"context"

	"github.com/mapda-dev/mapda-api/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	// Create inserts the user, generating the date-prefixed uuid.
	Create(ctx context.Context, user *domain.User) error

	// GetByProvider looks up the single non-Deleted user for a provider
	// identity. Deleted rows are invisible here: a re-registering account
	// gets a brand-new user row, never a revived one.
	GetByProvider(ctx context.Context, providerType domain.ProviderType, providerID string) (*domain.User, error)

	GetByUUID(ctx context.Context, uuid string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateStatus(ctx context.Context, uuid string, status domain.UserStatus) error

	// NicknameTaken reports whether a non-Deleted user holds the nickname.
	NicknameTaken(ctx context.Context, nickname string) (bool, error)
}

// TokenRepository defines methods for the per-user token record
type TokenRepository interface {
	// Upsert writes the latest token values for a user; at most one live
	// row per uuid, previous values overwritten.
	Upsert(ctx context.Context, token *domain.Token) error

	// GetByRefreshToken resolves a refresh token by its literal stored
	// value. The token carries no subject claim, so this lookup is the
	// only correlation path.
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Token, error)

	GetByUUID(ctx context.Context, uuid string) (*domain.Token, error)
	UpdateStatus(ctx context.Context, uuid string, status domain.TokenStatus) error
}

// PlaceRepository serves the search endpoint's reads
type PlaceRepository interface {
	SearchNames(ctx context.Context, university, keyword string, limit int) ([]string, error)
}

// MessageRepository defines methods for user-to-user messages
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	LatestUnread(ctx context.Context, recipientUUID string) (*domain.Message, error)
}
