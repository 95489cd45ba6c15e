package domain

import "time"

// TokenStatus represents the lifecycle state of a token record
type TokenStatus string

const (
	TokenActive  TokenStatus = "Active"
	TokenBlock   TokenStatus = "Block"
	TokenDeleted TokenStatus = "Deleted"
)

// Token is the single live token record for a user (upsert semantics,
// latest-value-wins, never a history log). RefreshToken is the server-issued
// value the client exchanges for new access tokens; it carries no subject
// claim, so correlation back to the user happens only through this row.
// The provider-native tokens are opaque and kept solely for revocation
// at unregister time.
type Token struct {
	ID                   int64        `json:"-" db:"id"`
	UUID                 string       `json:"uuid" db:"uuid"`
	Status               TokenStatus  `json:"status" db:"status"`
	RefreshToken         string       `json:"-" db:"refresh_token"`
	ProviderType         ProviderType `json:"provider_type" db:"provider_type"`
	ProviderAccessToken  *string      `json:"-" db:"provider_access_token"`
	ProviderRefreshToken *string      `json:"-" db:"provider_refresh_token"`
	CreatedAt            time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at" db:"updated_at"`
}
