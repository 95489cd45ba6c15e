package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mapda-dev/mapda-api/internal/domain"
	"github.com/mapda-dev/mapda-api/pkg/database"
)

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

const tokenColumns = `id, uuid, status, refresh_token, provider_type,
	provider_access_token, provider_refresh_token, created_at, updated_at`

// Upsert writes the latest token values for a user. One row per uuid,
// strictly latest-value-wins; this is not a history log.
func (r *tokenRepository) Upsert(ctx context.Context, token *domain.Token) error {
	now := time.Now().UTC()
	if token.Status == "" {
		token.Status = domain.TokenActive
	}

	err := r.db.DB.QueryRowContext(ctx, `
		INSERT INTO tokens (uuid, status, refresh_token, provider_type,
			provider_access_token, provider_refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (uuid) DO UPDATE SET
			status = EXCLUDED.status,
			refresh_token = EXCLUDED.refresh_token,
			provider_type = EXCLUDED.provider_type,
			provider_access_token = EXCLUDED.provider_access_token,
			provider_refresh_token = EXCLUDED.provider_refresh_token,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		token.UUID,
		token.Status,
		token.RefreshToken,
		token.ProviderType,
		token.ProviderAccessToken,
		token.ProviderRefreshToken,
		now,
	).Scan(&token.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert token: %w", err)
	}

	token.UpdatedAt = now
	return nil
}

// GetByRefreshToken resolves a token row by the literal refresh token value.
// Deleted rows do not resolve.
func (r *tokenRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Token, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tokens
		WHERE refresh_token = $1 AND status <> 'Deleted'
	`, tokenColumns)

	token, err := r.scanToken(r.db.DB.QueryRowContext(ctx, query, refreshToken))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("refresh token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token by refresh token: %w", err)
	}
	return token, nil
}

// GetByUUID retrieves a user's token row.
func (r *tokenRepository) GetByUUID(ctx context.Context, uuid string) (*domain.Token, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tokens
		WHERE uuid = $1
	`, tokenColumns)

	token, err := r.scanToken(r.db.DB.QueryRowContext(ctx, query, uuid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token for user %s not found: %w", uuid, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token by uuid: %w", err)
	}
	return token, nil
}

// UpdateStatus sets the token row's status.
func (r *tokenRepository) UpdateStatus(ctx context.Context, uuid string, status domain.TokenStatus) error {
	result, err := r.db.DB.ExecContext(ctx,
		`UPDATE tokens SET status = $2, updated_at = $3 WHERE uuid = $1`,
		uuid, status, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update token status: %w", err)
	}
	return requireRow(result, fmt.Sprintf("token for user %s", uuid))
}

func (r *tokenRepository) scanToken(row *sql.Row) (*domain.Token, error) {
	token := &domain.Token{}
	var accessToken, refreshToken sql.NullString

	err := row.Scan(
		&token.ID,
		&token.UUID,
		&token.Status,
		&token.RefreshToken,
		&token.ProviderType,
		&accessToken,
		&refreshToken,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	token.ProviderAccessToken = nullableString(accessToken)
	token.ProviderRefreshToken = nullableString(refreshToken)
	return token, nil
}
