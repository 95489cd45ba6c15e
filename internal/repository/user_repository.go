package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mapda-dev/mapda-api/internal/domain"
	"github.com/mapda-dev/mapda-api/pkg/database"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, uuid, role, status, email, nickname, university, profile_number,
	provider_type, provider_id, provider_profile_image, provider_user_name,
	apple_real_user_status, created_at, updated_at`

// Create inserts a new user. The uuid is `U` + YYYYMMDD + an 11-digit
// zero-padded daily sequence, allocated from the day's row count inside a
// transaction.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if user.UUID == "" {
		// Serialize allocation: the COUNT-based sequence would mint the same
		// uuid for two same-day creates racing each other.
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext('users_uuid_alloc'))`); err != nil {
			return fmt.Errorf("failed to lock uuid allocation: %w", err)
		}

		var seq int64
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) + 1 FROM users WHERE created_at::date = $1::date`, now,
		).Scan(&seq)
		if err != nil {
			return fmt.Errorf("failed to allocate uuid sequence: %w", err)
		}
		user.UUID = fmt.Sprintf("U%s%011d", now.Format("20060102"), seq)
	}

	if user.Role == "" {
		user.Role = "user"
	}
	if user.ProfileNumber == 0 {
		user.ProfileNumber = 1
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (uuid, role, status, email, nickname, university, profile_number,
			provider_type, provider_id, provider_profile_image, provider_user_name,
			apple_real_user_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`,
		user.UUID,
		user.Role,
		user.Status,
		user.Email,
		user.Nickname,
		user.University,
		user.ProfileNumber,
		user.ProviderType,
		user.ProviderID,
		user.ProviderProfileImage,
		user.ProviderUserName,
		user.AppleRealUserStatus,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		return translateUserInsertError(err, user)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user creation: %w", err)
	}
	return nil
}

// translateUserInsertError maps unique violations onto sentinel errors by
// the violated constraint. Only the provider-identity index means "this
// account already exists"; anything else stays a plain failure naming the
// constraint.
func translateUserInsertError(err error, user *domain.User) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
		if pqErr.Constraint == "idx_users_provider_identity" {
			return fmt.Errorf("provider identity %s/%s: %w", user.ProviderType, user.ProviderID, ErrDuplicateProviderIdentity)
		}
		return fmt.Errorf("failed to create user (unique violation on %s): %w", pqErr.Constraint, err)
	}
	return fmt.Errorf("failed to create user: %w", err)
}

// GetByProvider retrieves the non-Deleted user for a provider identity.
func (r *userRepository) GetByProvider(ctx context.Context, providerType domain.ProviderType, providerID string) (*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE provider_type = $1 AND provider_id = $2 AND status <> 'Deleted'
	`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, providerType, providerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user for %s/%s not found: %w", providerType, providerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by provider: %w", err)
	}
	return user, nil
}

// GetByUUID retrieves a user by its stable identifier.
func (r *userRepository) GetByUUID(ctx context.Context, uuid string) (*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE uuid = $1
	`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, uuid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s not found: %w", uuid, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by uuid: %w", err)
	}
	return user, nil
}

// Update writes the mutable user fields.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET status = $2, email = $3, nickname = $4, university = $5, profile_number = $6,
			provider_profile_image = $7, provider_user_name = $8, updated_at = $9
		WHERE uuid = $1
	`

	user.UpdatedAt = time.Now().UTC()

	result, err := r.db.DB.ExecContext(ctx, query,
		user.UUID,
		user.Status,
		user.Email,
		user.Nickname,
		user.University,
		user.ProfileNumber,
		user.ProviderProfileImage,
		user.ProviderUserName,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return requireRow(result, fmt.Sprintf("user %s", user.UUID))
}

// UpdateStatus sets the user's lifecycle status.
func (r *userRepository) UpdateStatus(ctx context.Context, uuid string, status domain.UserStatus) error {
	result, err := r.db.DB.ExecContext(ctx,
		`UPDATE users SET status = $2, updated_at = $3 WHERE uuid = $1`,
		uuid, status, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	return requireRow(result, fmt.Sprintf("user %s", uuid))
}

// NicknameTaken reports whether a non-Deleted user already holds the
// nickname.
func (r *userRepository) NicknameTaken(ctx context.Context, nickname string) (bool, error) {
	var taken bool
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE nickname = $1 AND status <> 'Deleted')`,
		nickname,
	).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to check nickname: %w", err)
	}
	return taken, nil
}

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var email, nickname, university, profileImage, userName sql.NullString
	var realUserStatus sql.NullInt64

	err := row.Scan(
		&user.ID,
		&user.UUID,
		&user.Role,
		&user.Status,
		&email,
		&nickname,
		&university,
		&user.ProfileNumber,
		&user.ProviderType,
		&user.ProviderID,
		&profileImage,
		&userName,
		&realUserStatus,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Email = nullableString(email)
	user.Nickname = nullableString(nickname)
	user.University = nullableString(university)
	user.ProviderProfileImage = nullableString(profileImage)
	user.ProviderUserName = nullableString(userName)
	if realUserStatus.Valid {
		v := int(realUserStatus.Int64)
		user.AppleRealUserStatus = &v
	}

	return user, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func requireRow(result sql.Result, what string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	}
	return nil
}
