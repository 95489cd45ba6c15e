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

// messageRepository implements MessageRepository interface
type messageRepository struct {
	db *database.Postgres
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *database.Postgres) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts a new message.
func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	message.CreatedAt = time.Now().UTC()

	err := r.db.DB.QueryRowContext(ctx, `
		INSERT INTO messages (sender_uuid, recipient_uuid, danger_obj_id,
			message_type_1, message_type_2, message_type_3,
			message_type_4, message_type_5, message_type_6,
			is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10)
		RETURNING id`,
		message.SenderUUID,
		message.RecipientUUID,
		message.DangerObjID,
		message.Types[0],
		message.Types[1],
		message.Types[2],
		message.Types[3],
		message.Types[4],
		message.Types[5],
		message.CreatedAt,
	).Scan(&message.ID)

	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// LatestUnread returns the newest unread message for a recipient, or
// ErrNotFound when there is none.
func (r *messageRepository) LatestUnread(ctx context.Context, recipientUUID string) (*domain.Message, error) {
	message := &domain.Message{}
	var dangerObjID sql.NullInt64
	var readAt sql.NullTime

	err := r.db.DB.QueryRowContext(ctx, `
		SELECT id, sender_uuid, recipient_uuid, danger_obj_id,
			message_type_1, message_type_2, message_type_3,
			message_type_4, message_type_5, message_type_6,
			is_read, read_at, created_at
		FROM messages
		WHERE recipient_uuid = $1 AND is_read = false
		ORDER BY created_at DESC
		LIMIT 1`,
		recipientUUID,
	).Scan(
		&message.ID,
		&message.SenderUUID,
		&message.RecipientUUID,
		&dangerObjID,
		&message.Types[0],
		&message.Types[1],
		&message.Types[2],
		&message.Types[3],
		&message.Types[4],
		&message.Types[5],
		&message.IsRead,
		&readAt,
		&message.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no unread message for %s: %w", recipientUUID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest unread message: %w", err)
	}

	if dangerObjID.Valid {
		message.DangerObjID = &dangerObjID.Int64
	}
	if readAt.Valid {
		message.ReadAt = &readAt.Time
	}
	return message, nil
}
