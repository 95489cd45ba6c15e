package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mapda-dev/mapda-api/internal/domain"
	"github.com/mapda-dev/mapda-api/internal/repository"
)

// messageService implements MessageService
type messageService struct {
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
}

// NewMessageService creates the message service
func NewMessageService(userRepo repository.UserRepository, messageRepo repository.MessageRepository) MessageService {
	return &messageService{userRepo: userRepo, messageRepo: messageRepo}
}

// Send delivers a message carrying one or more of the predefined kinds
// (1..6) from sender to recipient. Self-sends are rejected.
func (s *messageService) Send(ctx context.Context, senderUUID, recipientUUID string, types []int, dangerObjID *int64) (*domain.Message, error) {
	if senderUUID == recipientUUID {
		return nil, ErrSelfMessage
	}

	if _, err := s.userRepo.GetByUUID(ctx, senderUUID); err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	if _, err := s.userRepo.GetByUUID(ctx, recipientUUID); err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}

	message := &domain.Message{
		SenderUUID:    senderUUID,
		RecipientUUID: recipientUUID,
		DangerObjID:   dangerObjID,
	}
	for _, t := range types {
		if !message.SetType(t) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidMessageType, t)
		}
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// CheckLatest returns the newest unread message for the recipient, or nil
// when the inbox is clean.
func (s *messageService) CheckLatest(ctx context.Context, recipientUUID string) (*domain.Message, error) {
	message, err := s.messageRepo.LatestUnread(ctx, recipientUUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return message, nil
}
