package store

import (
	"context"
	"time"

	"github.com/pushp314/agencydesk-backend/internal/models"
	apperrors "github.com/pushp314/agencydesk-backend/pkg/errors"
	"gorm.io/gorm"
)

// MessageStore is the conversation log. Rows are only ever inserted.
type MessageStore struct {
	base
	now func() time.Time
}

func NewMessageStore(db *gorm.DB, timeout time.Duration) *MessageStore {
	return &MessageStore{base: newBase(db, timeout), now: time.Now}
}

// Append validates and durably inserts a message. The returned Message carries
// the assigned id and server timestamp.
func (s *MessageStore) Append(ctx context.Context, senderID, receiverID uint, body string) (models.Message, error) {
	if senderID == 0 {
		return models.Message{}, apperrors.Validation("sender_id is required")
	}
	if receiverID == 0 {
		return models.Message{}, apperrors.Validation("receiver_id is required")
	}
	clean, err := sanitizeBody(body)
	if err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       clean,
		CreatedAt:  s.now().UTC(),
	}

	db, cancel := s.session(ctx)
	defer cancel()
	if err := db.Create(&msg).Error; err != nil {
		return models.Message{}, wrap("Failed to store message", err)
	}
	return msg, nil
}

// History returns the whole conversation between a and b, oldest first.
func (s *MessageStore) History(ctx context.Context, a, b uint) ([]models.Message, error) {
	return s.HistoryAfter(ctx, a, b, 0)
}

// HistoryAfter returns the conversation between a and b restricted to ids
// greater than afterID, oldest first. Reconnecting clients pass the last id
// they rendered.
func (s *MessageStore) HistoryAfter(ctx context.Context, a, b, afterID uint) ([]models.Message, error) {
	if a == 0 || b == 0 {
		return nil, apperrors.Validation("both participant ids are required")
	}

	db, cancel := s.session(ctx)
	defer cancel()

	messages := make([]models.Message, 0)
	err := db.
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND id > ?",
			a, b, b, a, afterID).
		Order("created_at asc").
		Order("id asc").
		Find(&messages).Error
	if err != nil {
		return nil, wrap("Failed to fetch messages", err)
	}
	return messages, nil
}
