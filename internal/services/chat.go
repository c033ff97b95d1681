package services

import (
	"context"

	"github.com/pushp314/agencydesk-backend/internal/models"
	"github.com/pushp314/agencydesk-backend/internal/realtime"
	apperrors "github.com/pushp314/agencydesk-backend/pkg/errors"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
)

type MessageAppender interface {
	Append(ctx context.Context, senderID, receiverID uint, body string) (models.Message, error)
}

type RoomRelayer interface {
	Relay(room, event string, payload interface{}) int
}

// ChatService sequences a send as persist-then-relay: a live peer only ever
// sees messages that are already in the store. A failed append relays nothing.
type ChatService struct {
	messages MessageAppender
	rooms    RoomRelayer
}

func NewChatService(messages MessageAppender, rooms RoomRelayer) *ChatService {
	return &ChatService{messages: messages, rooms: rooms}
}

// SendResult reports the stored message and how many live sessions got it.
// Zero deliveries is not an error; offline peers catch up from history.
type SendResult struct {
	Message   models.Message
	Delivered int
}

// Send handles a send_message event from actor.
func (s *ChatService) Send(ctx context.Context, actor Actor, req realtime.SendMessage) (SendResult, error) {
	if err := req.Validate(); err != nil {
		return SendResult{}, err
	}
	if req.SenderID != actor.ID {
		return SendResult{}, apperrors.Validation("sender_id does not match the authenticated actor")
	}
	return s.deliver(ctx, req.SenderID, req.ReceiverID, req.Body)
}

// Post handles the polling-client path: the caller is always the sender.
func (s *ChatService) Post(ctx context.Context, actor Actor, receiverID uint, body string) (SendResult, error) {
	return s.deliver(ctx, actor.ID, receiverID, body)
}

func (s *ChatService) deliver(ctx context.Context, senderID, receiverID uint, body string) (SendResult, error) {
	msg, err := s.messages.Append(ctx, senderID, receiverID, body)
	if err != nil {
		return SendResult{}, err
	}

	room := realtime.Canonical(msg.SenderID, msg.ReceiverID)
	delivered := s.rooms.Relay(room, realtime.EventReceiveMessage, realtime.ReceiveMessage{
		ID:         msg.ID,
		RoomKey:    room,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
	})

	logger.Debug().
		Uint("message_id", msg.ID).
		Str("room", room).
		Int("delivered", delivered).
		Msg("Message stored and relayed")

	return SendResult{Message: msg, Delivered: delivered}, nil
}
