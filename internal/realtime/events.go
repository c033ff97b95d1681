package realtime

import (
	"strings"
	"time"

	apperrors "github.com/pushp314/agencydesk-backend/pkg/errors"
)

// Socket event names.
const (
	EventJoinRoom       = "join_room"
	EventLeaveRoom      = "leave_room"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventSendError      = "send_error"
	EventNotification   = "notification"
	EventPresence       = "presence_update"
	EventOnlineUsers    = "online_users"
)

// JoinRoom is the client request to subscribe to a conversation room.
// leave_room uses the same shape.
type JoinRoom struct {
	RoomKey string `json:"room_key"`
}

func (j JoinRoom) Validate() error {
	if strings.TrimSpace(j.RoomKey) == "" {
		return apperrors.Validation("room_key is required")
	}
	if _, _, err := ParseRoomKey(j.RoomKey); err != nil {
		return apperrors.Validation(err.Error())
	}
	return nil
}

// RoomAck acknowledges join_room and leave_room.
type RoomAck struct {
	OK      bool   `json:"ok"`
	RoomKey string `json:"room_key"`
	Error   string `json:"error,omitempty"`
}

// SendMessage is the client request to post into a conversation. CreatedAt is
// accepted for compatibility but the server timestamp always wins.
type SendMessage struct {
	RoomKey    string     `json:"room_key"`
	SenderID   uint       `json:"sender_id"`
	ReceiverID uint       `json:"receiver_id"`
	Body       string     `json:"body"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// Validate checks required fields and that the room key belongs to the pair.
func (m SendMessage) Validate() error {
	if m.SenderID == 0 {
		return apperrors.Validation("sender_id is required")
	}
	if m.ReceiverID == 0 {
		return apperrors.Validation("receiver_id is required")
	}
	if strings.TrimSpace(m.Body) == "" {
		return apperrors.Validation("message body is required")
	}
	if m.RoomKey != Canonical(m.SenderID, m.ReceiverID) {
		return apperrors.Validation("room_key does not match sender and receiver")
	}
	return nil
}

// ReceiveMessage is pushed to every session in the room after the message has
// been stored.
type ReceiveMessage struct {
	ID         uint      `json:"id"`
	RoomKey    string    `json:"room_key"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// SendError is emitted only to the session whose send failed.
type SendError struct {
	RoomKey string `json:"room_key"`
	Kind    string `json:"kind"`
	Error   string `json:"error"`
}

// Presence announces an actor going online or offline.
type Presence struct {
	UserID   uint `json:"user_id"`
	IsOnline bool `json:"is_online"`
}
