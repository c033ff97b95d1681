package models

import "time"

// Message is one immutable entry of a direct conversation between two actors.
type Message struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID   uint      `gorm:"not null" json:"sender_id"`
	ReceiverID uint      `gorm:"not null" json:"receiver_id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// Counterpart is the identity shown next to a conversation in an operator's inbox.
type Counterpart struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ChatListEntry is one row of an operator's inbox: a counterpart and the latest message exchanged.
type ChatListEntry struct {
	Counterpart Counterpart `json:"counterpart"`
	LastMessage Message     `json:"last_message"`
}
