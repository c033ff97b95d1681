package models

import (
	"strings"
	"time"
)

type NotificationType string

const (
	NotificationTypeMessage NotificationType = "message"
	NotificationTypeAlert   NotificationType = "alert"
	NotificationTypeUpdate  NotificationType = "update"
)

// ParseNotificationType maps unknown or empty input to NotificationTypeMessage.
func ParseNotificationType(s string) NotificationType {
	switch t := NotificationType(strings.ToLower(strings.TrimSpace(s))); t {
	case NotificationTypeAlert, NotificationTypeUpdate:
		return t
	default:
		return NotificationTypeMessage
	}
}

// Notification is a broadcast addressed to every actor.
type Notification struct {
	ID        uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string           `gorm:"type:text;not null" json:"title"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Type      NotificationType `gorm:"type:varchar(20);not null;default:'message'" json:"type"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
}

// NotificationReadState is an actor's read watermark: every notification with
// ID <= LastReadID counts as read for that actor.
type NotificationReadState struct {
	ActorID    uint      `gorm:"primaryKey;autoIncrement:false" json:"actor_id"`
	LastReadID uint      `gorm:"not null;default:0" json:"last_read_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}
