package services

import (
	"context"

	"github.com/pushp314/agencydesk-backend/internal/models"
	"github.com/pushp314/agencydesk-backend/internal/realtime"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
)

type NotificationRepository interface {
	Create(ctx context.Context, title, message, kind string) (models.Notification, error)
	ListLatest(ctx context.Context, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, actorID uint) (int64, error)
	MarkAllRead(ctx context.Context, actorID uint) error
	Delete(ctx context.Context, id uint) error
}

type Broadcaster interface {
	Broadcast(event string, payload interface{}) int
}

// Notifier persists broadcast notifications and pushes new ones to every
// connected session. Actors that were offline see them on their next
// ListLatest / UnreadCount poll.
type Notifier struct {
	repo NotificationRepository
	live Broadcaster
}

func NewNotifier(repo NotificationRepository, live Broadcaster) *Notifier {
	return &Notifier{repo: repo, live: live}
}

func (n *Notifier) Create(ctx context.Context, title, message, kind string) (models.Notification, error) {
	notification, err := n.repo.Create(ctx, title, message, kind)
	if err != nil {
		return models.Notification{}, err
	}

	if n.live != nil {
		reached := n.live.Broadcast(realtime.EventNotification, notification)
		logger.Debug().Uint("notification_id", notification.ID).Int("sessions", reached).Msg("Notification pushed")
	}
	return notification, nil
}

func (n *Notifier) ListLatest(ctx context.Context, limit int) ([]models.Notification, error) {
	return n.repo.ListLatest(ctx, limit)
}

func (n *Notifier) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	return n.repo.UnreadCount(ctx, actor.ID)
}

func (n *Notifier) MarkAllRead(ctx context.Context, actor Actor) error {
	return n.repo.MarkAllRead(ctx, actor.ID)
}

func (n *Notifier) Delete(ctx context.Context, id uint) error {
	return n.repo.Delete(ctx, id)
}
