package store

import (
	"context"
	"strings"
	"time"

	"github.com/pushp314/agencydesk-backend/internal/models"
	apperrors "github.com/pushp314/agencydesk-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	DefaultLatestLimit = 20
	MaxLatestLimit     = 100
)

// NotificationStore persists broadcast notifications and per-actor read
// watermarks. Read state is a single row per actor, so marking everything read
// and counting unread are each one statement.
type NotificationStore struct {
	base
	pageSize int
	now      func() time.Time
}

func NewNotificationStore(db *gorm.DB, pageSize int, timeout time.Duration) *NotificationStore {
	if pageSize <= 0 {
		pageSize = DefaultLatestLimit
	}
	return &NotificationStore{base: newBase(db, timeout), pageSize: pageSize, now: time.Now}
}

func (s *NotificationStore) Create(ctx context.Context, title, message, kind string) (models.Notification, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" {
		return models.Notification{}, apperrors.Validation("title is required")
	}
	if message == "" {
		return models.Notification{}, apperrors.Validation("message is required")
	}

	n := models.Notification{
		Title:     title,
		Message:   message,
		Type:      models.ParseNotificationType(kind),
		CreatedAt: s.now().UTC(),
	}

	db, cancel := s.session(ctx)
	defer cancel()
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockNotifications(tx); err != nil {
			return err
		}
		return tx.Create(&n).Error
	})
	if err != nil {
		return models.Notification{}, wrap("Failed to create notification", err)
	}
	return n, nil
}

// notificationsLockKey guards id allocation against watermark moves. Ids are
// handed out before commit, so without it MarkAllRead could jump past an id
// whose insert is still in flight and that notification would never be unread.
const notificationsLockKey = 720201

// lockStatement returns the transaction-scoped lock for dialect. SQLite runs
// on a single connection and needs none.
func lockStatement(dialect string) string {
	if dialect == "postgres" {
		return "SELECT pg_advisory_xact_lock(?)"
	}
	return ""
}

func lockNotifications(tx *gorm.DB) error {
	stmt := lockStatement(tx.Dialector.Name())
	if stmt == "" {
		return nil
	}
	return tx.Exec(stmt, notificationsLockKey).Error
}

// ListLatest returns up to limit notifications, newest first. A non-positive
// limit uses the configured page size; limits above MaxLatestLimit are capped.
func (s *NotificationStore) ListLatest(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = s.pageSize
	}
	if limit > MaxLatestLimit {
		limit = MaxLatestLimit
	}

	db, cancel := s.session(ctx)
	defer cancel()

	notifications := make([]models.Notification, 0, limit)
	if err := db.Order("id desc").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, wrap("Failed to fetch notifications", err)
	}
	return notifications, nil
}

const unreadCountQuery = `
	SELECT COUNT(*) FROM notifications
	WHERE id > COALESCE((SELECT last_read_id FROM notification_read_states WHERE actor_id = ?), 0)
`

func (s *NotificationStore) UnreadCount(ctx context.Context, actorID uint) (int64, error) {
	if actorID == 0 {
		return 0, apperrors.Validation("actor id is required")
	}

	db, cancel := s.session(ctx)
	defer cancel()

	var count int64
	if err := db.Raw(unreadCountQuery, actorID).Scan(&count).Error; err != nil {
		return 0, wrap("Failed to count unread notifications", err)
	}
	return count, nil
}

// The WHERE clause keeps SQLite from reading ON CONFLICT as a join constraint.
// The CASE keeps the watermark monotonic if two mark-all calls race.
const markAllReadQuery = `
	INSERT INTO notification_read_states (actor_id, last_read_id, updated_at)
	SELECT ?, COALESCE(MAX(id), 0), ? FROM notifications WHERE 1 = 1
	ON CONFLICT (actor_id) DO UPDATE SET
		last_read_id = CASE
			WHEN excluded.last_read_id > notification_read_states.last_read_id THEN excluded.last_read_id
			ELSE notification_read_states.last_read_id
		END,
		updated_at = excluded.updated_at
`

// MarkAllRead moves actorID's watermark to the newest notification in a single
// statement.
func (s *NotificationStore) MarkAllRead(ctx context.Context, actorID uint) error {
	if actorID == 0 {
		return apperrors.Validation("actor id is required")
	}

	db, cancel := s.session(ctx)
	defer cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockNotifications(tx); err != nil {
			return err
		}
		return tx.Exec(markAllReadQuery, actorID, s.now().UTC()).Error
	})
	if err != nil {
		return wrap("Failed to mark notifications as read", err)
	}
	return nil
}

func (s *NotificationStore) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return apperrors.NotFound("Notification not found")
	}

	db, cancel := s.session(ctx)
	defer cancel()

	result := db.Delete(&models.Notification{}, id)
	if result.Error != nil {
		return wrap("Failed to delete notification", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Notification not found")
	}
	return nil
}
