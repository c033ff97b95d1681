package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/agencydesk-backend/internal/middleware"
	"github.com/pushp314/agencydesk-backend/internal/services"
	apperrors "github.com/pushp314/agencydesk-backend/pkg/errors"
)

type NotificationHandler struct {
	notifier *services.Notifier
}

func NewNotificationHandler(notifier *services.Notifier) *NotificationHandler {
	return &NotificationHandler{notifier: notifier}
}

type createNotificationRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// CreateNotification POST /notifications
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Validation("Invalid notification payload"))
		return
	}

	notification, err := h.notifier.Create(c.Request.Context(), req.Title, req.Message, req.Type)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"notification": notification})
}

// GetLatest GET /notifications/latest?limit=
func (h *NotificationHandler) GetLatest(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			_ = c.Error(apperrors.Validation("limit must be a non-negative integer"))
			return
		}
		limit = v
	}

	notifications, err := h.notifier.ListLatest(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// GetUnreadCount GET /notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		_ = c.Error(apperrors.ErrUnauthorized)
		return
	}

	count, err := h.notifier.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkAllRead PATCH /notifications/mark-read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		_ = c.Error(apperrors.ErrUnauthorized)
		return
	}

	if err := h.notifier.MarkAllRead(c.Request.Context(), actor); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All marked as read"})
}

// DeleteNotification DELETE /notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.NotFound("Notification not found"))
		return
	}

	if err := h.notifier.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
