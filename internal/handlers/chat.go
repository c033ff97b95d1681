package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/agencydesk-backend/internal/middleware"
	"github.com/pushp314/agencydesk-backend/internal/models"
	"github.com/pushp314/agencydesk-backend/internal/services"
	apperrors "github.com/pushp314/agencydesk-backend/pkg/errors"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
)

type HistoryReader interface {
	HistoryAfter(ctx context.Context, a, b, afterID uint) ([]models.Message, error)
}

type ConversationLister interface {
	ListConversations(ctx context.Context, operatorID uint) ([]models.ChatListEntry, error)
}

// SendLimiter throttles message sends per actor.
type SendLimiter interface {
	Allow(ctx context.Context, actorID uint) (bool, error)
}

type ChatHandler struct {
	chat      *services.ChatService
	history   HistoryReader
	directory ConversationLister
	limiter   SendLimiter
	roles     services.Roles
}

func NewChatHandler(chat *services.ChatService, history HistoryReader, directory ConversationLister, limiter SendLimiter, roles services.Roles) *ChatHandler {
	return &ChatHandler{chat: chat, history: history, directory: directory, limiter: limiter, roles: roles}
}

type postMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" binding:"required"`
	Body       string `json:"body"`
}

// PostMessage POST /messages
func (h *ChatHandler) PostMessage(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		_ = c.Error(apperrors.ErrUnauthorized)
		return
	}

	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.Validation("receiver_id and body are required"))
		return
	}

	if !allowSend(c.Request.Context(), h.limiter, actor.ID) {
		_ = c.Error(apperrors.ErrRateLimit)
		return
	}

	res, err := h.chat.Post(c.Request.Context(), actor, req.ReceiverID, req.Body)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   res.Message,
		"delivered": res.Delivered,
	})
}

// GetHistory GET /messages/history/:a/:b?after=
func (h *ChatHandler) GetHistory(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		_ = c.Error(apperrors.ErrUnauthorized)
		return
	}

	a, errA := parseID(c.Param("a"))
	b, errB := parseID(c.Param("b"))
	if errA != nil || errB != nil {
		_ = c.Error(apperrors.Validation("participant ids must be positive integers"))
		return
	}

	var after uint
	if raw := c.Query("after"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			_ = c.Error(apperrors.Validation("after must be a message id"))
			return
		}
		after = uint(v)
	}

	if actor.ID != a && actor.ID != b && !h.roles.IsOperator(actor) {
		_ = c.Error(apperrors.Forbidden("Not a participant of this conversation"))
		return
	}

	messages, err := h.history.HistoryAfter(c.Request.Context(), a, b, after)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// GetChatList GET /messages/chat-list
func (h *ChatHandler) GetChatList(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		_ = c.Error(apperrors.ErrUnauthorized)
		return
	}

	entries, err := h.directory.ListConversations(c.Request.Context(), actor.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"conversations": entries})
}

func parseID(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, strconv.ErrRange
	}
	return uint(v), nil
}

// allowSend fails open when the limiter backend is unreachable.
func allowSend(ctx context.Context, limiter SendLimiter, actorID uint) bool {
	if limiter == nil {
		return true
	}
	ok, err := limiter.Allow(ctx, actorID)
	if err != nil {
		logger.Warn().Err(err).Uint("user_id", actorID).Msg("Send limiter unavailable, allowing message")
		return true
	}
	return ok
}
