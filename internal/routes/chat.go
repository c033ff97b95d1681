package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pushp314/agencydesk-backend/internal/handlers"
	"github.com/pushp314/agencydesk-backend/internal/middleware"
	"github.com/pushp314/agencydesk-backend/internal/services"
)

func RegisterChatRoutes(r gin.IRouter, h *handlers.ChatHandler, roles services.Roles) {
	messages := r.Group("/messages")
	messages.Use(middleware.AuthMiddleware())
	{
		messages.POST("", h.PostMessage)
		messages.GET("/history/:a/:b", h.GetHistory) // ?after=<message id>

		// Operator inbox
		messages.GET("/chat-list", middleware.OperatorOnly(roles), h.GetChatList)
	}
}
