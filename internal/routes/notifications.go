package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pushp314/agencydesk-backend/internal/handlers"
	"github.com/pushp314/agencydesk-backend/internal/middleware"
	"github.com/pushp314/agencydesk-backend/internal/services"
)

func RegisterNotificationRoutes(r gin.IRouter, h *handlers.NotificationHandler, roles services.Roles) {
	notifications := r.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware())
	{
		notifications.GET("/latest", h.GetLatest)
		notifications.GET("/unread-count", h.GetUnreadCount)
		notifications.PATCH("/mark-read", h.MarkAllRead)

		operator := notifications.Group("")
		operator.Use(middleware.OperatorOnly(roles))
		{
			operator.POST("", h.CreateNotification)
			operator.DELETE("/:id", h.DeleteNotification)
		}
	}
}
