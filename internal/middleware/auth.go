package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/agencydesk-backend/internal/services"
	apperrors "github.com/pushp314/agencydesk-backend/pkg/errors"
	"github.com/pushp314/agencydesk-backend/pkg/utils"
)

const (
	ctxUserID = "userId"
	ctxRole   = "role"
)

// AuthMiddleware trusts the identity carried by a valid bearer token; issuing
// and revoking tokens belongs to the identity service. Failures go through
// c.Error, so ErrorHandlerMiddleware must run first.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			_ = c.Error(apperrors.Unauthorized("Authorization header required"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			_ = c.Error(apperrors.Unauthorized("Invalid authorization header format"))
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			_ = c.Error(apperrors.Unauthorized("Invalid or expired token: " + err.Error()))
			c.Abort()
			return
		}

		SetActor(c, services.Actor{ID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// OperatorOnly restricts a route to the configured operator roles.
func OperatorOnly(roles services.Roles) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			_ = c.Error(apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !roles.IsOperator(actor) {
			_ = c.Error(apperrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}

func SetActor(c *gin.Context, actor services.Actor) {
	c.Set(ctxUserID, actor.ID)
	c.Set(ctxRole, actor.Role)
}

// CurrentActor returns the identity AuthMiddleware attached to the request.
func CurrentActor(c *gin.Context) (services.Actor, bool) {
	id, ok := c.Get(ctxUserID)
	if !ok {
		return services.Actor{}, false
	}
	userID, ok := id.(uint)
	if !ok || userID == 0 {
		return services.Actor{}, false
	}
	return services.Actor{ID: userID, Role: c.GetString(ctxRole)}, true
}
