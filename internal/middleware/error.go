package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/agencydesk-backend/pkg/errors"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
)

// ErrorHandlerMiddleware renders errors attached with c.Error and recovers panics.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", string(debug.Stack())).
					Msg("Panic recovered")

				c.AbortWithStatusJSON(errors.ErrInternalServer.Code, gin.H{
					"error": errors.ErrInternalServer.Message,
					"kind":  errors.ErrInternalServer.Kind,
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			event := logger.Warn()
			if appErr.Code >= http.StatusInternalServerError {
				event = logger.Error()
			}
			event.Err(err).Str("kind", string(appErr.Kind)).Str("path", c.Request.URL.Path).Msg("Request failed")

			c.JSON(appErr.Code, gin.H{
				"error": appErr.Message,
				"kind":  appErr.Kind,
			})
			return
		}

		logger.Error().Err(err).Msg("Unhandled request error")
		c.JSON(errors.ErrInternalServer.Code, gin.H{
			"error": errors.ErrInternalServer.Message,
			"kind":  errors.ErrInternalServer.Kind,
		})
	}
}
