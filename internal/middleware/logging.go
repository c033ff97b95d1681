package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
	"github.com/pushp314/agencydesk-backend/pkg/utils"
)

const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware logs all incoming requests with timing and a request id.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		rawQuery := c.Request.URL.RawQuery

		requestID := c.GetHeader(RequestIDHeader)
		if !utils.IsUUID(requestID) {
			requestID = utils.GenerateID()
		}
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()

		event := logger.Log.Info()
		if status >= 400 {
			event = logger.Log.Warn()
		}
		if status >= 500 {
			event = logger.Log.Error()
		}

		if actor, ok := CurrentActor(c); ok {
			event = event.Uint("user_id", actor.ID)
		}

		event.
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", rawQuery).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Int("body_size", c.Writer.Size()).
			Msg("request")
	}
}
