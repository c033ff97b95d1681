package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/agencydesk-backend/internal/config"
	"github.com/pushp314/agencydesk-backend/internal/services"
	apperrors "github.com/pushp314/agencydesk-backend/pkg/errors"
	"github.com/pushp314/agencydesk-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandlerMiddleware())
	r.GET("/", handlers...)
	return r
}

func perform(r http.Handler, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	config.AppConfig = &config.Config{JWTSecret: "test_secret_key_12345"}
	token, err := utils.GenerateToken(7, "USER", time.Hour)
	require.NoError(t, err)

	var seen services.Actor
	r := newRouter(AuthMiddleware(), func(c *gin.Context) {
		seen, _ = CurrentActor(c)
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusUnauthorized, perform(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, "Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, "Bearer not-a-jwt").Code)

	var body struct {
		Kind apperrors.Kind `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(perform(r, "").Body.Bytes(), &body))
	assert.Equal(t, apperrors.KindUnauthorized, body.Kind)

	w := perform(r, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, services.Actor{ID: 7, Role: "USER"}, seen)
}

func TestOperatorOnly(t *testing.T) {
	roles := services.NewRoles("ADMIN", "COUNSELOR")
	as := func(actor services.Actor) gin.HandlerFunc {
		return func(c *gin.Context) { SetActor(c, actor) }
	}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	assert.Equal(t, http.StatusNoContent, perform(newRouter(as(services.Actor{ID: 3, Role: "counselor"}), OperatorOnly(roles), ok), "").Code)
	assert.Equal(t, http.StatusForbidden, perform(newRouter(as(services.Actor{ID: 1, Role: "USER"}), OperatorOnly(roles), ok), "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(newRouter(OperatorOnly(roles), ok), "").Code)

	w := perform(newRouter(as(services.Actor{ID: 1, Role: "USER"}), OperatorOnly(roles), ok), "")
	var body struct {
		Kind apperrors.Kind `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.KindForbidden, body.Kind)
}

func TestErrorHandlerRendersAppErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
		kind apperrors.Kind
	}{
		{apperrors.Validation("title is required"), http.StatusBadRequest, apperrors.KindValidation},
		{apperrors.NotFound("Notification not found"), http.StatusNotFound, apperrors.KindNotFound},
		{apperrors.Transient("Failed to store message", errors.New("timeout")), http.StatusServiceUnavailable, apperrors.KindTransient},
		{errors.New("boom"), http.StatusInternalServerError, apperrors.KindInternal},
	}
	for _, tc := range cases {
		r := newRouter(func(c *gin.Context) { _ = c.Error(tc.err) })
		w := perform(r, "")

		assert.Equal(t, tc.code, w.Code)
		var body struct {
			Error string         `json:"error"`
			Kind  apperrors.Kind `json:"kind"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.kind, body.Kind)
		assert.NotEmpty(t, body.Error)
	}
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	r := newRouter(func(c *gin.Context) { panic("nil map") })
	w := perform(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoggingMiddlewareSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, "")
	assert.True(t, utils.IsUUID(w.Header().Get(RequestIDHeader)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "5f2b6a52-8d8c-4f3e-9d0e-2b8f3b6f9a10")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "5f2b6a52-8d8c-4f3e-9d0e-2b8f3b6f9a10", w.Header().Get(RequestIDHeader))
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewKeyedRateLimiter(rate.Limit(0.001), 2)
	defer limiter.Stop()

	r := gin.New()
	r.Use(RateLimitMiddleware(limiter))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, "").Code)
	assert.Equal(t, http.StatusOK, perform(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, "").Code)
}

func TestActorLimiterIsPerActor(t *testing.T) {
	l := NewActorLimiter(3)
	defer l.Stop()
	ctx := context.Background()

	ok, err := l.Allow(ctx, 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = l.Allow(ctx, 7)
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, 8)
	assert.True(t, ok)
}
