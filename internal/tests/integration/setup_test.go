package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pushp314/agencydesk-backend/internal/config"
	"github.com/pushp314/agencydesk-backend/internal/database"
	"github.com/pushp314/agencydesk-backend/internal/handlers"
	"github.com/pushp314/agencydesk-backend/internal/middleware"
	"github.com/pushp314/agencydesk-backend/internal/models"
	"github.com/pushp314/agencydesk-backend/internal/realtime"
	"github.com/pushp314/agencydesk-backend/internal/routes"
	"github.com/pushp314/agencydesk-backend/internal/services"
	"github.com/pushp314/agencydesk-backend/internal/store"
	"github.com/pushp314/agencydesk-backend/pkg/utils"
	"github.com/stretchr/testify/require"
)

type app struct {
	router     *gin.Engine
	dispatcher *realtime.Dispatcher
}

// setupApp wires the HTTP surface the way cmd/server does, over an in-memory
// SQLite database seeded with one operator and two candidates.
func setupApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	config.AppConfig = &config.Config{JWTSecret: "test_secret_key_12345"}

	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.AutoMigrate(&models.User{}))
	for _, u := range []models.User{
		{ID: 1, Name: "Desk", Email: "desk@agency.test", Role: models.RoleAdmin},
		{ID: 7, Name: "Asha", Email: "asha@example.com"},
		{ID: 8, Name: "Karan", Email: "karan@example.com"},
	} {
		require.NoError(t, db.Create(&u).Error)
	}

	timeout := 5 * time.Second
	roles := services.NewRoles("ADMIN")
	dispatcher := realtime.New()
	messages := store.NewMessageStore(db, timeout)
	directory := store.NewDirectory(db, store.NewUserIdentities(db, timeout), timeout)
	notifications := store.NewNotificationStore(db, 20, timeout)

	chat := services.NewChatService(messages, dispatcher)
	notifier := services.NewNotifier(notifications, dispatcher)

	limiter := middleware.NewActorLimiter(600)
	t.Cleanup(limiter.Stop)

	r := gin.New()
	r.Use(middleware.ErrorHandlerMiddleware())
	api := r.Group("/api")
	routes.RegisterChatRoutes(api, handlers.NewChatHandler(chat, messages, directory, limiter, roles), roles)
	routes.RegisterNotificationRoutes(api, handlers.NewNotificationHandler(notifier), roles)

	return &app{router: r, dispatcher: dispatcher}
}

func tokenFor(t *testing.T, userID uint, role string) string {
	t.Helper()
	token, err := utils.GenerateToken(userID, role, time.Hour)
	require.NoError(t, err)
	return token
}

func performRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
