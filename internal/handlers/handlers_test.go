package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pushp314/agencydesk-backend/internal/database"
	"github.com/pushp314/agencydesk-backend/internal/middleware"
	"github.com/pushp314/agencydesk-backend/internal/models"
	"github.com/pushp314/agencydesk-backend/internal/realtime"
	"github.com/pushp314/agencydesk-backend/internal/services"
	"github.com/pushp314/agencydesk-backend/internal/store"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var bg = context.Background()

var (
	operator = services.Actor{ID: 1, Role: "ADMIN"}
	alice    = services.Actor{ID: 7, Role: "USER"}
	mallory  = services.Actor{ID: 8, Role: "USER"}
)

// env wires the real stores, dispatcher and services over an in-memory
// SQLite database.
type env struct {
	db         *gorm.DB
	dispatcher *realtime.Dispatcher
	chat       *services.ChatService
	notifier   *services.Notifier
	messages   *store.MessageStore
	directory  *store.Directory
	roles      services.Roles
}

func setupEnv(t *testing.T) *env {
	t.Helper()

	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.AutoMigrate(&models.User{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	for _, u := range []models.User{
		{ID: 1, Name: "Desk", Email: "desk@agency.test", Role: models.RoleAdmin},
		{ID: 7, Name: "Alice", Email: "alice@example.com", Phone: "+100"},
		{ID: 8, Name: "Mallory", Email: "mallory@example.com"},
	} {
		require.NoError(t, db.Create(&u).Error)
	}

	timeout := 5 * time.Second
	dispatcher := realtime.New()
	messages := store.NewMessageStore(db, timeout)
	return &env{
		db:         db,
		dispatcher: dispatcher,
		chat:       services.NewChatService(messages, dispatcher),
		notifier:   services.NewNotifier(store.NewNotificationStore(db, 20, timeout), dispatcher),
		messages:   messages,
		directory:  store.NewDirectory(db, store.NewUserIdentities(db, timeout), timeout),
		roles:      services.NewRoles("ADMIN"),
	}
}

// as stands in for AuthMiddleware.
func as(actor services.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetActor(c, actor)
		c.Next()
	}
}

func call(t *testing.T, actor services.Actor, method, path, route string, h gin.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	r := gin.New()
	r.Use(middleware.ErrorHandlerMiddleware(), as(actor))
	r.Handle(method, route, h)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type fakeSession struct {
	id string

	mu     sync.Mutex
	events map[string][]interface{}
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: id, events: make(map[string][]interface{})}
}

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) Emit(event string, v ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var payload interface{}
	if len(v) > 0 {
		payload = v[0]
	}
	f.events[event] = append(f.events[event], payload)
}

func (f *fakeSession) received(event string) []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]interface{}(nil), f.events[event]...)
}

type fixedLimiter struct {
	allow bool
	err   error
}

func (l fixedLimiter) Allow(context.Context, uint) (bool, error) { return l.allow, l.err }
