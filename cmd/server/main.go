package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pushp314/agencydesk-backend/internal/config"
	"github.com/pushp314/agencydesk-backend/internal/database"
	"github.com/pushp314/agencydesk-backend/internal/handlers"
	"github.com/pushp314/agencydesk-backend/internal/middleware"
	"github.com/pushp314/agencydesk-backend/internal/realtime"
	"github.com/pushp314/agencydesk-backend/internal/routes"
	"github.com/pushp314/agencydesk-backend/internal/services"
	"github.com/pushp314/agencydesk-backend/internal/store"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
)

func main() {
	// 0. Load Config & Initialize Logger
	cfg := config.LoadConfig()
	logger.Init(cfg.Env)

	logger.Info().Str("environment", cfg.Env).Msg("Starting AgencyDesk Backend...")

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Connect Database & Redis
	if err := database.Connect(cfg); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.Migrate(database.DB); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	rdb := database.InitRedis(cfg)

	var limiter handlers.SendLimiter
	if rdb != nil {
		limiter = database.NewRedisLimiter(rdb, cfg.ChatSendPerMinute, time.Minute)
	} else {
		actorLimiter := middleware.NewActorLimiter(cfg.ChatSendPerMinute)
		defer actorLimiter.Stop()
		limiter = actorLimiter
	}

	// 2. Messaging core
	roles := services.NewRoles(cfg.OperatorRoleList()...)
	dispatcher := realtime.New()

	messages := store.NewMessageStore(database.DB, cfg.StoreTimeout)
	directory := store.NewDirectory(database.DB, store.NewUserIdentities(database.DB, cfg.StoreTimeout), cfg.StoreTimeout)
	notifications := store.NewNotificationStore(database.DB, cfg.NotificationPageSize, cfg.StoreTimeout)

	chat := services.NewChatService(messages, dispatcher)
	notifier := services.NewNotifier(notifications, dispatcher)

	// 3. Setup Router
	r := gin.New()

	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL))

	// Exempt /socket.io from rate limiting
	r.Use(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/socket.io") {
			c.Next()
			return
		}
		middleware.GeneralRateLimit()(c)
	})

	api := r.Group("/api")
	{
		routes.RegisterChatRoutes(api, handlers.NewChatHandler(chat, messages, directory, limiter, roles), roles)
		routes.RegisterNotificationRoutes(api, handlers.NewNotificationHandler(notifier), roles)
	}

	r.GET("/health", handlers.NewHealthHandler(database.DB, rdb).Check)

	// 4. Socket.io
	socketServer := handlers.NewSocketServer(dispatcher, chat, limiter, roles, cfg.StoreTimeout, []string{cfg.FrontendURL, "http://localhost:5173"})
	socketServer.Serve()

	r.GET("/socket.io/*any", socketServer.Handler())
	r.POST("/socket.io/*any", socketServer.Handler())

	// 5. Start Server with graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := socketServer.Close(); err != nil {
		logger.Warn().Err(err).Msg("Socket server close failed")
	}
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info().Msg("Server exited gracefully")
}
