package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pushp314/agencydesk-backend/internal/config"
	"github.com/pushp314/agencydesk-backend/internal/database"
	"github.com/pushp314/agencydesk-backend/internal/store"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
)

// broadcast publishes a notification from the command line. Connected clients
// pick it up on their next latest/unread-count poll; live push only happens
// for notifications created through the running server.
func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.Env)

	title := flag.String("title", "", "notification title")
	message := flag.String("message", "", "notification body")
	kind := flag.String("type", "message", "message | alert | update")
	flag.Parse()

	if err := database.Connect(cfg); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.Migrate(database.DB); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	notifications := store.NewNotificationStore(database.DB, cfg.NotificationPageSize, cfg.StoreTimeout)
	n, err := notifications.Create(context.Background(), *title, *message, *kind)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create notification")
	}

	fmt.Printf("Created notification %d [%s] %q\n", n.ID, n.Type, n.Title)
}
