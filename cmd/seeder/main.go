package main

import (
	"context"

	"github.com/pushp314/agencydesk-backend/internal/config"
	"github.com/pushp314/agencydesk-backend/internal/database"
	"github.com/pushp314/agencydesk-backend/internal/models"
	"github.com/pushp314/agencydesk-backend/internal/seeds"
	"github.com/pushp314/agencydesk-backend/internal/store"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
)

// seeder fills a local database with demo users, conversations and a
// notification. It refuses to run in production.
func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.Env)

	if cfg.Env == "production" {
		logger.Fatal().Msg("Refusing to seed a production database")
	}

	if err := database.Connect(cfg); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := database.Migrate(database.DB); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	// The users table belongs to the identity service; locally we create it.
	if err := database.DB.AutoMigrate(&models.User{}); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create users table")
	}

	users, err := seeds.Users(database.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed users")
	}

	messages := store.NewMessageStore(database.DB, cfg.StoreTimeout)
	notifications := store.NewNotificationStore(database.DB, cfg.NotificationPageSize, cfg.StoreTimeout)

	if err := seeds.Conversations(context.Background(), users[0], users[1:], messages, notifications); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed conversations")
	}

	logger.Info().Msg("Seeding complete")
}
