package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/pushp314/agencydesk-backend/internal/config"
	"github.com/pushp314/agencydesk-backend/internal/database"
	"github.com/pushp314/agencydesk-backend/internal/models"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
	"gorm.io/gorm"
)

// promote_operator grants an operator role to an existing user so they can
// read the chat inbox and publish notifications.
func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.Env)

	roles := cfg.OperatorRoleList()
	defaultRole := string(models.RoleAdmin)
	if len(roles) > 0 {
		defaultRole = roles[0]
	}

	email := flag.String("email", "", "email of the user to promote")
	role := flag.String("role", defaultRole, "operator role to grant")
	flag.Parse()

	if *email == "" {
		logger.Fatal().Msg("-email is required")
	}

	if err := database.Connect(cfg); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	user, err := promote(database.DB, *email, *role)
	if err != nil {
		logger.Fatal().Err(err).Str("email", *email).Msg("Promotion failed")
	}

	fmt.Printf("Promoted %s (%s, id %d) to %s.\n", user.Name, user.Email, user.ID, user.Role)
}

func promote(db *gorm.DB, email, role string) (models.User, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return models.User{}, fmt.Errorf("role must not be empty")
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("user %s not found: %w", email, err)
	}

	if err := db.Model(&user).Update("role", models.Role(role)).Error; err != nil {
		return models.User{}, fmt.Errorf("failed to update role: %w", err)
	}
	user.Role = models.Role(role)
	return user, nil
}
