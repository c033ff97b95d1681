package migrations

import (
	"github.com/pushp314/agencydesk-backend/internal/models"
	"gorm.io/gorm"
)

// Migration001CreateMessagingTables creates the conversation log, notifications
// and the per-actor read watermark table.
func Migration001CreateMessagingTables() Migration {
	return Migration{
		ID:   "001_create_messaging_tables",
		Name: "Create messages, notifications and notification read states",
		Up: func(db *gorm.DB) error {
			return db.AutoMigrate(
				&models.Message{},
				&models.Notification{},
				&models.NotificationReadState{},
			)
		},
	}
}
