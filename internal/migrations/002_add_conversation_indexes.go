package migrations

import (
	"gorm.io/gorm"
)

// Migration002AddConversationIndexes covers both directions of the history
// query and the per-counterpart MAX(id) grouping behind the operator inbox.
//
// Plain CREATE INDEX (not CONCURRENTLY) because Up runs inside a transaction.
func Migration002AddConversationIndexes() Migration {
	return Migration{
		ID:        "002_add_conversation_indexes",
		Name:      "Add conversation lookup indexes",
		DependsOn: []string{"001_create_messaging_tables"},
		Up: func(db *gorm.DB) error {
			statements := []string{
				`CREATE INDEX IF NOT EXISTS idx_messages_sender_receiver_id ON messages (sender_id, receiver_id, id)`,
				`CREATE INDEX IF NOT EXISTS idx_messages_receiver_sender_id ON messages (receiver_id, sender_id, id)`,
				`CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications (created_at)`,
			}
			for _, stmt := range statements {
				if err := db.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return nil
		},
	}
}
