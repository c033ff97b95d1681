package seeds

import (
	"context"
	"fmt"

	"github.com/pushp314/agencydesk-backend/internal/models"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
)

type MessageAppender interface {
	Append(ctx context.Context, senderID, receiverID uint, body string) (models.Message, error)
}

type NotificationCreator interface {
	Create(ctx context.Context, title, message, kind string) (models.Notification, error)
}

var candidateOpeners = []string{
	"Hi, I applied for the warehouse role in Dubai. Any update?",
	"Is my visa appointment confirmed for next week?",
	"Can I still join the Bali tour in March?",
}

// Conversations opens one thread between the operator and each candidate and
// publishes a welcome notification. It goes through the stores so the data
// looks exactly like live traffic.
func Conversations(ctx context.Context, operator models.User, candidates []models.User, messages MessageAppender, notifications NotificationCreator) error {
	for i, c := range candidates {
		if c.ID == operator.ID {
			continue
		}
		opener := candidateOpeners[i%len(candidateOpeners)]
		if _, err := messages.Append(ctx, c.ID, operator.ID, opener); err != nil {
			return fmt.Errorf("seed message from %d: %w", c.ID, err)
		}
		reply := fmt.Sprintf("Hello %s, we are checking and will get back to you today.", c.Name)
		if _, err := messages.Append(ctx, operator.ID, c.ID, reply); err != nil {
			return fmt.Errorf("seed reply to %d: %w", c.ID, err)
		}
	}

	if _, err := notifications.Create(ctx, "Welcome to AgencyDesk", "Chat with the desk any time from the Messages tab.", string(models.NotificationTypeUpdate)); err != nil {
		return fmt.Errorf("seed notification: %w", err)
	}

	logger.Info().Int("threads", len(candidates)).Msg("Demo conversations seeded")
	return nil
}
