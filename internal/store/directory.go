package store

import (
	"context"
	"time"

	"github.com/pushp314/agencydesk-backend/internal/models"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
	"gorm.io/gorm"
)

// IdentityLookup resolves a counterpart's display identity.
type IdentityLookup interface {
	Counterpart(ctx context.Context, id uint) (models.Counterpart, error)
}

// Directory derives an operator's inbox from the conversation log.
type Directory struct {
	base
	identities IdentityLookup
}

func NewDirectory(db *gorm.DB, identities IdentityLookup, timeout time.Duration) *Directory {
	return &Directory{base: newBase(db, timeout), identities: identities}
}

// The latest message per counterpart is the one with the highest id in that
// pair. Self-addressed messages collapse onto the operator and are filtered out.
// partner_id is computed once and grouped by name: Postgres numbers each bind
// ($1, $2, ...) and would not match a repeated CASE in GROUP BY.
const conversationsQuery = `
	WITH pairs AS (
		SELECT
			CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS partner_id,
			id
		FROM messages
		WHERE sender_id = ? OR receiver_id = ?
	),
	partners AS (
		SELECT partner_id, MAX(id) AS last_id
		FROM pairs
		GROUP BY partner_id
	)
	SELECT p.partner_id, m.id, m.sender_id, m.receiver_id, m.body, m.created_at
	FROM partners p
	JOIN messages m ON m.id = p.last_id
	WHERE p.partner_id <> ?
	ORDER BY m.id DESC
`

type conversationRow struct {
	PartnerID  uint
	ID         uint
	SenderID   uint
	ReceiverID uint
	Body       string
	CreatedAt  time.Time
}

// ListConversations returns one entry per counterpart of operatorID, most
// recent activity first. Counterparts whose identity cannot be resolved are
// left out instead of failing the listing.
func (d *Directory) ListConversations(ctx context.Context, operatorID uint) ([]models.ChatListEntry, error) {
	db, cancel := d.session(ctx)
	var rows []conversationRow
	err := db.Raw(conversationsQuery, operatorID, operatorID, operatorID, operatorID).Scan(&rows).Error
	cancel()
	if err != nil {
		return nil, wrap("Failed to fetch conversations", err)
	}

	entries := make([]models.ChatListEntry, 0, len(rows))
	for _, row := range rows {
		if row.PartnerID == operatorID {
			continue
		}

		counterpart, err := d.identities.Counterpart(ctx, row.PartnerID)
		if err != nil {
			logger.Warn().Err(err).
				Uint("operator_id", operatorID).
				Uint("counterpart_id", row.PartnerID).
				Msg("Skipping conversation with unresolved counterpart")
			continue
		}

		entries = append(entries, models.ChatListEntry{
			Counterpart: counterpart,
			LastMessage: models.Message{
				ID:         row.ID,
				SenderID:   row.SenderID,
				ReceiverID: row.ReceiverID,
				Body:       row.Body,
				CreatedAt:  row.CreatedAt,
			},
		})
	}
	return entries, nil
}

// UserIdentities reads counterpart identities from the users table.
type UserIdentities struct {
	base
}

func NewUserIdentities(db *gorm.DB, timeout time.Duration) *UserIdentities {
	return &UserIdentities{base: newBase(db, timeout)}
}

func (u *UserIdentities) Counterpart(ctx context.Context, id uint) (models.Counterpart, error) {
	db, cancel := u.session(ctx)
	defer cancel()

	var user models.User
	if err := db.Select("id", "name", "email", "phone").First(&user, id).Error; err != nil {
		return models.Counterpart{}, wrap("Counterpart not found", err)
	}
	return models.Counterpart{ID: user.ID, Name: user.Name, Email: user.Email, Phone: user.Phone}, nil
}
