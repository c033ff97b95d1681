package seeds

import (
	"github.com/pushp314/agencydesk-backend/internal/models"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
	"gorm.io/gorm"
)

// DemoUsers is the local-development directory: one operator and a few
// candidates. Production users come from the identity service.
var DemoUsers = []models.User{
	{Name: "Agency Desk", Email: "desk@agencydesk.local", Phone: "+91 90000 00001", Role: models.RoleAdmin},
	{Name: "Asha Verma", Email: "asha@example.com", Phone: "+91 90000 00002", Role: models.RoleUser},
	{Name: "Karan Mehta", Email: "karan@example.com", Phone: "+91 90000 00003", Role: models.RoleUser},
	{Name: "Neha Iyer", Email: "neha@example.com", Role: models.RoleUser},
}

// Users inserts any demo user missing by email and returns all of them with
// their ids.
func Users(db *gorm.DB) ([]models.User, error) {
	out := make([]models.User, 0, len(DemoUsers))
	for _, u := range DemoUsers {
		user := u
		if err := db.Where("email = ?", u.Email).FirstOrCreate(&user).Error; err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	logger.Info().Int("count", len(out)).Msg("Demo users ready")
	return out, nil
}
