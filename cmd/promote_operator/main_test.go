package main

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pushp314/agencydesk-backend/internal/database"
	"github.com/pushp314/agencydesk-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromote(t *testing.T) {
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(&models.User{}))
	require.NoError(t, db.Create(&models.User{ID: 3, Name: "Ravi", Email: "ravi@agency.test"}).Error)

	user, err := promote(db, "ravi@agency.test", " support ")
	require.NoError(t, err)
	assert.Equal(t, models.Role("SUPPORT"), user.Role)

	var stored models.User
	require.NoError(t, db.First(&stored, 3).Error)
	assert.Equal(t, models.Role("SUPPORT"), stored.Role)

	_, err = promote(db, "nobody@agency.test", "ADMIN")
	assert.Error(t, err)

	_, err = promote(db, "ravi@agency.test", "  ")
	assert.Error(t, err)
}
