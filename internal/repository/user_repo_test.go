package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/techversity/crm-api/internal/models"
)

func TestUserRepositoryLookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user := models.User{Name: "Ravi", Email: "ravi@techversity.in", Password: "hash", Role: "sales"}
	require.NoError(t, repo.Create(context.Background(), &user))

	byEmail, err := repo.GetByEmail(context.Background(), "ravi@techversity.in")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	byName, err := repo.GetByName(context.Background(), "Ravi")
	require.NoError(t, err)
	require.Equal(t, user.ID, byName.ID)

	_, err = repo.GetByName(context.Background(), "Nobody")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepositoryDeleteMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	require.ErrorIs(t, repo.Delete(context.Background(), 99), gorm.ErrRecordNotFound)
}
