package persistence

import (
	"context"
	"testing"

	"github.com/carbure/backend/internal/domain/settings"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSettingsTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&settings.EntitySettings{})
	require.NoError(t, err)

	return db
}

func TestGormSettingsRepository_SaveAndFindByEntity(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewGormSettingsRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	prefs, err := settings.NewEntitySettings(entityID)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, prefs))

	found, err := repo.FindByEntity(ctx, entityID)
	require.NoError(t, err)
	assert.Equal(t, entityID, found.EntityID)
	assert.Equal(t, valueobject.UnitVolume, found.PreferredUnit)
	assert.Equal(t, settings.DefaultPageLimit, found.PageLimit)
}

func TestGormSettingsRepository_SaveUpdatesExistingRow(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewGormSettingsRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	prefs, err := settings.NewEntitySettings(entityID)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, prefs))

	require.NoError(t, prefs.SetPreferredUnit(valueobject.UnitEnergy))
	require.NoError(t, prefs.SetPageLimit(100))
	require.NoError(t, repo.Save(ctx, prefs))

	found, err := repo.FindByEntity(ctx, entityID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.UnitEnergy, found.PreferredUnit)
	assert.Equal(t, 100, found.PageLimit)

	var count int64
	require.NoError(t, db.Model(&settings.EntitySettings{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGormSettingsRepository_FindByEntityNotFound(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewGormSettingsRepository(db)

	_, err := repo.FindByEntity(context.Background(), uuid.New())

	assert.ErrorIs(t, err, shared.ErrNotFound)
}
