package persistence

import (
	"context"
	"testing"

	"github.com/carbure/backend/internal/domain/declaration"
	"github.com/carbure/backend/internal/domain/shared"
	"github.com/carbure/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDeclarationTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&declaration.Declaration{})
	require.NoError(t, err)

	return db
}

func TestGormDeclarationRepository_SaveAndFindByPeriod(t *testing.T) {
	db := setupDeclarationTestDB(t)
	repo := NewGormDeclarationRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	decl, err := declaration.NewDeclaration(entityID, valueobject.Period(202403))
	require.NoError(t, err)
	decl.UpdateCounts(2, 5, 3, 0, 1)

	require.NoError(t, repo.Save(ctx, decl))

	found, err := repo.FindByPeriod(ctx, entityID, valueobject.Period(202403))
	require.NoError(t, err)
	assert.Equal(t, decl.ID, found.ID)
	assert.Equal(t, int64(5), found.InCount)
	assert.Equal(t, int64(1), found.PendingCount)
	assert.False(t, found.Declared)
}

func TestGormDeclarationRepository_FindByPeriodNotFound(t *testing.T) {
	db := setupDeclarationTestDB(t)
	repo := NewGormDeclarationRepository(db)

	_, err := repo.FindByPeriod(context.Background(), uuid.New(), valueobject.Period(202401))

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormDeclarationRepository_FindByYear(t *testing.T) {
	db := setupDeclarationTestDB(t)
	repo := NewGormDeclarationRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	for _, period := range []valueobject.Period{202412, 202401, 202506, 202406} {
		decl, err := declaration.NewDeclaration(entityID, period)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, decl))
	}
	// another entity's declaration must not leak into the year view
	other, err := declaration.NewDeclaration(uuid.New(), valueobject.Period(202403))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	declarations, err := repo.FindByYear(ctx, entityID, 2024)
	require.NoError(t, err)

	require.Len(t, declarations, 3)
	assert.Equal(t, valueobject.Period(202401), declarations[0].Period)
	assert.Equal(t, valueobject.Period(202406), declarations[1].Period)
	assert.Equal(t, valueobject.Period(202412), declarations[2].Period)
}

func TestGormDeclarationRepository_SavePersistsValidation(t *testing.T) {
	db := setupDeclarationTestDB(t)
	repo := NewGormDeclarationRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	decl, err := declaration.NewDeclaration(entityID, valueobject.Period(202402))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, decl))

	require.NoError(t, decl.Validate())
	require.NoError(t, repo.Save(ctx, decl))

	found, err := repo.FindByPeriod(ctx, entityID, valueobject.Period(202402))
	require.NoError(t, err)
	assert.True(t, found.Declared)
	require.NotNil(t, found.DeclaredAt)
}
