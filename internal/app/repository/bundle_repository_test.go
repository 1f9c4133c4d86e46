package repository

import (
	"testing"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBundleRepository(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewBundleRepository(testDB)

	duo := &model.BundleOffer{Slug: "duo", Name: "Duo", DiscountPercent: 10, QuantityRequired: 2, Active: true}
	trio := &model.BundleOffer{Slug: "trio", Name: "Trio", DiscountPercent: 20, QuantityRequired: 3, Active: true}
	require.NoError(t, repo.Create(duo))
	require.NoError(t, repo.Create(trio))

	t.Run("duplicate slug", func(t *testing.T) {
		err := repo.Create(&model.BundleOffer{Slug: "duo", Name: "Again", DiscountPercent: 5, QuantityRequired: 2})
		assert.Error(t, err)
	})

	t.Run("inactive offers are hidden", func(t *testing.T) {
		require.NoError(t, testDB.Model(trio).Update("active", false).Error)
		active, err := repo.FindActive()
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "duo", active[0].Slug)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(duo.ID))
		_, err := repo.FindByID(duo.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.ErrorIs(t, repo.Delete(duo.ID), gorm.ErrRecordNotFound)
	})
}
