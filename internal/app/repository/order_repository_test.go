package repository

import (
	"testing"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRepository_CreateWithItems(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewOrderRepository(testDB)
	userID := uint(7)

	order := &model.Order{
		SessionID:     "sess-1",
		UserID:        &userID,
		Currency:      "EUR",
		SubtotalCents: 11997,
		DiscountCents: 2399,
		TotalCents:    9598,
		BundleID:      "trio",
		BundlePercent: 20,
		ItemCount:     3,
		OrderItems: []model.OrderItem{
			{ProductID: "1", VariantID: "3", Name: "Oud Royal", UnitPriceCents: 4499, Quantity: 2, LineTotalCents: 8998},
			{ProductID: "2", VariantID: "5", Name: "Amber Nuit", UnitPriceCents: 2999, Quantity: 1, LineTotalCents: 2999},
		},
	}
	require.NoError(t, repo.Create(order))
	assert.NotZero(t, order.ID)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, found.Status)
	assert.Len(t, found.OrderItems, 2)

	require.NoError(t, repo.UpdateLoyaltyPoints(order.ID, 95))

	orders, err := repo.FindByUserID(userID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(95), orders[0].LoyaltyPointsEarned)

	none, err := repo.FindByUserID(8)
	require.NoError(t, err)
	assert.Empty(t, none)
}
