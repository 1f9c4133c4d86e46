package service

import (
	"context"
	"testing"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutService_Handoff(t *testing.T) {
	testDB := setupTestDB(t)
	fx := seedCatalog(t, testDB)
	trio := seedBundle(t, testDB, "trio", 20, 3)

	userRepo := repository.NewUserRepository(testDB)
	user := &model.User{Email: "lea@example.com", PasswordHash: "x", Name: "Lea"}
	require.NoError(t, userRepo.Create(user))

	carts := newCartService(testDB, nil, nil)
	orderRepo := repository.NewOrderRepository(testDB)
	checkout := NewCheckoutService(carts, orderRepo, NewLoyaltyService(userRepo), "EUR")
	ctx := context.Background()

	oudID, oud50 := fx.ids(fx.oud, 0)
	amberID, amber50 := fx.ids(fx.amber, 0)
	_, err := carts.AddItem(ctx, "s1", oudID, oud50)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "s1", oudID, oud50)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "s1", amberID, amber50)
	require.NoError(t, err)
	_, err = carts.ApplyBundle(ctx, "s1", BundleKey(*trio))
	require.NoError(t, err)

	order, err := checkout.Handoff(ctx, "s1", &user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, int64(11997), order.SubtotalCents)
	assert.Equal(t, int64(2399), order.DiscountCents)
	assert.Equal(t, int64(9598), order.TotalCents)
	assert.Equal(t, 3, order.ItemCount)
	assert.Equal(t, BundleKey(*trio), order.BundleID)
	assert.Equal(t, int64(95), order.LoyaltyPointsEarned)

	stored, err := orderRepo.FindByID(order.ID)
	require.NoError(t, err)
	require.Len(t, stored.OrderItems, 2)
	assert.Equal(t, "Oud Royal", stored.OrderItems[0].Name)
	assert.Equal(t, 2, stored.OrderItems[0].Quantity)
	assert.Equal(t, int64(8998), stored.OrderItems[0].LineTotalCents)
	assert.Equal(t, int64(95), stored.LoyaltyPointsEarned)

	reloaded, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(95), reloaded.LoyaltyPoints)

	assert.Equal(t, int64(9598), carts.View(ctx, "s1").Total(), "handoff leaves the cart alone")
}

func TestCheckoutService_HandoffGuest(t *testing.T) {
	testDB := setupTestDB(t)
	fx := seedCatalog(t, testDB)
	carts := newCartService(testDB, nil, nil)
	checkout := NewCheckoutService(carts, repository.NewOrderRepository(testDB),
		NewLoyaltyService(repository.NewUserRepository(testDB)), "EUR")
	ctx := context.Background()

	amberID, amber50 := fx.ids(fx.amber, 0)
	_, err := carts.AddItem(ctx, "guest", amberID, amber50)
	require.NoError(t, err)

	order, err := checkout.Handoff(ctx, "guest", nil)
	require.NoError(t, err)
	assert.Nil(t, order.UserID)
	assert.Equal(t, int64(2999), order.TotalCents)
	assert.Zero(t, order.LoyaltyPointsEarned)
	assert.Empty(t, order.BundleID)
}

func TestCheckoutService_HandoffEmptyCart(t *testing.T) {
	testDB := setupTestDB(t)
	carts := newCartService(testDB, nil, nil)
	checkout := NewCheckoutService(carts, repository.NewOrderRepository(testDB),
		NewLoyaltyService(repository.NewUserRepository(testDB)), "EUR")

	_, err := checkout.Handoff(context.Background(), "nobody", nil)
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestCheckoutService_HandoffBundleWithoutItems(t *testing.T) {
	testDB := setupTestDB(t)
	fx := seedCatalog(t, testDB)
	duo := seedBundle(t, testDB, "duo", 10, 2)
	carts := newCartService(testDB, nil, nil)
	checkout := NewCheckoutService(carts, repository.NewOrderRepository(testDB),
		NewLoyaltyService(repository.NewUserRepository(testDB)), "EUR")
	ctx := context.Background()

	oudID, oud50 := fx.ids(fx.oud, 0)
	_, err := carts.AddItem(ctx, "s1", oudID, oud50)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "s1", oudID, oud50)
	require.NoError(t, err)
	_, err = carts.ApplyBundle(ctx, "s1", BundleKey(*duo))
	require.NoError(t, err)
	carts.RemoveItem(ctx, "s1", oudID, oud50)

	_, err = checkout.Handoff(ctx, "s1", nil)
	assert.ErrorIs(t, err, ErrCartEmpty)
}
