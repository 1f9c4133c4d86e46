package service

import (
	"context"
	"errors"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/aldenair/storefront-backend/pkg/cart"
	"github.com/aldenair/storefront-backend/pkg/logger"
)

var ErrCartEmpty = errors.New("cart is empty")

// CheckoutService hands a cart over to the payment boundary. It reads the
// cart once and records what was read; payment itself happens elsewhere.
type CheckoutService interface {
	Handoff(ctx context.Context, sessionID string, userID *uint) (*model.Order, error)
}

type checkoutService struct {
	carts     CartService
	orderRepo repository.OrderRepository
	loyalty   LoyaltyService
	currency  string
}

func NewCheckoutService(carts CartService, orderRepo repository.OrderRepository, loyalty LoyaltyService, currency string) CheckoutService {
	return &checkoutService{
		carts:     carts,
		orderRepo: orderRepo,
		loyalty:   loyalty,
		currency:  currency,
	}
}

func (s *checkoutService) Handoff(ctx context.Context, sessionID string, userID *uint) (*model.Order, error) {
	state := s.carts.View(ctx, sessionID)
	// a leftover bundle on an emptied cart is nothing to pay for
	if len(state.LineItems) == 0 {
		return nil, ErrCartEmpty
	}

	order := orderFromState(sessionID, userID, s.currency, state)
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	if userID != nil {
		points, err := s.loyalty.Credit(*userID, order.TotalCents)
		if err != nil {
			// the order stands without points
			logger.Error("Failed to credit loyalty points", err, map[string]interface{}{
				"order_id": order.ID,
				"user_id":  *userID,
			})
		} else if points > 0 {
			if err := s.orderRepo.UpdateLoyaltyPoints(order.ID, points); err != nil {
				logger.Warn("Failed to record earned points on order", map[string]interface{}{
					"order_id": order.ID,
					"error":    err.Error(),
				})
			}
			order.LoyaltyPointsEarned = points
		}
	}

	logger.Info("Checkout handed off", map[string]interface{}{
		"order_id":    order.ID,
		"session_id":  sessionID,
		"total_cents": order.TotalCents,
		"item_count":  order.ItemCount,
	})
	return order, nil
}

func orderFromState(sessionID string, userID *uint, currency string, state cart.State) *model.Order {
	order := &model.Order{
		SessionID:     sessionID,
		UserID:        userID,
		Status:        model.OrderStatusPending,
		Currency:      currency,
		SubtotalCents: state.Subtotal(),
		DiscountCents: state.Discount(),
		TotalCents:    state.Total(),
		ItemCount:     state.ItemCount(),
		OrderItems:    make([]model.OrderItem, 0, len(state.LineItems)),
	}
	if b := state.AppliedBundle; b != nil {
		order.BundleID = b.BundleID
		order.BundlePercent = b.DiscountPercent
	}

	for _, li := range state.LineItems {
		order.OrderItems = append(order.OrderItems, model.OrderItem{
			ProductID:      li.Item.ID,
			VariantID:      li.Variant.ID,
			Brand:          li.Item.Brand,
			Name:           li.Item.Name,
			Size:           li.Item.Size,
			UnitPriceCents: li.Variant.PriceMinorUnits,
			Quantity:       li.Quantity,
			LineTotalCents: li.LineTotal(),
		})
	}
	return order
}
