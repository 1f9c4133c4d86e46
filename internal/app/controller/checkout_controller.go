package controller

import (
	"errors"
	"net/http"

	"github.com/aldenair/storefront-backend/internal/app/service"
	apperrors "github.com/aldenair/storefront-backend/internal/errors"
	"github.com/aldenair/storefront-backend/internal/middleware"
	"github.com/aldenair/storefront-backend/pkg/pricing"
	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: checkoutService}
}

// Checkout records the cart as a pending order and returns it for the
// payment step. Works for guests; signed-in users earn loyalty points.
// POST /api/v1/checkout
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetCartSession(c)

	var userID *uint
	if id, ok := middleware.GetUserID(c); ok {
		userID = &id
	}

	order, err := ctrl.checkoutService.Handoff(c.Request.Context(), sessionID, userID)
	if err != nil {
		if errors.Is(err, service.ErrCartEmpty) {
			apperrors.UnprocessableEntity(c, apperrors.CartEmpty, "Your cart is empty")
			return
		}
		log.Error("Checkout handoff failed", err, map[string]interface{}{
			"session_id": sessionID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":           order,
		"formatted_total": pricing.FormatMinorUnits(order.TotalCents, order.Currency),
	})
}
