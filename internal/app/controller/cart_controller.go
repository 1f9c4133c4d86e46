package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/app/service"
	apperrors "github.com/aldenair/storefront-backend/internal/errors"
	"github.com/aldenair/storefront-backend/internal/middleware"
	ws "github.com/aldenair/storefront-backend/internal/websocket"
	"github.com/aldenair/storefront-backend/pkg/cart"
	"github.com/aldenair/storefront-backend/pkg/pricing"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type CartController struct {
	cartService   service.CartService
	bundleService service.BundleService
	hub           *ws.Hub
	currency      string
	upgrader      websocket.Upgrader
}

// NewCartController serves the cart endpoints. allowedOrigins restricts the
// WebSocket upgrade the same way CORS restricts the REST calls; empty allows
// any origin.
func NewCartController(
	cartService service.CartService,
	bundleService service.BundleService,
	hub *ws.Hub,
	currency string,
	allowedOrigins []string,
) *CartController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &CartController{
		cartService:   cartService,
		bundleService: bundleService,
		hub:           hub,
		currency:      currency,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
	}
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id" binding:"required"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type ApplyBundleRequest struct {
	BundleID string `json:"bundle_id" binding:"required"`
}

type formattedTotals struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

type bundleSummary struct {
	ID               string  `json:"id"`
	Slug             string  `json:"slug"`
	Name             string  `json:"name"`
	DiscountPercent  float64 `json:"discount_percent"`
	QuantityRequired int     `json:"quantity_required"`
}

type CartResponse struct {
	SessionID       string          `json:"session_id"`
	Cart            cart.Snapshot   `json:"cart"`
	Currency        string          `json:"currency"`
	Formatted       formattedTotals `json:"formatted"`
	EligibleBundles []bundleSummary `json:"eligible_bundles"`
}

func summarizeBundles(offers []model.BundleOffer) []bundleSummary {
	out := make([]bundleSummary, 0, len(offers))
	for _, o := range offers {
		out = append(out, bundleSummary{
			ID:               service.BundleKey(o),
			Slug:             o.Slug,
			Name:             o.Name,
			DiscountPercent:  o.DiscountPercent,
			QuantityRequired: o.QuantityRequired,
		})
	}
	return out
}

func (ctrl *CartController) respond(c *gin.Context, status int, sessionID string, state cart.State) {
	snap := state.Snapshot()

	eligible, err := ctrl.bundleService.Eligible(snap.ItemCount)
	if err != nil {
		// the cart itself is fine, only the suggestions are missing
		middleware.GetLoggerFromContext(c).Warn("Failed to load eligible bundles", map[string]interface{}{
			"error": err.Error(),
		})
	}

	c.JSON(status, CartResponse{
		SessionID: sessionID,
		Cart:      snap,
		Currency:  ctrl.currency,
		Formatted: formattedTotals{
			Subtotal: pricing.FormatMinorUnits(snap.Subtotal, ctrl.currency),
			Discount: pricing.FormatMinorUnits(snap.Discount, ctrl.currency),
			Total:    pricing.FormatMinorUnits(snap.Total, ctrl.currency),
		},
		EligibleBundles: summarizeBundles(eligible),
	})
}

// GetCart returns the session's cart, empty when the session has none yet
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	sessionID := middleware.GetCartSession(c)
	ctrl.respond(c, http.StatusOK, sessionID, ctrl.cartService.View(c.Request.Context(), sessionID))
}

// AddItem adds one unit of a product variant
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetCartSession(c)

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id and variant_id are required")
		return
	}

	state, err := ctrl.cartService.AddItem(c.Request.Context(), sessionID, req.ProductID, req.VariantID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, service.ErrVariantNotFound):
			apperrors.NotFound(c, apperrors.ProductVariantNotFound, "This size is not available for the product")
		case errors.Is(err, service.ErrInvalidCatalogRecord):
			apperrors.UnprocessableEntity(c, apperrors.ProductNotFound, "This product cannot be added right now")
		default:
			log.Error("Failed to add cart item", err, map[string]interface{}{
				"product_id": req.ProductID,
				"variant_id": req.VariantID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	ctrl.respond(c, http.StatusOK, sessionID, state)
}

// UpdateItemQuantity sets a line's quantity; zero or less removes it
// PUT /api/v1/cart/items/:product_id/:variant_id
func (ctrl *CartController) UpdateItemQuantity(c *gin.Context) {
	sessionID := middleware.GetCartSession(c)

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "quantity is required")
		return
	}

	state := ctrl.cartService.SetQuantity(c.Request.Context(), sessionID, c.Param("product_id"), c.Param("variant_id"), *req.Quantity)
	ctrl.respond(c, http.StatusOK, sessionID, state)
}

// RemoveItem drops a line. Removing a line that is not there is not an error.
// DELETE /api/v1/cart/items/:product_id/:variant_id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	sessionID := middleware.GetCartSession(c)
	state := ctrl.cartService.RemoveItem(c.Request.Context(), sessionID, c.Param("product_id"), c.Param("variant_id"))
	ctrl.respond(c, http.StatusOK, sessionID, state)
}

// ApplyBundle applies an active bundle offer, replacing any earlier one
// POST /api/v1/cart/bundle
func (ctrl *CartController) ApplyBundle(c *gin.Context) {
	sessionID := middleware.GetCartSession(c)

	var req ApplyBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "bundle_id is required")
		return
	}

	state, err := ctrl.cartService.ApplyBundle(c.Request.Context(), sessionID, req.BundleID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBundleNotFound):
			apperrors.NotFound(c, apperrors.BundleNotFound, "Bundle offer not found")
		case errors.Is(err, service.ErrBundleNotEligible):
			apperrors.UnprocessableEntity(c, apperrors.BundleNotEligible, "Add more items to use this bundle")
		default:
			middleware.GetLoggerFromContext(c).Error("Failed to apply bundle", err, map[string]interface{}{
				"bundle_id": req.BundleID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	ctrl.respond(c, http.StatusOK, sessionID, state)
}

// RemoveBundle clears the bundle discount
// DELETE /api/v1/cart/bundle
func (ctrl *CartController) RemoveBundle(c *gin.Context) {
	sessionID := middleware.GetCartSession(c)
	ctrl.respond(c, http.StatusOK, sessionID, ctrl.cartService.RemoveBundle(c.Request.Context(), sessionID))
}

// ClearCart empties the cart and ends the session
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	sessionID := middleware.GetCartSession(c)
	ctrl.respond(c, http.StatusOK, sessionID, ctrl.cartService.Clear(c.Request.Context(), sessionID))
}

// Subscribe upgrades to a WebSocket that receives the cart after every change.
// The current cart is sent first.
// GET /api/v1/cart/ws?session=<id>
func (ctrl *CartController) Subscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetCartSession(c)

	initial, err := json.Marshal(ws.CartMessage{
		Type: ws.MessageTypeCartUpdated,
		Cart: ctrl.cartService.View(c.Request.Context(), sessionID).Snapshot(),
	})
	if err != nil {
		log.Error("Failed to encode cart", err)
		apperrors.InternalError(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	client := ws.NewClient(ctrl.hub, ws.NewConn(conn), sessionID)
	client.Send <- initial
	ctrl.hub.Register(client)

	log.Info("Cart subscriber connected", map[string]interface{}{
		"session_id": sessionID,
	})

	go client.WritePump()
	go client.ReadPump()
}
