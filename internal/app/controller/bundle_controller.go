package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aldenair/storefront-backend/internal/app/service"
	apperrors "github.com/aldenair/storefront-backend/internal/errors"
	"github.com/aldenair/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type BundleController struct {
	bundleService service.BundleService
}

func NewBundleController(bundleService service.BundleService) *BundleController {
	return &BundleController{bundleService: bundleService}
}

// GetBundles lists the active offers
// GET /api/v1/bundles
func (ctrl *BundleController) GetBundles(c *gin.Context) {
	offers, err := ctrl.bundleService.ListActive()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to fetch bundles", err)
		apperrors.InternalError(c, "Failed to fetch bundle offers")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bundles": summarizeBundles(offers)})
}

// GetEligibleBundles lists the offers a cart with item_count items qualifies
// for, largest discount first
// GET /api/v1/bundles/eligible?item_count=3
func (ctrl *BundleController) GetEligibleBundles(c *gin.Context) {
	count, err := strconv.Atoi(c.Query("item_count"))
	if err != nil || count < 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "item_count must be a non-negative integer")
		return
	}

	offers, err := ctrl.bundleService.Eligible(count)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to compute eligible bundles", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item_count": count,
		"bundles":    summarizeBundles(offers),
	})
}

// CreateBundle adds an offer (admin)
// POST /api/v1/bundles
func (ctrl *BundleController) CreateBundle(c *gin.Context) {
	var req service.BundleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "slug and name are required")
		return
	}

	offer, err := ctrl.bundleService.Create(req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidBundle) {
			apperrors.BadRequest(c, apperrors.BundleInvalidOffer, "Discount must be between 0 and 100 and at least one item is required")
			return
		}
		info := apperrors.ParseError(err, "bundle")
		if info.Code == apperrors.BundleSlugExists {
			apperrors.Conflict(c, info.Code, info.Message)
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to create bundle", err)
		apperrors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bundle": offer})
}

// DeleteBundle retires an offer (admin). Carts that already applied it keep
// their discount.
// DELETE /api/v1/bundles/:id
func (ctrl *BundleController) DeleteBundle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.bundleService.Delete(id); err != nil {
		if errors.Is(err, service.ErrBundleNotFound) {
			apperrors.NotFound(c, apperrors.BundleNotFound, "Bundle offer not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to delete bundle", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bundle offer deleted"})
}
