package controller

import (
	"errors"
	"net/http"

	"github.com/aldenair/storefront-backend/internal/app/service"
	apperrors "github.com/aldenair/storefront-backend/internal/errors"
	"github.com/aldenair/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type LoyaltyController struct {
	loyaltyService service.LoyaltyService
}

func NewLoyaltyController(loyaltyService service.LoyaltyService) *LoyaltyController {
	return &LoyaltyController{loyaltyService: loyaltyService}
}

// GetStatus returns the user's points, tier and distance to the next tier
// GET /api/v1/loyalty
func (ctrl *LoyaltyController) GetStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	progress, err := ctrl.loyaltyService.GetStatus(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "User not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to load loyalty status", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"loyalty": progress})
}
