package controller

import (
	"errors"
	"net/http"

	"github.com/aldenair/storefront-backend/internal/app/service"
	apperrors "github.com/aldenair/storefront-backend/internal/errors"
	"github.com/aldenair/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type PartnerController struct {
	partnerService service.PartnerService
}

func NewPartnerController(partnerService service.PartnerService) *PartnerController {
	return &PartnerController{partnerService: partnerService}
}

type PartnerApplicationRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"required,email"`
	IBAN  string `json:"iban" binding:"required"`
}

// Apply submits a partner application for the signed-in user
// POST /api/v1/partners
func (ctrl *PartnerController) Apply(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req PartnerApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name, email and iban are required")
		return
	}

	partner, err := ctrl.partnerService.Apply(userID, req.Name, req.Email, req.IBAN)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidIBAN):
			apperrors.BadRequest(c, apperrors.PartnerInvalidIBAN, "Please enter a valid IBAN")
		case errors.Is(err, service.ErrPartnerAlreadyApplied):
			apperrors.Conflict(c, apperrors.PartnerAlreadyApplied, "You have already applied")
		default:
			middleware.GetLoggerFromContext(c).Error("Partner application failed", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "partner")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"partner": partner})
}

// GetMine returns the signed-in user's application
// GET /api/v1/partners/me
func (ctrl *PartnerController) GetMine(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	partner, err := ctrl.partnerService.GetByUser(userID)
	if err != nil {
		if errors.Is(err, service.ErrPartnerNotFound) {
			apperrors.NotFound(c, apperrors.PartnerNotFound, "No partner application found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to load partner", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"partner": partner})
}

// Approve approves an application (admin)
// PUT /api/v1/partners/:id/approve
func (ctrl *PartnerController) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	partner, err := ctrl.partnerService.Approve(id)
	if err != nil {
		if errors.Is(err, service.ErrPartnerNotFound) {
			apperrors.NotFound(c, apperrors.PartnerNotFound, "Partner not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to approve partner", err, map[string]interface{}{
			"partner_id": id,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"partner": partner})
}
