package controller

import (
	"errors"
	"net/http"

	apperrors "github.com/aldenair/storefront-backend/internal/errors"
	"github.com/aldenair/storefront-backend/internal/middleware"
	"github.com/aldenair/storefront-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

type UploadController struct {
	storage storage.ImageStorage
}

func NewUploadController(storage storage.ImageStorage) *UploadController {
	return &UploadController{storage: storage}
}

type PresignRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

func respondUploadError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, storage.ErrContentTypeNotAllowed):
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG, PNG and WEBP images are allowed")
	case errors.Is(err, storage.ErrFileTooLarge):
		apperrors.RespondWithError(c, http.StatusRequestEntityTooLarge, apperrors.UploadFileTooLarge, "Images may be at most 5 MB")
	default:
		return false
	}
	return true
}

// PresignImage returns a presigned PUT URL for a product image (admin)
// POST /api/v1/upload/presigned-url
func (ctrl *UploadController) PresignImage(c *gin.Context) {
	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "content_type is required")
		return
	}

	upload, err := ctrl.storage.PresignUpload(c.Request.Context(), req.ContentType)
	if err != nil {
		if respondUploadError(c, err) {
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to presign upload", err)
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.UploadFailed, "Could not prepare the upload")
		return
	}

	c.JSON(http.StatusOK, upload)
}

// UploadImage accepts a multipart "file" and stores it (admin)
// POST /api/v1/upload/image
func (ctrl *UploadController) UploadImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	fh, err := c.FormFile("file")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "file is required")
		return
	}

	f, err := fh.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", err)
		apperrors.RespondWithError(c, http.StatusBadRequest, apperrors.UploadFailed, "Could not read the file")
		return
	}
	defer f.Close()

	url, err := ctrl.storage.Upload(c.Request.Context(), fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		if respondUploadError(c, err) {
			return
		}
		log.Error("Failed to upload image", err, map[string]interface{}{
			"filename": fh.Filename,
			"size":     fh.Size,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.UploadFailed, "Upload failed")
		return
	}

	log.Info("Product image uploaded", map[string]interface{}{
		"url": url,
	})
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
