package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/aldenair/storefront-backend/internal/app/service"
	apperrors "github.com/aldenair/storefront-backend/internal/errors"
	"github.com/aldenair/storefront-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ProductController struct {
	catalogService service.CatalogService
}

func NewProductController(catalogService service.CatalogService) *ProductController {
	return &ProductController{
		catalogService: catalogService,
	}
}

func isAdmin(c *gin.Context) bool {
	role, ok := middleware.GetUserRole(c)
	return ok && role == model.RoleAdmin
}

// GetProducts lists the catalog
// GET /api/v1/products?category=&brand=&search=&sort=&order=&page=&page_size=
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	page, pageSize := pagination(c)

	opts := service.ProductListOptions{
		Brand:         c.Query("brand"),
		Search:        c.Query("search"),
		Sort:          repository.ProductSort(c.DefaultQuery("sort", string(repository.ProductSortCreatedAt))),
		SortAscending: strings.EqualFold(c.Query("order"), "asc"),
		IncludeHidden: isAdmin(c) && c.Query("include_hidden") == "true",
		Limit:         pageSize,
		Offset:        (page - 1) * pageSize,
	}
	if raw := c.Query("category"); raw != "" {
		category := model.ProductCategory(strings.ToLower(raw))
		if !category.Valid() {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown category")
			return
		}
		opts.Category = &category
	}

	products, total, err := ctrl.catalogService.ListProducts(opts)
	if err != nil {
		log.Error("Failed to fetch products", err)
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":  products,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetProductByID returns a product with its variants
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.catalogService.GetProduct(id)
	if err == nil && !product.Active && !isAdmin(c) {
		err = service.ErrProductNotFound
	}
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (ctrl *ProductController) respondWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidProductInput):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Product data is invalid")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	default:
		info := apperrors.ParseError(err, "product")
		status := http.StatusInternalServerError
		if info.Code == apperrors.ResourceAlreadyExists {
			status = http.StatusConflict
		} else {
			middleware.GetLoggerFromContext(c).Error("Product write failed", err)
		}
		apperrors.RespondWithError(c, status, info.Code, info.Message)
	}
}

// CreateProduct adds a perfume with its variants (admin)
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid product request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Product data is invalid")
		return
	}

	product, err := ctrl.catalogService.CreateProduct(req)
	if err != nil {
		ctrl.respondWriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// UpdateProduct replaces a product and its variants (admin)
// PUT /api/v1/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Product data is invalid")
		return
	}

	product, err := ctrl.catalogService.UpdateProduct(id, req)
	if err != nil {
		ctrl.respondWriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct soft-deletes a product (admin)
// DELETE /api/v1/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.catalogService.DeleteProduct(id); err != nil {
		ctrl.respondWriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
