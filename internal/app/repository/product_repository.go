package repository

import (
	"fmt"
	"strings"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortName      ProductSort = "name"
	ProductSortBrand     ProductSort = "brand"
)

type ProductFilter struct {
	Category      *model.ProductCategory
	Brand         string
	Search        string
	IncludeHidden bool
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	FindByID(id uint) (*model.Product, error)
	FindVariant(productID, variantID uint) (*model.ProductVariant, error)
	Update(product *model.Product) error
	ReplaceVariants(productID uint, variants []model.ProductVariant) error
	Delete(id uint) error
	ExistingSKUs(skus []string) ([]string, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"brand":    product.Brand,
		"name":     product.Name,
		"variants": len(product.Variants),
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"brand": product.Brand,
			"name":  product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category": filter.Category,
		"brand":    filter.Brand,
		"search":   filter.Search,
		"sort_by":  filter.SortBy,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})

	query := r.db.Model(&model.Product{})
	if !filter.IncludeHidden {
		query = query.Where("products.active = ?", true)
	}
	if filter.Category != nil {
		query = query.Where("products.category = ?", *filter.Category)
	}
	if filter.Brand != "" {
		query = query.Where("LOWER(products.brand) = ?", strings.ToLower(filter.Brand))
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.ToLower(filter.Search))
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.brand) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err)
		return nil, 0, err
	}

	column := "products.created_at"
	switch filter.SortBy {
	case ProductSortName:
		column = "products.name"
	case ProductSortBrand:
		column = "products.brand"
	}
	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	query = query.Order(fmt.Sprintf("%s %s", column, direction)).Order("products.id ASC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Preload("Variants", orderVariants).Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err)
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func orderVariants(db *gorm.DB) *gorm.DB {
	return db.Order("product_variants.price_cents ASC")
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Variants", orderVariants).First(&product, id).Error; err != nil {
		logger.Error("Failed to find product by ID", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return &product, nil
}

// FindVariant only returns the variant when it belongs to productID
func (r *productRepository) FindVariant(productID, variantID uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	err := r.db.Where("id = ? AND product_id = ?", variantID, productID).First(&variant).Error
	if err != nil {
		logger.Debug("Variant not found for product", map[string]interface{}{
			"product_id": productID,
			"variant_id": variantID,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &variant, nil
}

func (r *productRepository) Update(product *model.Product) error {
	if err := r.db.Omit("Variants").Save(product).Error; err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) ReplaceVariants(productID uint, variants []model.ProductVariant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("product_id = ?", productID).Delete(&model.ProductVariant{}).Error; err != nil {
			return err
		}
		if len(variants) == 0 {
			return nil
		}
		for i := range variants {
			variants[i].ID = 0
			variants[i].ProductID = productID
		}
		return tx.Create(&variants).Error
	})
}

func (r *productRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExistingSKUs returns which of skus are already taken, including variants
// of soft-deleted products
func (r *productRepository) ExistingSKUs(skus []string) ([]string, error) {
	if len(skus) == 0 {
		return nil, nil
	}
	var found []string
	err := r.db.Unscoped().Model(&model.ProductVariant{}).
		Where("sku IN ?", skus).
		Pluck("sku", &found).Error
	if err != nil {
		logger.Error("Failed to look up SKUs", err, map[string]interface{}{
			"count": len(skus),
		})
		return nil, err
	}
	return found, nil
}
