package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/aldenair/storefront-backend/pkg/cart"
	"github.com/aldenair/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrVariantNotFound      = errors.New("variant not found for product")
	ErrInvalidCatalogRecord = errors.New("catalog record is invalid")
	ErrInvalidProductInput  = errors.New("invalid product input")
)

type ProductListOptions struct {
	Category      *model.ProductCategory
	Brand         string
	Search        string
	Sort          repository.ProductSort
	SortAscending bool
	IncludeHidden bool
	Limit         int
	Offset        int
}

// VariantInput describes one variant when creating or replacing a product
type VariantInput struct {
	SKU           string `json:"sku" binding:"required"`
	Label         string `json:"label"`
	PriceCents    int64  `json:"price_cents" binding:"min=0"`
	StockQuantity int    `json:"stock_quantity" binding:"min=0"`
}

type ProductInput struct {
	Brand       string                `json:"brand" binding:"required"`
	Name        string                `json:"name" binding:"required"`
	Description string                `json:"description"`
	ImageURL    string                `json:"image_url"`
	Category    model.ProductCategory `json:"category" binding:"required"`
	Size        string                `json:"size"`
	Notes       []string              `json:"notes"`
	Active      *bool                 `json:"active"`
	Variants    []VariantInput        `json:"variants" binding:"required,min=1,dive"`
}

// CatalogService reads perfumes and converts them into the cart's types.
type CatalogService interface {
	ListProducts(opts ProductListOptions) ([]model.Product, int64, error)
	GetProduct(id uint) (*model.Product, error)
	ResolveVariant(productID, variantID string) (cart.CatalogItem, cart.Variant, error)
	CreateProduct(input ProductInput) (*model.Product, error)
	UpdateProduct(id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(id uint) error
}

type catalogService struct {
	productRepo repository.ProductRepository
}

func NewCatalogService(productRepo repository.ProductRepository) CatalogService {
	return &catalogService{productRepo: productRepo}
}

func (s *catalogService) ListProducts(opts ProductListOptions) ([]model.Product, int64, error) {
	return s.productRepo.FindWithFilter(repository.ProductFilter{
		Category:      opts.Category,
		Brand:         opts.Brand,
		Search:        strings.TrimSpace(opts.Search),
		IncludeHidden: opts.IncludeHidden,
		SortBy:        opts.Sort,
		SortAscending: opts.SortAscending,
		Limit:         opts.Limit,
		Offset:        opts.Offset,
	})
}

func (s *catalogService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// ResolveVariant is the only way catalog data enters a cart. It checks that
// the variant belongs to the product and carries a sane price before handing
// out cart values.
func (s *catalogService) ResolveVariant(productID, variantID string) (cart.CatalogItem, cart.Variant, error) {
	pid, err := strconv.ParseUint(productID, 10, 64)
	if err != nil {
		return cart.CatalogItem{}, cart.Variant{}, ErrProductNotFound
	}
	vid, err := strconv.ParseUint(variantID, 10, 64)
	if err != nil {
		return cart.CatalogItem{}, cart.Variant{}, ErrVariantNotFound
	}

	product, err := s.productRepo.FindByID(uint(pid))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cart.CatalogItem{}, cart.Variant{}, ErrProductNotFound
		}
		return cart.CatalogItem{}, cart.Variant{}, err
	}
	if !product.Active {
		return cart.CatalogItem{}, cart.Variant{}, ErrProductNotFound
	}

	variant, err := s.productRepo.FindVariant(product.ID, uint(vid))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cart.CatalogItem{}, cart.Variant{}, ErrVariantNotFound
		}
		return cart.CatalogItem{}, cart.Variant{}, err
	}

	if variant.PriceCents < 0 || product.Name == "" {
		logger.Warn("Rejected malformed catalog record", map[string]interface{}{
			"product_id":  product.ID,
			"variant_id":  variant.ID,
			"price_cents": variant.PriceCents,
		})
		return cart.CatalogItem{}, cart.Variant{}, ErrInvalidCatalogRecord
	}

	item := cart.CatalogItem{
		ID:       strconv.FormatUint(uint64(product.ID), 10),
		Brand:    product.Brand,
		Name:     product.Name,
		Image:    product.ImageURL,
		Category: string(product.Category),
		Size:     product.Size,
	}
	if variant.Label != "" {
		item.Size = variant.Label
	}

	return item, cart.Variant{
		ID:              strconv.FormatUint(uint64(variant.ID), 10),
		ParentItemID:    item.ID,
		PriceMinorUnits: variant.PriceCents,
		InStock:         variant.InStock(),
	}, nil
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Brand) == "" || strings.TrimSpace(input.Name) == "" {
		return ErrInvalidProductInput
	}
	if !input.Category.Valid() || len(input.Variants) == 0 {
		return ErrInvalidProductInput
	}
	for _, v := range input.Variants {
		if v.SKU == "" || v.PriceCents < 0 || v.StockQuantity < 0 {
			return ErrInvalidProductInput
		}
	}
	return nil
}

func variantsFromInput(in []VariantInput) []model.ProductVariant {
	variants := make([]model.ProductVariant, 0, len(in))
	for _, v := range in {
		variants = append(variants, model.ProductVariant{
			SKU:           strings.TrimSpace(v.SKU),
			Label:         v.Label,
			PriceCents:    v.PriceCents,
			StockQuantity: v.StockQuantity,
		})
	}
	return variants
}

func applyProductInput(p *model.Product, input ProductInput) {
	p.Brand = strings.TrimSpace(input.Brand)
	p.Name = strings.TrimSpace(input.Name)
	p.Description = input.Description
	p.ImageURL = input.ImageURL
	p.Category = input.Category
	p.Size = input.Size
	p.Notes = input.Notes
	if input.Active != nil {
		p.Active = *input.Active
	}
}

func (s *catalogService) CreateProduct(input ProductInput) (*model.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &model.Product{Active: true}
	applyProductInput(product, input)
	product.Variants = variantsFromInput(input.Variants)

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	// default:true swallows a false Active on insert
	if input.Active != nil && !*input.Active {
		product.Active = false
		if err := s.productRepo.Update(product); err != nil {
			return nil, err
		}
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"brand":      product.Brand,
		"name":       product.Name,
		"variants":   len(product.Variants),
	})
	return s.productRepo.FindByID(product.ID)
}

func (s *catalogService) UpdateProduct(id uint, input ProductInput) (*model.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	applyProductInput(product, input)
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	if err := s.productRepo.ReplaceVariants(product.ID, variantsFromInput(input.Variants)); err != nil {
		return nil, err
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
	})
	return s.productRepo.FindByID(product.ID)
}

func (s *catalogService) DeleteProduct(id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}
