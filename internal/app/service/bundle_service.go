package service

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/aldenair/storefront-backend/pkg/logger"
	"github.com/aldenair/storefront-backend/pkg/pricing"
	"gorm.io/gorm"
)

var (
	ErrBundleNotFound    = errors.New("bundle offer not found")
	ErrBundleNotEligible = errors.New("cart does not hold enough items for this bundle")
	ErrInvalidBundle     = errors.New("bundle offer is invalid")
)

type BundleInput struct {
	Slug             string  `json:"slug" binding:"required"`
	Name             string  `json:"name" binding:"required"`
	DiscountPercent  float64 `json:"discount_percent"`
	QuantityRequired int     `json:"quantity_required"`
}

type BundleService interface {
	ListActive() ([]model.BundleOffer, error)
	Eligible(itemCount int) ([]model.BundleOffer, error)
	GetActive(bundleID string) (*model.BundleOffer, error)
	Create(input BundleInput) (*model.BundleOffer, error)
	Delete(id uint) error
}

type bundleService struct {
	bundleRepo repository.BundleRepository
}

func NewBundleService(bundleRepo repository.BundleRepository) BundleService {
	return &bundleService{bundleRepo: bundleRepo}
}

// BundleKey is the id a bundle offer carries inside a cart
func BundleKey(offer model.BundleOffer) string {
	return strconv.FormatUint(uint64(offer.ID), 10)
}

func (s *bundleService) ListActive() ([]model.BundleOffer, error) {
	return s.bundleRepo.FindActive()
}

// Eligible returns the active offers a cart of itemCount qualifies for,
// highest discount first.
func (s *bundleService) Eligible(itemCount int) ([]model.BundleOffer, error) {
	offers, err := s.bundleRepo.FindActive()
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]model.BundleOffer, len(offers))
	candidates := make([]pricing.Bundle, 0, len(offers))
	for _, o := range offers {
		key := BundleKey(o)
		byKey[key] = o
		candidates = append(candidates, pricing.Bundle{
			ID:               key,
			Name:             o.Name,
			DiscountPercent:  o.DiscountPercent,
			QuantityRequired: o.QuantityRequired,
		})
	}

	eligible := pricing.EligibleBundles(candidates, itemCount)
	result := make([]model.BundleOffer, 0, len(eligible))
	for _, b := range eligible {
		result = append(result, byKey[b.ID])
	}
	return result, nil
}

func (s *bundleService) GetActive(bundleID string) (*model.BundleOffer, error) {
	id, err := strconv.ParseUint(bundleID, 10, 64)
	if err != nil {
		return nil, ErrBundleNotFound
	}
	offer, err := s.bundleRepo.FindByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBundleNotFound
		}
		return nil, err
	}
	if !offer.Active {
		return nil, ErrBundleNotFound
	}
	return offer, nil
}

func (s *bundleService) Create(input BundleInput) (*model.BundleOffer, error) {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if slug == "" || strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidBundle
	}
	if math.IsNaN(input.DiscountPercent) || input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return nil, ErrInvalidBundle
	}
	if input.QuantityRequired < 1 {
		return nil, ErrInvalidBundle
	}

	offer := &model.BundleOffer{
		Slug:             slug,
		Name:             strings.TrimSpace(input.Name),
		DiscountPercent:  input.DiscountPercent,
		QuantityRequired: input.QuantityRequired,
		Active:           true,
	}
	if err := s.bundleRepo.Create(offer); err != nil {
		return nil, err
	}

	logger.Info("Bundle offer created", map[string]interface{}{
		"bundle_id":         offer.ID,
		"slug":              offer.Slug,
		"discount_percent":  offer.DiscountPercent,
		"quantity_required": offer.QuantityRequired,
	})
	return offer, nil
}

func (s *bundleService) Delete(id uint) error {
	if err := s.bundleRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBundleNotFound
		}
		return err
	}
	logger.Info("Bundle offer deleted", map[string]interface{}{
		"bundle_id": id,
	})
	return nil
}
