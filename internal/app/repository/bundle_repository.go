package repository

import (
	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type BundleRepository interface {
	Create(offer *model.BundleOffer) error
	FindActive() ([]model.BundleOffer, error)
	FindByID(id uint) (*model.BundleOffer, error)
	Delete(id uint) error
}

type bundleRepository struct {
	db *gorm.DB
}

func NewBundleRepository(db *gorm.DB) BundleRepository {
	return &bundleRepository{db: db}
}

func (r *bundleRepository) Create(offer *model.BundleOffer) error {
	if err := r.db.Create(offer).Error; err != nil {
		logger.Error("Failed to create bundle offer", err, map[string]interface{}{
			"slug": offer.Slug,
		})
		return err
	}
	logger.Debug("Bundle offer created", map[string]interface{}{
		"bundle_id": offer.ID,
		"slug":      offer.Slug,
	})
	return nil
}

// FindActive returns active offers ordered by id, the tie order for equal discounts
func (r *bundleRepository) FindActive() ([]model.BundleOffer, error) {
	var offers []model.BundleOffer
	if err := r.db.Where("active = ?", true).Order("id ASC").Find(&offers).Error; err != nil {
		logger.Error("Failed to list bundle offers", err)
		return nil, err
	}
	return offers, nil
}

func (r *bundleRepository) FindByID(id uint) (*model.BundleOffer, error) {
	var offer model.BundleOffer
	if err := r.db.First(&offer, id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *bundleRepository) Delete(id uint) error {
	result := r.db.Delete(&model.BundleOffer{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete bundle offer", result.Error, map[string]interface{}{
			"bundle_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
