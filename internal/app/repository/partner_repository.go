package repository

import (
	"time"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type PartnerRepository interface {
	Create(partner *model.Partner) error
	FindByID(id uint) (*model.Partner, error)
	FindByUserID(userID uint) (*model.Partner, error)
	ReferralCodeExists(code string) (bool, error)
	Approve(id uint, at time.Time) error
}

type partnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) Create(partner *model.Partner) error {
	if err := r.db.Create(partner).Error; err != nil {
		logger.Error("Failed to create partner", err, map[string]interface{}{
			"user_id": partner.UserID,
		})
		return err
	}
	return nil
}

func (r *partnerRepository) FindByID(id uint) (*model.Partner, error) {
	var partner model.Partner
	if err := r.db.First(&partner, id).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepository) FindByUserID(userID uint) (*model.Partner, error) {
	var partner model.Partner
	if err := r.db.Where("user_id = ?", userID).First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepository) ReferralCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&model.Partner{}).Where("referral_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *partnerRepository) Approve(id uint, at time.Time) error {
	result := r.db.Model(&model.Partner{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      model.PartnerStatusApproved,
		"approved_at": at,
	})
	if result.Error != nil {
		logger.Error("Failed to approve partner", result.Error, map[string]interface{}{
			"partner_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
