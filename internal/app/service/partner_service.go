package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/aldenair/storefront-backend/pkg/logger"
	"github.com/aldenair/storefront-backend/pkg/util"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidIBAN           = errors.New("invalid iban")
	ErrPartnerAlreadyApplied = errors.New("partner application already exists")
	ErrPartnerNotFound       = errors.New("partner not found")
)

const referralCodeAttempts = 5

type PartnerService interface {
	Apply(userID uint, name, email, iban string) (*model.Partner, error)
	GetByUser(userID uint) (*model.Partner, error)
	Approve(id uint) (*model.Partner, error)
}

type partnerService struct {
	partnerRepo repository.PartnerRepository
	now         func() time.Time
}

func NewPartnerService(partnerRepo repository.PartnerRepository) PartnerService {
	return &partnerService{partnerRepo: partnerRepo, now: time.Now}
}

func (s *partnerService) Apply(userID uint, name, email, iban string) (*model.Partner, error) {
	if err := util.ValidateIBAN(iban); err != nil {
		logger.Debug("Partner application rejected: invalid IBAN", map[string]interface{}{
			"user_id": userID,
			"reason":  err.Error(),
		})
		return nil, fmt.Errorf("%w: %w", ErrInvalidIBAN, err)
	}

	if _, err := s.partnerRepo.FindByUserID(userID); err == nil {
		return nil, ErrPartnerAlreadyApplied
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code, err := s.newReferralCode()
	if err != nil {
		return nil, err
	}

	partner := &model.Partner{
		UserID:       userID,
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		IBAN:         util.NormalizeIBAN(iban),
		IBANMasked:   util.MaskIBAN(iban),
		ReferralCode: code,
		Status:       model.PartnerStatusPending,
	}
	if err := s.partnerRepo.Create(partner); err != nil {
		return nil, err
	}

	logger.Info("Partner application received", map[string]interface{}{
		"partner_id":    partner.ID,
		"user_id":       userID,
		"referral_code": code,
	})
	return partner, nil
}

func (s *partnerService) newReferralCode() (string, error) {
	for i := 0; i < referralCodeAttempts; i++ {
		raw := strings.ReplaceAll(uuid.NewString(), "-", "")
		code := "ALD-" + strings.ToUpper(raw[:8])

		exists, err := s.partnerRepo.ReferralCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique referral code")
}

func (s *partnerService) GetByUser(userID uint) (*model.Partner, error) {
	partner, err := s.partnerRepo.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return partner, nil
}

func (s *partnerService) Approve(id uint) (*model.Partner, error) {
	if err := s.partnerRepo.Approve(id, s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}

	logger.Info("Partner approved", map[string]interface{}{
		"partner_id": id,
	})
	return s.partnerRepo.FindByID(id)
}
