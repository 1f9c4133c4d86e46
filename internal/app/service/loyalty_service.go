package service

import (
	"errors"

	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/aldenair/storefront-backend/pkg/logger"
	"github.com/aldenair/storefront-backend/pkg/loyalty"
	"gorm.io/gorm"
)

type LoyaltyService interface {
	GetStatus(userID uint) (loyalty.Progress, error)
	Credit(userID uint, totalMinorUnits int64) (int64, error)
}

type loyaltyService struct {
	userRepo repository.UserRepository
}

func NewLoyaltyService(userRepo repository.UserRepository) LoyaltyService {
	return &loyaltyService{userRepo: userRepo}
}

func (s *loyaltyService) GetStatus(userID uint) (loyalty.Progress, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return loyalty.Progress{}, ErrUserNotFound
		}
		return loyalty.Progress{}, err
	}
	return loyalty.ProgressFor(user.LoyaltyPoints), nil
}

// Credit adds the points earned by an order total and returns them
func (s *loyaltyService) Credit(userID uint, totalMinorUnits int64) (int64, error) {
	points := loyalty.PointsForTotal(totalMinorUnits)
	if points == 0 {
		return 0, nil
	}

	if err := s.userRepo.AddLoyaltyPoints(userID, points); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	logger.Info("Loyalty points credited", map[string]interface{}{
		"user_id": userID,
		"points":  points,
	})
	return points, nil
}
