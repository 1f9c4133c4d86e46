package scheduler

import (
	"time"

	"github.com/aldenair/storefront-backend/internal/app/service"
	"github.com/aldenair/storefront-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Pruner drops expired rate limiter state
type Pruner interface {
	Prune()
}

// CartSessionScheduler ends idle cart sessions on a cron schedule
type CartSessionScheduler struct {
	cron     *cron.Cron
	schedule string
	maxIdle  time.Duration
	carts    service.CartService
	limiter  Pruner // optional
}

func NewCartSessionScheduler(carts service.CartService, schedule string, maxIdle time.Duration, limiter Pruner) *CartSessionScheduler {
	return &CartSessionScheduler{
		cron:     cron.New(),
		schedule: schedule,
		maxIdle:  maxIdle,
		carts:    carts,
		limiter:  limiter,
	}
}

// Sweep runs one pass and returns how many sessions were ended
func (s *CartSessionScheduler) Sweep() int {
	removed := s.carts.SweepIdle(s.maxIdle)
	if s.limiter != nil {
		s.limiter.Prune()
	}

	logger.Info("Idle cart sessions swept", map[string]interface{}{
		"removed":   removed,
		"remaining": s.carts.ActiveSessions(),
		"max_idle":  s.maxIdle.String(),
	})
	return removed
}

func (s *CartSessionScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.Sweep() }); err != nil {
		logger.Error("Failed to add cron job for cart session sweep", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Cart session scheduler started", map[string]interface{}{
		"schedule": s.schedule,
		"max_idle": s.maxIdle.String(),
	})
	return nil
}

// Stop waits for a running sweep to finish
func (s *CartSessionScheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Cart session scheduler stopped", nil)
}
