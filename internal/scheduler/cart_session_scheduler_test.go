package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/aldenair/storefront-backend/pkg/cart"
	"github.com/stretchr/testify/assert"
)

type stubCarts struct {
	swept   []time.Duration
	removed int
	active  int
}

func (s *stubCarts) View(context.Context, string) cart.State         { return cart.Empty() }
func (s *stubCarts) RemoveBundle(context.Context, string) cart.State { return cart.Empty() }
func (s *stubCarts) Clear(context.Context, string) cart.State        { return cart.Empty() }
func (s *stubCarts) ActiveSessions() int                             { return s.active }
func (s *stubCarts) Flush(context.Context) error                     { return nil }
func (s *stubCarts) RemoveItem(context.Context, string, string, string) cart.State {
	return cart.Empty()
}
func (s *stubCarts) AddItem(context.Context, string, string, string) (cart.State, error) {
	return cart.Empty(), nil
}
func (s *stubCarts) SetQuantity(context.Context, string, string, string, int) cart.State {
	return cart.Empty()
}
func (s *stubCarts) ApplyBundle(context.Context, string, string) (cart.State, error) {
	return cart.Empty(), nil
}
func (s *stubCarts) SweepIdle(maxIdle time.Duration) int {
	s.swept = append(s.swept, maxIdle)
	return s.removed
}

type countingPruner struct{ calls int }

func (p *countingPruner) Prune() { p.calls++ }

func TestCartSessionScheduler_Sweep(t *testing.T) {
	carts := &stubCarts{removed: 3, active: 7}
	pruner := &countingPruner{}
	s := NewCartSessionScheduler(carts, "*/15 * * * *", 24*time.Hour, pruner)

	assert.Equal(t, 3, s.Sweep())
	assert.Equal(t, []time.Duration{24 * time.Hour}, carts.swept)
	assert.Equal(t, 1, pruner.calls)
}

func TestCartSessionScheduler_SweepWithoutLimiter(t *testing.T) {
	carts := &stubCarts{}
	s := NewCartSessionScheduler(carts, "@every 1m", time.Hour, nil)

	assert.Equal(t, 0, s.Sweep())
	assert.Len(t, carts.swept, 1)
}

func TestCartSessionScheduler_StartRejectsBadSchedule(t *testing.T) {
	s := NewCartSessionScheduler(&stubCarts{}, "not a schedule", time.Hour, nil)
	assert.Error(t, s.Start())
}

func TestCartSessionScheduler_StartStop(t *testing.T) {
	s := NewCartSessionScheduler(&stubCarts{}, "@every 1h", time.Hour, nil)
	assert.NoError(t, s.Start())
	s.Stop()
}
