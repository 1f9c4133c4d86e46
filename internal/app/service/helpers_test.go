package service

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/aldenair/storefront-backend/internal/app/model"
	"github.com/aldenair/storefront-backend/internal/app/repository"
	"github.com/aldenair/storefront-backend/internal/db"
	"github.com/aldenair/storefront-backend/pkg/cart"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

type catalogFixture struct {
	oud   *model.Product // variants: 50ml 4499, 100ml 7999 (out of stock)
	amber *model.Product // variant: 50ml 2999
}

func (f catalogFixture) ids(p *model.Product, variant int) (string, string) {
	return strconv.FormatUint(uint64(p.ID), 10), strconv.FormatUint(uint64(p.Variants[variant].ID), 10)
}

func seedCatalog(t *testing.T, testDB *gorm.DB) catalogFixture {
	repo := repository.NewProductRepository(testDB)

	oud := &model.Product{
		Brand: "ALDENAIR", Name: "Oud Royal", Category: model.CategoryUnisex, Size: "50ml", Active: true,
		Notes: []string{"saffron", "oud", "amber"},
		Variants: []model.ProductVariant{
			{SKU: "OUD-50", Label: "50ml", PriceCents: 4499, StockQuantity: 4},
			{SKU: "OUD-100", Label: "100ml", PriceCents: 7999, StockQuantity: 0},
		},
	}
	amber := &model.Product{
		Brand: "ALDENAIR", Name: "Amber Nuit", Category: model.CategoryWomen, Size: "50ml", Active: true,
		Variants: []model.ProductVariant{
			{SKU: "AMB-50", Label: "50ml", PriceCents: 2999, StockQuantity: 9},
		},
	}
	require.NoError(t, repo.Create(oud))
	require.NoError(t, repo.Create(amber))
	return catalogFixture{oud: oud, amber: amber}
}

func seedBundle(t *testing.T, testDB *gorm.DB, slug string, percent float64, required int) *model.BundleOffer {
	offer := &model.BundleOffer{Slug: slug, Name: slug, DiscountPercent: percent, QuantityRequired: required, Active: true}
	require.NoError(t, repository.NewBundleRepository(testDB).Create(offer))
	return offer
}

// memoryPersister stands in for Redis in tests that do not exercise it
type memoryPersister struct {
	mu    sync.Mutex
	saved map[string]cart.State
	fail  error
}

func newMemoryPersister() *memoryPersister {
	return &memoryPersister{saved: make(map[string]cart.State)}
}

func (p *memoryPersister) Save(_ context.Context, id string, s cart.State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.saved[id] = s
	return nil
}

func (p *memoryPersister) Load(_ context.Context, id string) (cart.State, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return cart.State{}, false, p.fail
	}
	s, ok := p.saved[id]
	return s, ok, nil
}

func (p *memoryPersister) Delete(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.saved, id)
	return p.fail
}

// blockingPersister holds every Save until release is closed
type blockingPersister struct {
	release chan struct{}

	mu    sync.Mutex
	saves int
	saved map[string]cart.State
}

func newBlockingPersister() *blockingPersister {
	return &blockingPersister{release: make(chan struct{}), saved: make(map[string]cart.State)}
}

func (p *blockingPersister) Save(ctx context.Context, id string, s cart.State) error {
	select {
	case <-p.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	p.saved[id] = s
	return nil
}

func (p *blockingPersister) Load(context.Context, string) (cart.State, bool, error) {
	return cart.State{}, false, nil
}

func (p *blockingPersister) Delete(context.Context, string) error { return nil }

func (p *blockingPersister) last(id string) (cart.State, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.saved[id]
	return s, ok
}

func (p *blockingPersister) saveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

type recordingNotifier struct {
	mu     sync.Mutex
	events map[string][]cart.State
}

func (n *recordingNotifier) CartUpdated(sessionID string, state cart.State) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.events == nil {
		n.events = make(map[string][]cart.State)
	}
	n.events[sessionID] = append(n.events[sessionID], state)
}

func (n *recordingNotifier) count(sessionID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events[sessionID])
}
