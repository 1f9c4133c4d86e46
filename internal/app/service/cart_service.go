package service

import (
	"context"
	"sync"
	"time"

	"github.com/aldenair/storefront-backend/pkg/cart"
	"github.com/aldenair/storefront-backend/pkg/logger"
)

const persistTimeout = 2 * time.Second

// CartPersister keeps cart snapshots outside the process. Implemented by
// the Redis snapshot store.
type CartPersister interface {
	Save(ctx context.Context, sessionID string, state cart.State) error
	Load(ctx context.Context, sessionID string) (cart.State, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// CartNotifier pushes state changes to connected clients
type CartNotifier interface {
	CartUpdated(sessionID string, state cart.State)
}

type CartService interface {
	View(ctx context.Context, sessionID string) cart.State
	AddItem(ctx context.Context, sessionID, productID, variantID string) (cart.State, error)
	RemoveItem(ctx context.Context, sessionID, productID, variantID string) cart.State
	SetQuantity(ctx context.Context, sessionID, productID, variantID string, quantity int) cart.State
	ApplyBundle(ctx context.Context, sessionID, bundleID string) (cart.State, error)
	RemoveBundle(ctx context.Context, sessionID string) cart.State
	Clear(ctx context.Context, sessionID string) cart.State
	SweepIdle(maxIdle time.Duration) int
	ActiveSessions() int
	// Flush waits for queued snapshots to reach the persister
	Flush(ctx context.Context) error
}

type cartService struct {
	catalog   CatalogService
	bundles   BundleService
	persister CartPersister // nil when Redis is disabled
	writer    *snapshotWriter
	notifier  CartNotifier // nil when nothing listens

	mu     sync.Mutex
	stores map[string]*cart.Store
	now    func() time.Time
}

func NewCartService(catalog CatalogService, bundles BundleService, persister CartPersister, notifier CartNotifier) CartService {
	s := &cartService{
		catalog:   catalog,
		bundles:   bundles,
		persister: persister,
		notifier:  notifier,
		stores:    make(map[string]*cart.Store),
		now:       time.Now,
	}
	if persister != nil {
		s.writer = newSnapshotWriter(persister, persistTimeout)
	}
	return s
}

// lookup returns the session's store. A session missing in memory is
// restored from the persister when possible. Otherwise a fresh store is
// created only when create is set, so reads never start a session.
func (s *cartService) lookup(ctx context.Context, sessionID string, create bool) *cart.Store {
	s.mu.Lock()
	store, ok := s.stores[sessionID]
	s.mu.Unlock()
	if ok {
		return store
	}

	var restored *cart.State
	if s.persister != nil {
		// a swept session may still have its last snapshot in flight
		if err := s.writer.settle(ctx, sessionID); err != nil {
			logger.Warn("Gave up waiting for pending cart snapshot", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
		state, found, err := s.persister.Load(ctx, sessionID)
		switch {
		case err != nil:
			logger.Warn("Failed to restore cart session", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		case found:
			restored = &state
		}
	}
	if restored == nil && !create {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.stores[sessionID]; ok {
		return existing
	}

	if restored != nil {
		store = cart.NewStoreFrom(*restored)
		logger.Debug("Cart session restored", map[string]interface{}{
			"session_id": sessionID,
			"items":      restored.ItemCount(),
		})
	} else {
		store = cart.NewStore()
		logger.Debug("Cart session created", map[string]interface{}{
			"session_id": sessionID,
		})
	}
	s.attach(sessionID, store)
	s.stores[sessionID] = store
	return store
}

// attach wires the per-session subscribers. Their failures are logged and
// never reach the caller.
func (s *cartService) attach(sessionID string, store *cart.Store) {
	if s.writer != nil {
		store.Subscribe(func(action cart.Action, state cart.State) {
			s.writer.enqueue(sessionID, action, state)
		})
	}
	if s.notifier != nil {
		store.Subscribe(func(_ cart.Action, state cart.State) {
			s.notifier.CartUpdated(sessionID, state)
		})
	}
}

// dispatch runs a on the session's store. A store retired by the idle sweep
// after lookup handed it out is looked up again, which restores the session
// from its snapshot or starts it fresh.
func (s *cartService) dispatch(ctx context.Context, sessionID string, create bool, a cart.Action) cart.State {
	for {
		store := s.lookup(ctx, sessionID, create)
		if store == nil {
			return cart.Empty()
		}
		if state, ok := store.TryDispatch(a); ok {
			return state
		}
	}
}

func (s *cartService) View(ctx context.Context, sessionID string) cart.State {
	if store := s.lookup(ctx, sessionID, false); store != nil {
		return store.State()
	}
	return cart.Empty()
}

func (s *cartService) AddItem(ctx context.Context, sessionID, productID, variantID string) (cart.State, error) {
	item, variant, err := s.catalog.ResolveVariant(productID, variantID)
	if err != nil {
		logger.Debug("Add to cart rejected", map[string]interface{}{
			"session_id": sessionID,
			"product_id": productID,
			"variant_id": variantID,
			"error":      err.Error(),
		})
		return cart.State{}, err
	}

	state := s.dispatch(ctx, sessionID, true, cart.AddItem{Item: item, Variant: variant})
	logger.Info("Item added to cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": item.ID,
		"variant_id": variant.ID,
		"item_count": state.ItemCount(),
	})
	return state, nil
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID, productID, variantID string) cart.State {
	return s.dispatch(ctx, sessionID, false, cart.RemoveItem{ItemID: productID, VariantID: variantID})
}

func (s *cartService) SetQuantity(ctx context.Context, sessionID, productID, variantID string, quantity int) cart.State {
	return s.dispatch(ctx, sessionID, false, cart.SetQuantity{
		ItemID:    productID,
		VariantID: variantID,
		Quantity:  quantity,
	})
}

// ApplyBundle looks the offer up and applies it when the cart holds enough
// items. The discount then stays until removed, even if items are removed.
func (s *cartService) ApplyBundle(ctx context.Context, sessionID, bundleID string) (cart.State, error) {
	offer, err := s.bundles.GetActive(bundleID)
	if err != nil {
		return cart.State{}, err
	}

	current := s.View(ctx, sessionID)
	if current.ItemCount() < offer.QuantityRequired {
		return current, ErrBundleNotEligible
	}

	state := s.dispatch(ctx, sessionID, true, cart.ApplyBundle{
		BundleID:        BundleKey(*offer),
		DiscountPercent: offer.DiscountPercent,
	})
	logger.Info("Bundle applied to cart", map[string]interface{}{
		"session_id":       sessionID,
		"bundle_id":        offer.ID,
		"discount_percent": offer.DiscountPercent,
		"total":            state.Total(),
	})
	return state, nil
}

func (s *cartService) RemoveBundle(ctx context.Context, sessionID string) cart.State {
	return s.dispatch(ctx, sessionID, false, cart.RemoveBundle{})
}

// Clear empties the cart in place. The store stays registered so a request
// racing the clear lands in the same cart; the idle sweep ends it later.
func (s *cartService) Clear(ctx context.Context, sessionID string) cart.State {
	state := s.dispatch(ctx, sessionID, false, cart.ClearCart{})

	logger.Info("Cart cleared", map[string]interface{}{
		"session_id": sessionID,
	})
	return state
}

// SweepIdle retires stores untouched for longer than maxIdle and returns how
// many were dropped. Their Redis snapshots expire on their own TTL.
func (s *cartService) SweepIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for id, store := range s.stores {
		if store.Retire(cutoff) {
			delete(s.stores, id)
			swept++
		}
	}

	if swept > 0 {
		logger.Info("Idle cart sessions swept", map[string]interface{}{
			"swept":     swept,
			"remaining": len(s.stores),
		})
	}
	return swept
}

func (s *cartService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

func (s *cartService) Flush(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.flush(ctx)
}
