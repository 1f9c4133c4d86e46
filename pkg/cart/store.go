package cart

import (
	"sync"
	"time"

	"github.com/aldenair/storefront-backend/pkg/logger"
)

// Subscriber receives every state produced by a Store, in order.
// Subscribers run while the store is locked and must not call back into it.
type Subscriber func(action Action, state State)

type subscription struct {
	id int
	fn Subscriber
}

// Store owns one cart State and is its only writer.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers []subscription
	nextSubID   int
	touchedAt   time.Time
	retired     bool
	now         func() time.Time
}

func NewStore() *Store {
	return NewStoreFrom(Empty())
}

// NewStoreFrom starts a store from a previously saved state.
func NewStoreFrom(initial State) *Store {
	return &Store{
		state:     initial.Clone(),
		now:       time.Now,
		touchedAt: time.Now(),
	}
}

// Subscribe registers fn and returns a function that removes it.
// Subscribers are called in registration order.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Dispatch applies a, notifies subscribers and returns a copy of the new state.
// A retired store ignores a and returns its last state.
func (s *Store) Dispatch(a Action) State {
	state, _ := s.TryDispatch(a)
	return state
}

// TryDispatch is Dispatch that reports false instead of applying a to a
// retired store, so the caller can move to the session's next store.
func (s *Store) TryDispatch(a Action) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retired {
		return s.state.Clone(), false
	}

	s.state = Reduce(s.state, a)
	s.touchedAt = s.now()

	for _, sub := range s.subscribers {
		s.notify(sub.id, sub.fn, a)
	}
	return s.state.Clone(), true
}

// Retire closes the store if nothing was dispatched since cutoff and reports
// whether it is retired. A retired store accepts no further actions.
func (s *Store) Retire(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.retired && s.touchedAt.Before(cutoff) {
		s.retired = true
	}
	return s.retired
}

func (s *Store) notify(id int, fn Subscriber, a Action) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Cart subscriber panicked", map[string]interface{}{
				"subscriber": id,
				"action":     ActionName(a),
				"panic":      r,
			})
		}
	}()
	fn(a, s.state.Clone())
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// TouchedAt is the time of the last dispatch, or of creation.
func (s *Store) TouchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

func (s *Store) AddItem(item CatalogItem, variant Variant) State {
	return s.Dispatch(AddItem{Item: item, Variant: variant})
}

func (s *Store) RemoveItem(itemID, variantID string) State {
	return s.Dispatch(RemoveItem{ItemID: itemID, VariantID: variantID})
}

func (s *Store) SetQuantity(itemID, variantID string, quantity int) State {
	return s.Dispatch(SetQuantity{ItemID: itemID, VariantID: variantID, Quantity: quantity})
}

func (s *Store) ApplyBundle(bundleID string, discountPercent float64) State {
	return s.Dispatch(ApplyBundle{BundleID: bundleID, DiscountPercent: discountPercent})
}

func (s *Store) RemoveBundle() State {
	return s.Dispatch(RemoveBundle{})
}

func (s *Store) ClearCart() State {
	return s.Dispatch(ClearCart{})
}
