package cart

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_NotifiesSubscribersInOrder(t *testing.T) {
	store := NewStore()

	var seen []string
	var totals []int64
	store.Subscribe(func(a Action, s State) {
		seen = append(seen, ActionName(a))
		totals = append(totals, s.Total())
	})

	store.AddItem(itemA, variantA)
	store.AddItem(itemB, variantB)
	store.ApplyBundle("b1", 20)
	store.ClearCart()

	assert.Equal(t, []string{"add_item", "add_item", "apply_bundle", "clear_cart"}, seen)
	assert.Equal(t, []int64{4499, 7498, 5998, 0}, totals)
}

func TestStore_Unsubscribe(t *testing.T) {
	store := NewStore()

	calls := 0
	unsubscribe := store.Subscribe(func(Action, State) { calls++ })
	store.AddItem(itemA, variantA)
	unsubscribe()
	store.AddItem(itemA, variantA)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, store.State().ItemCount())
}

func TestStore_SubscriberPanicDoesNotAbortTransition(t *testing.T) {
	store := NewStore()
	store.Subscribe(func(Action, State) { panic("boom") })

	var got State
	store.Subscribe(func(_ Action, s State) { got = s })

	s := store.AddItem(itemA, variantA)

	assert.Equal(t, 1, s.ItemCount())
	assert.Equal(t, 1, store.State().ItemCount())
	assert.Equal(t, 1, got.ItemCount())
}

func TestStore_StateIsACopy(t *testing.T) {
	store := NewStore()
	store.AddItem(itemA, variantA)

	s := store.State()
	s.LineItems[0].Quantity = 99

	assert.Equal(t, 1, store.State().LineItems[0].Quantity)
}

func TestStore_ConcurrentAddsAreSerialized(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AddItem(itemA, variantA)
		}()
	}
	wg.Wait()

	s := store.State()
	require.Len(t, s.LineItems, 1)
	assert.Equal(t, 50, s.LineItems[0].Quantity)
	assert.Equal(t, int64(50*4499), s.Total())
}

func TestSnapshot_RoundTripKeepsBundle(t *testing.T) {
	s := Reduce(Empty(), AddItem{Item: itemA, Variant: variantA})
	s = Reduce(s, AddItem{Item: itemB, Variant: variantB})
	s = Reduce(s, ApplyBundle{BundleID: "b1", DiscountPercent: 20})

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var restored State
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, s.Total(), restored.Total())
	assert.Equal(t, s.ItemCount(), restored.ItemCount())
	require.NotNil(t, restored.AppliedBundle)
	assert.Equal(t, "b1", restored.AppliedBundle.BundleID)
}

func TestSnapshot_DerivedFields(t *testing.T) {
	s := Reduce(Empty(), AddItem{Item: itemA, Variant: variantA})
	s = Reduce(s, AddItem{Item: itemB, Variant: variantB})
	s = Reduce(s, ApplyBundle{BundleID: "b1", DiscountPercent: 20})

	snap := s.Snapshot()

	assert.Equal(t, int64(7498), snap.Subtotal)
	assert.Equal(t, int64(5998), snap.Total)
	assert.Equal(t, int64(1500), snap.Discount)
	assert.Equal(t, 2, snap.ItemCount)
}

func TestRestore_RepairsInvariants(t *testing.T) {
	snap := Snapshot{
		LineItems: []LineItem{
			{Item: itemA, Variant: variantA, Quantity: 2},
			{Item: itemB, Variant: variantB, Quantity: 0},
			{Item: itemA, Variant: variantA, Quantity: 3},
			{Item: itemB, Variant: variantB, Quantity: -1},
		},
		Total: 123456,
	}

	s := Restore(snap)

	require.Len(t, s.LineItems, 1)
	assert.Equal(t, 5, s.LineItems[0].Quantity)
	assert.Equal(t, int64(5*4499), s.Total())
}

func TestStore_Retire(t *testing.T) {
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore()
	store.now = func() time.Time { return clock }
	store.AddItem(itemA, variantA)
	assert.Equal(t, clock, store.TouchedAt())

	assert.False(t, store.Retire(clock), "touched at the cutoff is not idle")

	notified := 0
	store.Subscribe(func(Action, State) { notified++ })
	require.True(t, store.Retire(clock.Add(time.Minute)))

	state, ok := store.TryDispatch(AddItem{Item: itemB, Variant: variantB})
	assert.False(t, ok)
	assert.Equal(t, 1, state.ItemCount(), "a retired store keeps its last state")
	assert.Equal(t, 1, store.AddItem(itemB, variantB).ItemCount())
	assert.Zero(t, notified)

	assert.True(t, store.Retire(clock), "retirement is permanent")
}
