// Package cart holds the storefront shopping cart: an immutable State, the
// Reduce function that moves it between states, and a Store that serializes
// writers and notifies subscribers.
package cart

import "github.com/aldenair/storefront-backend/pkg/pricing"

// CatalogItem is a product as supplied by the catalog. Read-only.
type CatalogItem struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Category string `json:"category"`
	Size     string `json:"size"`
}

// Variant is a purchasable SKU of a CatalogItem, priced in minor units.
type Variant struct {
	ID              string `json:"id"`
	ParentItemID    string `json:"parent_item_id"`
	PriceMinorUnits int64  `json:"price_minor_units"`
	InStock         bool   `json:"in_stock"`
}

// Key identifies a line item.
type Key struct {
	ItemID    string
	VariantID string
}

// LineItem is one (item, variant) pairing with a quantity of at least 1.
type LineItem struct {
	Item     CatalogItem `json:"item"`
	Variant  Variant     `json:"variant"`
	Quantity int         `json:"quantity"`
}

func (l LineItem) Key() Key {
	return Key{ItemID: l.Item.ID, VariantID: l.Variant.ID}
}

// LineTotal is price times quantity, unrounded and undiscounted.
func (l LineItem) LineTotal() int64 {
	return l.Variant.PriceMinorUnits * int64(l.Quantity)
}

// BundleSelection is the single bundle discount applied on top of the line items.
type BundleSelection struct {
	BundleID        string  `json:"bundle_id"`
	DiscountPercent float64 `json:"discount_percent"`
}

// State is the whole cart. Totals are derived on read so they can never drift
// from LineItems. A State is treated as a value: transitions build new slices.
type State struct {
	LineItems     []LineItem
	AppliedBundle *BundleSelection
}

// Empty returns the state with no line items and no bundle.
func Empty() State {
	return State{LineItems: []LineItem{}}
}

// Subtotal is the undiscounted sum of all line totals.
func (s State) Subtotal() int64 {
	var sum int64
	for _, li := range s.LineItems {
		sum += li.LineTotal()
	}
	return sum
}

// Total applies the bundle discount, if any, to the current subtotal.
func (s State) Total() int64 {
	sum := s.Subtotal()
	if s.AppliedBundle == nil {
		return sum
	}
	return pricing.ComputeDiscountedTotal(sum, s.AppliedBundle.DiscountPercent)
}

// Discount is Subtotal minus Total.
func (s State) Discount() int64 {
	return s.Subtotal() - s.Total()
}

// ItemCount is the sum of quantities, not the number of distinct lines.
func (s State) ItemCount() int {
	n := 0
	for _, li := range s.LineItems {
		n += li.Quantity
	}
	return n
}

func (s State) IsEmpty() bool {
	return len(s.LineItems) == 0 && s.AppliedBundle == nil
}

// Find returns the line item for k.
func (s State) Find(k Key) (LineItem, bool) {
	if i := s.indexOf(k); i >= 0 {
		return s.LineItems[i], true
	}
	return LineItem{}, false
}

func (s State) indexOf(k Key) int {
	for i, li := range s.LineItems {
		if li.Key() == k {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy that shares nothing with s.
func (s State) Clone() State {
	out := State{LineItems: make([]LineItem, len(s.LineItems))}
	copy(out.LineItems, s.LineItems)
	if s.AppliedBundle != nil {
		b := *s.AppliedBundle
		out.AppliedBundle = &b
	}
	return out
}
