package cart

import "github.com/aldenair/storefront-backend/pkg/pricing"

// Action is one of the cart intents below. The set is closed.
type Action interface {
	actionName() string
}

type AddItem struct {
	Item    CatalogItem
	Variant Variant
}

type RemoveItem struct {
	ItemID    string
	VariantID string
}

// SetQuantity sets an absolute quantity. Zero or below removes the line.
type SetQuantity struct {
	ItemID    string
	VariantID string
	Quantity  int
}

type ApplyBundle struct {
	BundleID        string
	DiscountPercent float64
}

type RemoveBundle struct{}

type ClearCart struct{}

func (AddItem) actionName() string      { return "add_item" }
func (RemoveItem) actionName() string   { return "remove_item" }
func (SetQuantity) actionName() string  { return "set_quantity" }
func (ApplyBundle) actionName() string  { return "apply_bundle" }
func (RemoveBundle) actionName() string { return "remove_bundle" }
func (ClearCart) actionName() string    { return "clear_cart" }

// ActionName returns the wire name of a, used in logs and events.
func ActionName(a Action) string {
	if a == nil {
		return ""
	}
	return a.actionName()
}

// Reduce returns the state that results from applying a to s. It never fails:
// unknown keys are no-ops and an unknown action returns s unchanged.
// s itself is never modified.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case AddItem:
		return addItem(s, act)
	case RemoveItem:
		return removeItem(s, Key{ItemID: act.ItemID, VariantID: act.VariantID})
	case SetQuantity:
		return setQuantity(s, act)
	case ApplyBundle:
		next := s.Clone()
		next.AppliedBundle = &BundleSelection{
			BundleID:        act.BundleID,
			DiscountPercent: pricing.ClampPercent(act.DiscountPercent),
		}
		return next
	case RemoveBundle:
		if s.AppliedBundle == nil {
			return s
		}
		next := s.Clone()
		next.AppliedBundle = nil
		return next
	case ClearCart:
		return Empty()
	}
	return s
}

func addItem(s State, act AddItem) State {
	next := s.Clone()
	k := Key{ItemID: act.Item.ID, VariantID: act.Variant.ID}
	if i := next.indexOf(k); i >= 0 {
		next.LineItems[i].Quantity++
		return next
	}
	next.LineItems = append(next.LineItems, LineItem{
		Item:     act.Item,
		Variant:  act.Variant,
		Quantity: 1,
	})
	return next
}

func removeItem(s State, k Key) State {
	i := s.indexOf(k)
	if i < 0 {
		return s
	}
	next := s.Clone()
	next.LineItems = append(next.LineItems[:i], next.LineItems[i+1:]...)
	return next
}

func setQuantity(s State, act SetQuantity) State {
	k := Key{ItemID: act.ItemID, VariantID: act.VariantID}
	if act.Quantity <= 0 {
		return removeItem(s, k)
	}
	i := s.indexOf(k)
	if i < 0 {
		return s
	}
	next := s.Clone()
	next.LineItems[i].Quantity = act.Quantity
	return next
}
