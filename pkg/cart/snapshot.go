package cart

import "encoding/json"

// Snapshot is the serialized form of a State. The derived fields are written
// for readers (HTTP clients, the checkout handoff) and ignored by Restore.
type Snapshot struct {
	LineItems     []LineItem       `json:"line_items"`
	AppliedBundle *BundleSelection `json:"applied_bundle"`
	Subtotal      int64            `json:"subtotal"`
	Discount      int64            `json:"discount"`
	Total         int64            `json:"total"`
	ItemCount     int              `json:"item_count"`
}

func (s State) Snapshot() Snapshot {
	c := s.Clone()
	return Snapshot{
		LineItems:     c.LineItems,
		AppliedBundle: c.AppliedBundle,
		Subtotal:      c.Subtotal(),
		Discount:      c.Discount(),
		Total:         c.Total(),
		ItemCount:     c.ItemCount(),
	}
}

// Restore rebuilds a State from a snapshot. Lines with a non-positive quantity
// are dropped and repeated keys are merged into the first occurrence.
func Restore(snap Snapshot) State {
	s := Empty()
	for _, li := range snap.LineItems {
		if li.Quantity <= 0 {
			continue
		}
		if i := s.indexOf(li.Key()); i >= 0 {
			s.LineItems[i].Quantity += li.Quantity
			continue
		}
		s.LineItems = append(s.LineItems, li)
	}
	if snap.AppliedBundle != nil {
		s = Reduce(s, ApplyBundle{
			BundleID:        snap.AppliedBundle.BundleID,
			DiscountPercent: snap.AppliedBundle.DiscountPercent,
		})
	}
	return s
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	*s = Restore(snap)
	return nil
}
