package store

import (
	"time"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
)

// State is the full client-side view of the cart. Values returned from the
// reducer are fresh copies; callers never observe a half-applied transition.
type State struct {
	Items       []domain.CartItem
	IsLoading   bool
	IsSyncing   bool
	Err         string
	LastUpdated time.Time
	Pending     map[string]PendingOperation
}

func newState() State {
	return State{Pending: map[string]PendingOperation{}}
}

func (s State) clone() State {
	next := s
	next.Items = append([]domain.CartItem(nil), s.Items...)
	next.Pending = make(map[string]PendingOperation, len(s.Pending))
	for k, v := range s.Pending {
		next.Pending[k] = v
	}
	return next
}

func (s State) itemIndex(itemID string) int {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// pendingFor returns the pending entry for key only when opID still matches,
// so stale or duplicate confirms and reverts fall through as no-ops.
func (s State) pendingFor(key, opID string) (PendingOperation, bool) {
	op, ok := s.Pending[key]
	if !ok || op.OperationID() != opID {
		return nil, false
	}
	return op, true
}

// reduce is the pure transition function of the cart state machine.
func reduce(s State, a Action) State {
	switch act := a.(type) {
	case applyAdd:
		next := s.clone()
		next.Items = append(next.Items, act.Item)
		next.Pending[act.Item.ID] = PendingAdd{OpID: act.OpID, TempID: act.Item.ID}
		next.Err = ""
		next.LastUpdated = time.Now()
		return next

	case confirmAdd:
		if _, ok := s.pendingFor(act.TempID, act.OpID); !ok {
			return s
		}
		next := s.clone()
		delete(next.Pending, act.TempID)
		tempIdx := next.itemIndex(act.TempID)
		if confirmedIdx := next.itemIndex(act.Item.ID); confirmedIdx >= 0 && confirmedIdx != tempIdx {
			// Server merged into an existing line; drop the temp item.
			next.Items[confirmedIdx] = act.Item
			if tempIdx >= 0 {
				next.Items = append(next.Items[:tempIdx], next.Items[tempIdx+1:]...)
			}
		} else if tempIdx >= 0 {
			next.Items[tempIdx] = act.Item
		}
		next.LastUpdated = time.Now()
		return next

	case revertAdd:
		if _, ok := s.pendingFor(act.TempID, act.OpID); !ok {
			return s
		}
		next := s.clone()
		delete(next.Pending, act.TempID)
		if idx := next.itemIndex(act.TempID); idx >= 0 {
			next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
		}
		next.Err = act.Message
		next.LastUpdated = time.Now()
		return next

	case applyUpdate:
		idx := s.itemIndex(act.ItemID)
		if idx < 0 {
			next := s.clone()
			next.Err = "item not found in cart"
			return next
		}
		next := s.clone()
		item := &next.Items[idx]
		next.Pending[act.ItemID] = PendingUpdate{
			OpID:           act.OpID,
			ItemID:         act.ItemID,
			PrevQuantity:   item.Quantity,
			PrevTotalPrice: item.TotalPrice,
		}
		item.Quantity = act.Quantity
		item.TotalPrice = domain.ItemTotal(item.UnitPrice, act.Quantity)
		item.UpdatedAt = time.Now()
		next.Err = ""
		next.LastUpdated = time.Now()
		return next

	case confirmUpdate:
		if _, ok := s.pendingFor(act.ItemID, act.OpID); !ok {
			return s
		}
		next := s.clone()
		delete(next.Pending, act.ItemID)
		if act.Item != nil {
			if idx := next.itemIndex(act.ItemID); idx >= 0 {
				next.Items[idx] = *act.Item
			}
		}
		next.LastUpdated = time.Now()
		return next

	case revertUpdate:
		op, ok := s.pendingFor(act.ItemID, act.OpID)
		if !ok {
			return s
		}
		prev, ok := op.(PendingUpdate)
		if !ok {
			return s
		}
		next := s.clone()
		delete(next.Pending, act.ItemID)
		if idx := next.itemIndex(act.ItemID); idx >= 0 {
			next.Items[idx].Quantity = prev.PrevQuantity
			next.Items[idx].TotalPrice = prev.PrevTotalPrice
		}
		next.Err = act.Message
		next.LastUpdated = time.Now()
		return next

	case applyRemove:
		idx := s.itemIndex(act.ItemID)
		if idx < 0 {
			next := s.clone()
			next.Err = "item not found in cart"
			return next
		}
		next := s.clone()
		next.Pending[act.ItemID] = PendingRemove{
			OpID:     act.OpID,
			ItemID:   act.ItemID,
			Snapshot: next.Items[idx],
			Index:    idx,
		}
		next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
		next.Err = ""
		next.LastUpdated = time.Now()
		return next

	case confirmRemove:
		if _, ok := s.pendingFor(act.ItemID, act.OpID); !ok {
			return s
		}
		next := s.clone()
		delete(next.Pending, act.ItemID)
		next.LastUpdated = time.Now()
		return next

	case revertRemove:
		op, ok := s.pendingFor(act.ItemID, act.OpID)
		if !ok {
			return s
		}
		removed, ok := op.(PendingRemove)
		if !ok {
			return s
		}
		next := s.clone()
		delete(next.Pending, act.ItemID)
		idx := removed.Index
		if idx > len(next.Items) {
			idx = len(next.Items)
		}
		next.Items = append(next.Items[:idx], append([]domain.CartItem{removed.Snapshot}, next.Items[idx:]...)...)
		next.Err = act.Message
		next.LastUpdated = time.Now()
		return next

	case settlePending:
		if _, ok := s.pendingFor(act.Key, act.OpID); !ok {
			return s
		}
		next := s.clone()
		delete(next.Pending, act.Key)
		next.Err = act.Message
		next.LastUpdated = time.Now()
		return next

	case adoptServer:
		next := s.clone()
		next.Items = append([]domain.CartItem(nil), act.Items...)
		next.Pending = map[string]PendingOperation{}
		next.Err = ""
		next.LastUpdated = time.Now()
		return next

	case setLoading:
		next := s.clone()
		next.IsLoading = act.Loading
		return next

	case setSyncing:
		next := s.clone()
		next.IsSyncing = act.Syncing
		return next

	case setError:
		next := s.clone()
		next.Err = act.Message
		return next
	}
	return s
}
