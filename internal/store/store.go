package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/localstore"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/offline"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/transport"
)

// MsgNoConnectivity is the user-facing message for failures classified as
// connectivity loss.
const MsgNoConnectivity = "no connectivity"

// Store holds the client-side cart and applies every transition through the
// reducer. Dispatches are serialized by a mutex, so no two transitions race
// on the in-memory state; network calls happen outside the lock.
//
// Public operations never return an error: failures become state (the Err
// field) or offline-queue entries, and each operation reports success as a
// plain bool.
type Store struct {
	api    transport.API
	queue  *offline.Queue
	backup *localstore.Backup

	mu    sync.Mutex // serializes reducer dispatches
	state State
}

// New builds a store. queue and backup may be nil, disabling offline capture
// and local persistence respectively. A fresh, non-stale backup repopulates
// the items immediately so a restarted client does not come up empty.
func New(api transport.API, queue *offline.Queue, backup *localstore.Backup) *Store {
	s := &Store{
		api:    api,
		queue:  queue,
		backup: backup,
		state:  newState(),
	}
	if backup != nil {
		if items, ok := backup.Load(); ok {
			s.state = reduce(s.state, adoptServer{Items: items})
		}
	}
	return s
}

func (s *Store) dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = reduce(s.state, a)
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// HasPending reports whether any optimistic update is awaiting confirmation.
func (s *Store) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Pending) > 0
}

// Adopt replaces the items with authoritative server state, emptying the
// pending map. Used by the syncer after reconciliation.
func (s *Store) Adopt(items []domain.CartItem) {
	s.dispatch(adoptServer{Items: items})
}

// SetSyncing flips the syncing status flag.
func (s *Store) SetSyncing(syncing bool) {
	s.dispatch(setSyncing{Syncing: syncing})
}

// AddRequest describes an add-to-cart action. UnitPrice is the price the UI
// is currently displaying (base + modifiers); it is only used for the
// provisional item and is replaced by the server's authoritative pricing.
type AddRequest struct {
	ProductID      string
	Quantity       int
	UnitPrice      int64
	Customizations []domain.Customization
}

// AddItem inserts a provisional item immediately, then confirms or reverts it
// based on the backend response. A connectivity failure keeps the optimistic
// item and logs the operation to the offline queue; an online rejection
// reverts it.
func (s *Store) AddItem(ctx context.Context, req AddRequest) bool {
	if req.ProductID == "" || req.Quantity <= 0 {
		s.dispatch(setError{Message: "invalid add request"})
		return false
	}

	now := time.Now()
	temp := domain.CartItem{
		ID:             "tmp-" + uuid.NewString(),
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		Customizations: req.Customizations,
		UnitPrice:      req.UnitPrice,
		TotalPrice:     domain.ItemTotal(req.UnitPrice, req.Quantity),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	opID := uuid.NewString()
	s.dispatch(applyAdd{OpID: opID, Item: temp})

	item, err := s.api.AddItem(ctx, transport.AddItemRequest{
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		Customizations: req.Customizations,
	})
	if err != nil {
		if transport.IsConnectivity(err) {
			s.enqueueOffline(offline.OpAdd, offline.OperationData{
				ProductID:      req.ProductID,
				Quantity:       req.Quantity,
				Customizations: req.Customizations,
			})
			s.dispatch(settlePending{Key: temp.ID, OpID: opID, Message: MsgNoConnectivity})
		} else {
			s.dispatch(revertAdd{OpID: opID, TempID: temp.ID, Message: userMessage(err)})
		}
		return false
	}

	s.dispatch(confirmAdd{OpID: opID, TempID: temp.ID, Item: *item})
	return true
}

// UpdateQuantity applies the new quantity and recomputed total immediately.
// A non-positive quantity is treated as removal.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) bool {
	if quantity <= 0 {
		return s.RemoveItem(ctx, itemID)
	}
	if s.State().itemIndex(itemID) < 0 {
		s.dispatch(setError{Message: "item not found in cart"})
		return false
	}

	opID := uuid.NewString()
	s.dispatch(applyUpdate{OpID: opID, ItemID: itemID, Quantity: quantity})

	item, err := s.api.UpdateQuantity(ctx, itemID, quantity)
	if err != nil {
		if transport.IsConnectivity(err) {
			s.enqueueOffline(offline.OpUpdate, offline.OperationData{
				ItemID:   itemID,
				Quantity: quantity,
			})
			s.dispatch(settlePending{Key: itemID, OpID: opID, Message: MsgNoConnectivity})
		} else {
			s.dispatch(revertUpdate{OpID: opID, ItemID: itemID, Message: userMessage(err)})
		}
		return false
	}

	s.dispatch(confirmUpdate{OpID: opID, ItemID: itemID, Item: item})
	return true
}

// RemoveItem removes the item immediately, reinserting the snapshot if the
// backend rejects the removal. Removing the last item also fires a
// best-effort cache invalidation and clears the local backup.
func (s *Store) RemoveItem(ctx context.Context, itemID string) bool {
	if s.State().itemIndex(itemID) < 0 {
		s.dispatch(setError{Message: "item not found in cart"})
		return false
	}

	opID := uuid.NewString()
	s.dispatch(applyRemove{OpID: opID, ItemID: itemID})

	if err := s.api.RemoveItem(ctx, itemID); err != nil {
		if transport.IsConnectivity(err) {
			s.enqueueOffline(offline.OpRemove, offline.OperationData{ItemID: itemID})
			s.dispatch(settlePending{Key: itemID, OpID: opID, Message: MsgNoConnectivity})
		} else {
			s.dispatch(revertRemove{OpID: opID, ItemID: itemID, Message: userMessage(err)})
		}
		return false
	}

	s.dispatch(confirmRemove{OpID: opID, ItemID: itemID})

	if len(s.State().Items) == 0 {
		// Cart is now empty: tell the backend to drop cached pricing and
		// forget the local backup. Neither failure affects the removal.
		if err := s.api.InvalidateCache(ctx); err != nil {
			log.Printf("cache invalidation after last-item removal failed: %v", err)
		}
		if s.backup != nil {
			s.backup.Clear()
		}
	}
	return true
}

// ClearAll empties the cart only after the backend confirms; clearing is
// destructive and never applied optimistically.
func (s *Store) ClearAll(ctx context.Context) bool {
	if err := s.api.ClearCart(ctx); err != nil {
		message := userMessage(err)
		if transport.IsConnectivity(err) {
			message = MsgNoConnectivity
		}
		s.dispatch(setError{Message: message})
		return false
	}

	s.dispatch(adoptServer{Items: nil})
	if s.backup != nil {
		s.backup.Clear()
	}
	return true
}

// Refresh fetches authoritative server state and adopts it.
func (s *Store) Refresh(ctx context.Context) bool {
	s.dispatch(setLoading{Loading: true})
	defer s.dispatch(setLoading{Loading: false})

	cart, err := s.api.FetchCart(ctx)
	if err != nil {
		message := userMessage(err)
		if transport.IsConnectivity(err) {
			message = MsgNoConnectivity
		}
		s.dispatch(setError{Message: message})
		return false
	}

	s.dispatch(adoptServer{Items: cart.Items})
	if s.backup != nil {
		if err := s.backup.Save(cart.Items); err != nil {
			log.Printf("failed to save cart backup: %v", err)
		}
	}
	return true
}

func (s *Store) enqueueOffline(opType offline.OperationType, data offline.OperationData) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Store(offline.NewOperation(opType, data)); err != nil {
		log.Printf("failed to queue offline %s operation: %v", opType, err)
	}
}

// userMessage reduces an error to what the UI is allowed to show: the
// server's own message for rejections, a generic one otherwise.
func userMessage(err error) string {
	var se *transport.ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return "operation failed"
}
