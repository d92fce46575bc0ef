package store

import "github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"

// Action is the tagged union dispatched through the reducer. Every state
// transition of the cart goes through exactly one of these.
type Action interface{ isAction() }

// applyAdd inserts a provisional item and opens a pending-add entry keyed by
// the item's temp id.
type applyAdd struct {
	OpID string
	Item domain.CartItem
}

// confirmAdd replaces the provisional item with the server-confirmed one.
type confirmAdd struct {
	OpID   string
	TempID string
	Item   domain.CartItem
}

// revertAdd removes the provisional item after an online rejection.
type revertAdd struct {
	OpID    string
	TempID  string
	Message string
}

type applyUpdate struct {
	OpID     string
	ItemID   string
	Quantity int
}

type confirmUpdate struct {
	OpID   string
	ItemID string
	// Item is the server's view; nil keeps the optimistic values.
	Item *domain.CartItem
}

type revertUpdate struct {
	OpID    string
	ItemID  string
	Message string
}

type applyRemove struct {
	OpID   string
	ItemID string
}

type confirmRemove struct {
	OpID   string
	ItemID string
}

type revertRemove struct {
	OpID    string
	ItemID  string
	Message string
}

// settlePending closes a pending entry without rolling back the optimistic
// state, used when the operation was handed to the offline queue.
type settlePending struct {
	Key     string
	OpID    string
	Message string
}

// adoptServer replaces the items with authoritative server state and empties
// the pending map.
type adoptServer struct {
	Items []domain.CartItem
}

type setLoading struct{ Loading bool }
type setSyncing struct{ Syncing bool }
type setError struct{ Message string }

func (applyAdd) isAction()      {}
func (confirmAdd) isAction()    {}
func (revertAdd) isAction()     {}
func (applyUpdate) isAction()   {}
func (confirmUpdate) isAction() {}
func (revertUpdate) isAction()  {}
func (applyRemove) isAction()   {}
func (confirmRemove) isAction() {}
func (revertRemove) isAction()  {}
func (settlePending) isAction() {}
func (adoptServer) isAction()   {}
func (setLoading) isAction()    {}
func (setSyncing) isAction()    {}
func (setError) isAction()      {}
