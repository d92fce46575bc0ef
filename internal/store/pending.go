package store

import "github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"

// PendingOperation is the rollback record for one in-flight optimistic
// mutation. Exactly one variant exists per pending map key, and the key is
// the temp id for adds or the item id for updates and removes.
type PendingOperation interface {
	pendingOperation()
	// OperationID ties confirms and reverts to the dispatch that created
	// this entry; a response carrying a different id is stale and ignored.
	OperationID() string
}

type PendingAdd struct {
	OpID   string
	TempID string
}

type PendingUpdate struct {
	OpID           string
	ItemID         string
	PrevQuantity   int
	PrevTotalPrice int64
}

type PendingRemove struct {
	OpID     string
	ItemID   string
	Snapshot domain.CartItem
	Index    int
}

func (PendingAdd) pendingOperation()    {}
func (PendingUpdate) pendingOperation() {}
func (PendingRemove) pendingOperation() {}

func (p PendingAdd) OperationID() string    { return p.OpID }
func (p PendingUpdate) OperationID() string { return p.OpID }
func (p PendingRemove) OperationID() string { return p.OpID }
