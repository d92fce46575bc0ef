package syncer

import (
	"fmt"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
)

// MergeStrategy selects which side wins when local and server cart state
// diverge for the same item.
type MergeStrategy string

const (
	// StrategyMerge lets server values win for overlapping items but keeps
	// items that exist only locally. This is the default.
	StrategyMerge MergeStrategy = "merge"
	// StrategyServerWins adopts the server cart wholesale.
	StrategyServerWins MergeStrategy = "server-wins"
	// StrategyLocalWins keeps local values for overlapping items and keeps
	// local-only items; server-only items are still adopted.
	StrategyLocalWins MergeStrategy = "local-wins"
)

// Conflict describes one divergence found during reconciliation. Conflicts
// are informational; resolution happens automatically via the strategy.
type Conflict struct {
	ItemID string
	Reason string
}

// Merge reconciles local against server items and returns the resolved cart
// plus the conflicts encountered. Server ordering is preserved; retained
// local-only items are appended after it.
func Merge(local, server []domain.CartItem, strategy MergeStrategy) ([]domain.CartItem, []Conflict) {
	if strategy == StrategyServerWins {
		return append([]domain.CartItem(nil), server...), nil
	}

	localByID := make(map[string]domain.CartItem, len(local))
	for _, item := range local {
		localByID[item.ID] = item
	}

	var conflicts []Conflict
	resolved := make([]domain.CartItem, 0, len(server)+len(local))
	serverIDs := make(map[string]struct{}, len(server))

	for _, serverItem := range server {
		serverIDs[serverItem.ID] = struct{}{}
		localItem, ok := localByID[serverItem.ID]
		if ok && localItem.Quantity != serverItem.Quantity {
			conflicts = append(conflicts, Conflict{
				ItemID: serverItem.ID,
				Reason: fmt.Sprintf("quantity diverged (local %d, server %d)", localItem.Quantity, serverItem.Quantity),
			})
		}
		if ok && strategy == StrategyLocalWins {
			resolved = append(resolved, localItem)
		} else {
			resolved = append(resolved, serverItem)
		}
	}

	for _, localItem := range local {
		if _, ok := serverIDs[localItem.ID]; ok {
			continue
		}
		conflicts = append(conflicts, Conflict{
			ItemID: localItem.ID,
			Reason: "present only locally, retained",
		})
		resolved = append(resolved, localItem)
	}

	return resolved, conflicts
}
