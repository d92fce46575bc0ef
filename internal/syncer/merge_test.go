package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
)

func mergeItem(id string, quantity int, unitPrice int64) domain.CartItem {
	now := time.Now()
	return domain.CartItem{
		ID:         id,
		ProductID:  "wreath-classic",
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: domain.ItemTotal(unitPrice, quantity),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestMerge_ServerValuesWinForOverlappingItems(t *testing.T) {
	local := []domain.CartItem{mergeItem("item-1", 5, 1500)}
	server := []domain.CartItem{mergeItem("item-1", 2, 1500)}

	resolved, conflicts := Merge(local, server, StrategyMerge)

	require.Len(t, resolved, 1)
	assert.Equal(t, 2, resolved[0].Quantity)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "item-1", conflicts[0].ItemID)
	assert.Contains(t, conflicts[0].Reason, "quantity diverged")
}

func TestMerge_LocalOnlyItemsRetainedAfterServerOrder(t *testing.T) {
	local := []domain.CartItem{
		mergeItem("item-1", 1, 1500),
		mergeItem("tmp-1", 2, 900),
	}
	server := []domain.CartItem{
		mergeItem("item-1", 1, 1500),
		mergeItem("item-2", 1, 2400),
	}

	resolved, conflicts := Merge(local, server, StrategyMerge)

	require.Len(t, resolved, 3)
	assert.Equal(t, "item-1", resolved[0].ID)
	assert.Equal(t, "item-2", resolved[1].ID)
	assert.Equal(t, "tmp-1", resolved[2].ID)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "tmp-1", conflicts[0].ItemID)
	assert.Equal(t, "present only locally, retained", conflicts[0].Reason)
}

func TestMerge_ServerWinsDiscardsLocalOnlyItems(t *testing.T) {
	local := []domain.CartItem{
		mergeItem("item-1", 5, 1500),
		mergeItem("tmp-1", 1, 900),
	}
	server := []domain.CartItem{mergeItem("item-1", 2, 1500)}

	resolved, conflicts := Merge(local, server, StrategyServerWins)

	require.Len(t, resolved, 1)
	assert.Equal(t, 2, resolved[0].Quantity)
	assert.Empty(t, conflicts)
}

func TestMerge_LocalWinsKeepsLocalQuantities(t *testing.T) {
	local := []domain.CartItem{mergeItem("item-1", 5, 1500)}
	server := []domain.CartItem{
		mergeItem("item-1", 2, 1500),
		mergeItem("item-2", 1, 2400),
	}

	resolved, conflicts := Merge(local, server, StrategyLocalWins)

	require.Len(t, resolved, 2)
	assert.Equal(t, 5, resolved[0].Quantity)
	assert.Equal(t, "item-2", resolved[1].ID)
	require.Len(t, conflicts, 1)
}

func TestMerge_EmptyLocalAdoptsServer(t *testing.T) {
	server := []domain.CartItem{mergeItem("item-1", 2, 1500)}

	resolved, conflicts := Merge(nil, server, StrategyMerge)

	require.Len(t, resolved, 1)
	assert.Empty(t, conflicts)
}
