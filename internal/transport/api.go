package transport

import (
	"context"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
)

// AddItemRequest is the payload for creating a cart item. The server prices
// the item from the catalog; clients only send the selection.
type AddItemRequest struct {
	ProductID      string                 `json:"product_id"`
	Quantity       int                    `json:"quantity"`
	Customizations []domain.Customization `json:"customizations,omitempty"`
}

// API is the cart backend contract consumed by the store, the offline queue
// replay and the syncer.
type API interface {
	FetchCart(ctx context.Context) (*domain.Cart, error)
	AddItem(ctx context.Context, req AddItemRequest) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID string, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
	InvalidateCache(ctx context.Context) error
}
