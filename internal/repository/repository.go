package repository

import (
	"context"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
)

// CartRepository defines the interface for cart data operations.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	GetCart(ctx context.Context, identity string) (*domain.Cart, error)
	AddItem(ctx context.Context, identity string, item domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, identity, itemID string, quantity int, totalPrice int64) error
	RemoveItem(ctx context.Context, identity, itemID string) error
	DeleteCart(ctx context.Context, identity string) error
}
