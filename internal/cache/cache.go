package cache

import (
	"context"
	"errors"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
)

// CartCache is the read-through cache over cart state, keyed by identity
// (authenticated user or guest session).
type CartCache interface {
	Get(ctx context.Context, identity string) (*domain.Cart, error)
	Set(ctx context.Context, identity string, cart *domain.Cart) error
	Delete(ctx context.Context, identity string) error
}

var ErrCacheMiss = errors.New("cache miss")
