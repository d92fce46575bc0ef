package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/cache"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/catalog"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/repository"
)

type CartService struct {
	repo    repository.CartRepository
	cache   cache.CartCache
	catalog catalog.Catalog
	sfg     singleflight.Group // prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, cat catalog.Catalog) *CartService {
	return &CartService{
		repo:    repo,
		cache:   cache,
		catalog: cat,
	}
}

// GetCart returns the cart for an identity, reading through the cache. A
// missing cart is an empty cart, never an error.
func (s *CartService) GetCart(ctx context.Context, identity string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(identity, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, identity)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, identity)
		if errGet != nil {
			if errors.Is(errGet, repository.ErrCartNotFound) {
				return &domain.Cart{
					Identity:  identity,
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				}, nil
			}
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), identity, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItemInput is the selection a client submits; pricing is resolved here
// against the catalog, never taken from the client.
type AddItemInput struct {
	ProductID      string
	Quantity       int
	Customizations []domain.Customization
}

// AddItem validates the product and customizations, prices the line and
// stores it, returning the created item.
func (s *CartService) AddItem(ctx context.Context, identity string, input AddItemInput) (*domain.CartItem, error) {
	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to validate product: %w", err)
	}
	if !product.Active {
		return nil, catalog.ErrProductNotFound
	}

	options, err := s.catalog.GetProductOptions(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product options: %w", err)
	}
	resolved, err := catalog.ResolveSelections(options, input.Customizations)
	if err != nil {
		return nil, err
	}

	unitPrice := domain.UnitPrice(product.BasePrice, resolved)
	now := time.Now()
	item := domain.CartItem{
		ID:             uuid.NewString(),
		ProductID:      input.ProductID,
		Quantity:       input.Quantity,
		Customizations: resolved,
		UnitPrice:      unitPrice,
		TotalPrice:     domain.ItemTotal(unitPrice, input.Quantity),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.AddItem(ctx, identity, item); err != nil {
		log.Printf("repo add item error: %v", err)
		return nil, err
	}

	s.invalidateCache(identity)
	return &item, nil
}

// UpdateQuantity recomputes the line total from the stored unit price.
func (s *CartService) UpdateQuantity(ctx context.Context, identity, itemID string, quantity int) (*domain.CartItem, error) {
	cart, err := s.repo.GetCart(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, repository.ErrItemNotFound
		}
		return nil, err
	}

	var item *domain.CartItem
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			item = &cart.Items[i]
			break
		}
	}
	if item == nil {
		return nil, repository.ErrItemNotFound
	}

	totalPrice := domain.ItemTotal(item.UnitPrice, quantity)
	if err := s.repo.UpdateItemQuantity(ctx, identity, itemID, quantity, totalPrice); err != nil {
		log.Printf("repo update item quantity error: %v", err)
		return nil, err
	}

	item.Quantity = quantity
	item.TotalPrice = totalPrice
	item.UpdatedAt = time.Now()

	s.invalidateCache(identity)
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, identity, itemID string) error {
	if err := s.repo.RemoveItem(ctx, identity, itemID); err != nil {
		log.Printf("repo remove item error: %v", err)
		return err
	}

	s.invalidateCache(identity)
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, identity string) error {
	err := s.repo.DeleteCart(ctx, identity)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		log.Printf("repo delete cart error: %v", err)
		return err
	}

	s.invalidateCache(identity)
	return nil
}

// InvalidateCache drops any cached pricing for the identity. Best effort:
// the caller never fails because of it.
func (s *CartService) InvalidateCache(ctx context.Context, identity string) error {
	return s.cache.Delete(ctx, identity)
}

func (s *CartService) invalidateCache(identity string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, identity); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
