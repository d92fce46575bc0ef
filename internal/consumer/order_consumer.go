// Package consumer empties carts when the order pipeline reports a completed
// checkout for the same identity.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/cache"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/repository"
)

const ordersTopic = "orders-completed"

type orderCompletedEvent struct {
	OrderID  string `json:"order_id"`
	Identity string `json:"identity"`
}

type OrderConsumer struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	reader *kafka.Reader
}

func NewOrderConsumer(repo repository.CartRepository, cartCache cache.CartCache, brokers ...string) *OrderConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    ordersTopic,
		GroupID:  "cartd-order-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &OrderConsumer{repo: repo, cache: cartCache, reader: reader}
}

func (c *OrderConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("error reading order event: %v", err)
			}
			continue
		}
		if err := c.handleOrderCompleted(ctx, m.Value); err != nil {
			log.Printf("failed to handle order event: %v", err)
		}
	}
}

func (c *OrderConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("error closing order consumer: %v", err)
	}
}

func (c *OrderConsumer) handleOrderCompleted(ctx context.Context, payload []byte) error {
	var event orderCompletedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("parse order event: %w", err)
	}
	if event.Identity == "" {
		return errors.New("order event missing identity")
	}

	if err := c.repo.DeleteCart(ctx, event.Identity); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return fmt.Errorf("delete cart for %s: %w", event.Identity, err)
	}
	if err := c.cache.Delete(ctx, event.Identity); err != nil {
		log.Printf("failed to delete cached cart for %s: %v", event.Identity, err)
	}

	log.Printf("emptied cart for %s after order %s", event.Identity, event.OrderID)
	return nil
}
