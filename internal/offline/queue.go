package offline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/transport"
)

type OperationType string

const (
	OpAdd    OperationType = "add"
	OpUpdate OperationType = "update"
	OpRemove OperationType = "remove"
)

// DefaultMaxRetries bounds replay attempts per queued operation.
const DefaultMaxRetries = 3

// OperationData is the payload of a deferred cart mutation. Which fields are
// meaningful depends on the operation type.
type OperationData struct {
	ProductID      string                 `json:"product_id,omitempty"`
	ItemID         string                 `json:"item_id,omitempty"`
	Quantity       int                    `json:"quantity,omitempty"`
	Customizations []domain.Customization `json:"customizations,omitempty"`
}

// Operation is one cart mutation recorded while the client could not reach
// the backend.
type Operation struct {
	ID         string        `json:"id"`
	Type       OperationType `json:"type"`
	Data       OperationData `json:"data"`
	Timestamp  time.Time     `json:"timestamp"`
	RetryCount int           `json:"retry_count"`
	MaxRetries int           `json:"max_retries"`
	Priority   int           `json:"priority"`
}

// Summary aggregates one ProcessAll run. Individual operation failures are
// isolated; ProcessAll itself never fails.
type Summary struct {
	Successful int
	Failed     int
	Errors     []string
}

// Queue is a durable FIFO log of cart mutations deferred for later replay.
// Replay order is storage order; there is no causal-dependency tracking
// between queued operations.
type Queue struct {
	mu      sync.Mutex
	storage Storage
}

func NewQueue(storage Storage) *Queue {
	return &Queue{storage: storage}
}

// NewOperation builds an operation with a fresh id and a zero retry count.
func NewOperation(opType OperationType, data OperationData) Operation {
	return Operation{
		ID:         uuid.NewString(),
		Type:       opType,
		Data:       data,
		Timestamp:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

// Store appends an operation to durable storage. No deduplication is
// performed; callers must not double-submit.
func (q *Queue) Store(op Operation) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.storage.Load()
	if err != nil {
		return fmt.Errorf("load queue: %w", err)
	}
	ops = append(ops, op)
	if err := q.storage.Save(ops); err != nil {
		return fmt.Errorf("store operation: %w", err)
	}
	return nil
}

// List returns the queue without mutating it.
func (q *Queue) List() ([]Operation, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.storage.Load()
}

// Remove deletes a single operation after confirmed successful replay.
func (q *Queue) Remove(operationID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.storage.Load()
	if err != nil {
		return fmt.Errorf("load queue: %w", err)
	}
	kept := ops[:0]
	for _, op := range ops {
		if op.ID != operationID {
			kept = append(kept, op)
		}
	}
	return q.storage.Save(kept)
}

// IncrementRetry bumps the retry count of an operation and reports whether
// the operation is still eligible for further replay.
func (q *Queue) IncrementRetry(operationID string) (eligible bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ops, err := q.storage.Load()
	if err != nil {
		return false, fmt.Errorf("load queue: %w", err)
	}
	for i := range ops {
		if ops[i].ID != operationID {
			continue
		}
		ops[i].RetryCount++
		eligible = ops[i].RetryCount < ops[i].MaxRetries
		if err := q.storage.Save(ops); err != nil {
			return false, fmt.Errorf("save queue: %w", err)
		}
		return eligible, nil
	}
	return false, fmt.Errorf("operation %s not found", operationID)
}

// ProcessAll replays every queued operation in FIFO order against the
// backend. Successful operations are removed; failed ones have their retry
// count bumped and are dropped permanently once the budget is spent.
func (q *Queue) ProcessAll(ctx context.Context, api transport.API) Summary {
	var summary Summary

	ops, err := q.List()
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("load queue: %v", err))
		return summary
	}

	for _, op := range ops {
		if err := q.replay(ctx, api, op); err != nil {
			summary.Failed++
			eligible, retryErr := q.IncrementRetry(op.ID)
			if retryErr != nil {
				summary.Errors = append(summary.Errors, fmt.Sprintf("operation %s: %v", op.ID, retryErr))
				continue
			}
			if !eligible {
				if removeErr := q.Remove(op.ID); removeErr != nil {
					log.Printf("failed to drop exhausted operation %s: %v", op.ID, removeErr)
				}
				summary.Errors = append(summary.Errors,
					fmt.Sprintf("operation %s (%s) dropped after %d attempts: %v", op.ID, op.Type, op.RetryCount+1, err))
			} else {
				summary.Errors = append(summary.Errors, fmt.Sprintf("operation %s (%s) failed: %v", op.ID, op.Type, err))
			}
			continue
		}

		summary.Successful++
		if err := q.Remove(op.ID); err != nil {
			log.Printf("failed to remove replayed operation %s: %v", op.ID, err)
		}
	}

	return summary
}

func (q *Queue) replay(ctx context.Context, api transport.API, op Operation) error {
	switch op.Type {
	case OpAdd:
		_, err := api.AddItem(ctx, transport.AddItemRequest{
			ProductID:      op.Data.ProductID,
			Quantity:       op.Data.Quantity,
			Customizations: op.Data.Customizations,
		})
		return err
	case OpUpdate:
		_, err := api.UpdateQuantity(ctx, op.Data.ItemID, op.Data.Quantity)
		return err
	case OpRemove:
		return api.RemoveItem(ctx, op.Data.ItemID)
	default:
		return fmt.Errorf("unknown operation type %q", op.Type)
	}
}
