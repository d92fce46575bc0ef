package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/repository"
)

type stubRepository struct {
	repository.CartRepository
	deleteErr       error
	deletedIdentity string
}

func (s *stubRepository) DeleteCart(_ context.Context, identity string) error {
	s.deletedIdentity = identity
	return s.deleteErr
}

type stubCache struct {
	deleteErr       error
	deletedIdentity string
}

func (s *stubCache) Get(context.Context, string) (*domain.Cart, error) { return nil, nil }

func (s *stubCache) Set(context.Context, string, *domain.Cart) error { return nil }

func (s *stubCache) Delete(_ context.Context, identity string) error {
	s.deletedIdentity = identity
	return s.deleteErr
}

func TestHandleOrderCompleted_EmptiesCartAndCache(t *testing.T) {
	repo := &stubRepository{}
	cartCache := &stubCache{}
	c := &OrderConsumer{repo: repo, cache: cartCache}

	payload := []byte(`{"order_id":"order-7","identity":"guest:3f1a9c2e"}`)
	err := c.handleOrderCompleted(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, "guest:3f1a9c2e", repo.deletedIdentity)
	assert.Equal(t, "guest:3f1a9c2e", cartCache.deletedIdentity)
}

func TestHandleOrderCompleted_ToleratesMissingCart(t *testing.T) {
	repo := &stubRepository{deleteErr: repository.ErrCartNotFound}
	c := &OrderConsumer{repo: repo, cache: &stubCache{}}

	payload := []byte(`{"order_id":"order-7","identity":"user:42"}`)
	err := c.handleOrderCompleted(context.Background(), payload)

	assert.NoError(t, err)
}

func TestHandleOrderCompleted_RepositoryFailure(t *testing.T) {
	repo := &stubRepository{deleteErr: errors.New("mongo timeout")}
	c := &OrderConsumer{repo: repo, cache: &stubCache{}}

	payload := []byte(`{"order_id":"order-7","identity":"user:42"}`)
	err := c.handleOrderCompleted(context.Background(), payload)

	assert.Error(t, err)
}

func TestHandleOrderCompleted_CacheFailureIsNotFatal(t *testing.T) {
	repo := &stubRepository{}
	c := &OrderConsumer{repo: repo, cache: &stubCache{deleteErr: errors.New("redis down")}}

	payload := []byte(`{"order_id":"order-7","identity":"user:42"}`)
	err := c.handleOrderCompleted(context.Background(), payload)

	assert.NoError(t, err)
	assert.Equal(t, "user:42", repo.deletedIdentity)
}

func TestHandleOrderCompleted_BadPayload(t *testing.T) {
	c := &OrderConsumer{repo: &stubRepository{}, cache: &stubCache{}}

	assert.Error(t, c.handleOrderCompleted(context.Background(), []byte(`{not json`)))
	assert.Error(t, c.handleOrderCompleted(context.Background(), []byte(`{"order_id":"order-7"}`)))
}
