package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/patrik-fredon/vence-a-kvety-fredonbytes-sub002/internal/domain"
)

func setupTestDB(t *testing.T) CartRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := NewMongoRepository(db)
	require.NoError(t, repo.(*mongoRepository).CreateIndexes(ctx))
	return repo
}

func wreathItem(id string, quantity int) domain.CartItem {
	return domain.CartItem{
		ID:        id,
		ProductID: "wreath-classic",
		Quantity:  quantity,
		Customizations: []domain.Customization{
			{OptionID: "wreath-classic-size", ChoiceID: "size-60", PriceModifier: 300},
		},
		UnitPrice:  1800,
		TotalPrice: 1800 * int64(quantity),
	}
}

func TestGetCart_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	cart, err := repo.GetCart(context.Background(), "guest:nonexistent")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestAddItem_CreatesCartOnFirstItem(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	identity := "guest:3f1a9c2e"

	err := repo.AddItem(ctx, identity, wreathItem("item-1", 2))
	require.NoError(t, err)

	cart, err := repo.GetCart(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, identity, cart.Identity)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "item-1", cart.Items[0].ID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	require.Len(t, cart.Items[0].Customizations, 1)
	assert.Equal(t, int64(300), cart.Items[0].Customizations[0].PriceModifier)
}

func TestAddItem_SameProductAppendsNewLine(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	identity := "guest:3f1a9c2e"

	require.NoError(t, repo.AddItem(ctx, identity, wreathItem("item-1", 1)))
	require.NoError(t, repo.AddItem(ctx, identity, wreathItem("item-2", 1)))

	cart, err := repo.GetCart(ctx, identity)
	require.NoError(t, err)
	// Same product with different configurations stays two distinct lines.
	assert.Len(t, cart.Items, 2)
}

func TestUpdateItemQuantity(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	identity := "user:42"

	require.NoError(t, repo.AddItem(ctx, identity, wreathItem("item-1", 2)))

	err := repo.UpdateItemQuantity(ctx, identity, "item-1", 5, 9000)
	require.NoError(t, err)

	cart, err := repo.GetCart(ctx, identity)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, int64(9000), cart.Items[0].TotalPrice)
}

func TestUpdateItemQuantity_ItemNotFound(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	identity := "user:42"

	require.NoError(t, repo.AddItem(ctx, identity, wreathItem("item-1", 1)))

	err := repo.UpdateItemQuantity(ctx, identity, "nonexistent", 2, 3600)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveItem(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	identity := "guest:3f1a9c2e"

	require.NoError(t, repo.AddItem(ctx, identity, wreathItem("item-1", 1)))
	require.NoError(t, repo.AddItem(ctx, identity, wreathItem("item-2", 1)))

	err := repo.RemoveItem(ctx, identity, "item-1")
	require.NoError(t, err)

	cart, err := repo.GetCart(ctx, identity)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "item-2", cart.Items[0].ID)
}

func TestRemoveItem_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.RemoveItem(context.Background(), "guest:nonexistent", "item-1")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestDeleteCart(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	identity := "user:42"

	require.NoError(t, repo.AddItem(ctx, identity, wreathItem("item-1", 1)))
	require.NoError(t, repo.DeleteCart(ctx, identity))

	_, err := repo.GetCart(ctx, identity)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestDeleteCart_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	err := repo.DeleteCart(context.Background(), "guest:nonexistent")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestIdentityIsolation(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.AddItem(ctx, "user:42", wreathItem("item-1", 1)))
	require.NoError(t, repo.AddItem(ctx, "guest:3f1a9c2e", wreathItem("item-2", 1)))

	userCart, err := repo.GetCart(ctx, "user:42")
	require.NoError(t, err)
	require.Len(t, userCart.Items, 1)
	assert.Equal(t, "item-1", userCart.Items[0].ID)

	guestCart, err := repo.GetCart(ctx, "guest:3f1a9c2e")
	require.NoError(t, err)
	require.Len(t, guestCart.Items, 1)
	assert.Equal(t, "item-2", guestCart.Items[0].ID)
}
