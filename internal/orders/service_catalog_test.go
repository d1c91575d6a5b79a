package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCatalogService(t *testing.T) (*CatalogService, *memStore) {
	t.Helper()
	store := newMemStore()
	return &CatalogService{Store: store, Log: newTestLogger()}, store
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("registers a new sku", func(t *testing.T) {
		svc, store := setupCatalogService(t)

		p, err := svc.CreateProduct(ctx, "SKU-1", "widget", decimal.RequireFromString("9.99"))
		require.NoError(t, err)
		assert.Equal(t, "SKU-1", p.SKU)

		got, err := store.ProductBySKU(ctx, "SKU-1")
		require.NoError(t, err)
		assert.True(t, got.Price.Equal(decimal.RequireFromString("9.99")))
	})

	t.Run("duplicate sku", func(t *testing.T) {
		svc, store := setupCatalogService(t)
		store.seedProduct("SKU-1", "widget", "9.99")

		_, err := svc.CreateProduct(ctx, "SKU-1", "other", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("negative price", func(t *testing.T) {
		svc, _ := setupCatalogService(t)
		_, err := svc.CreateProduct(ctx, "SKU-1", "widget", decimal.RequireFromString("-0.01"))
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("blank sku or name", func(t *testing.T) {
		svc, _ := setupCatalogService(t)
		_, err := svc.CreateProduct(ctx, " ", "widget", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.CreateProduct(ctx, "SKU-1", "", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestCatalogReads(t *testing.T) {
	ctx := context.Background()
	svc, store := setupCatalogService(t)
	store.seedProduct("SKU-1", "Blue Widget", "9.99")
	store.seedProduct("SKU-2", "Red Gadget", "19.99")
	store.seedUser("alice")

	t.Run("by sku", func(t *testing.T) {
		p, err := svc.ProductBySKU(ctx, "SKU-2")
		require.NoError(t, err)
		assert.Equal(t, "Red Gadget", p.Name)

		_, err = svc.ProductBySKU(ctx, "SKU-9")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("price window", func(t *testing.T) {
		products, err := svc.ProductsByPriceBetween(ctx, decimal.NewFromInt(10), decimal.NewFromInt(20))
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "SKU-2", products[0].SKU)

		_, err = svc.ProductsByPriceBetween(ctx, decimal.NewFromInt(100), decimal.NewFromInt(200))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("name fragment is case-insensitive", func(t *testing.T) {
		products, err := svc.ProductsByName(ctx, "widget")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "SKU-1", products[0].SKU)

		_, err = svc.ProductsByName(ctx, "sprocket")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("users", func(t *testing.T) {
		users, err := svc.Users(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "alice", users[0].Username)
	})
}
