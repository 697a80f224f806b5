package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/merchdash/backend/internal/domain/sales"
	"github.com/merchdash/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupOrderLineTestDB creates an in-memory SQLite database for testing
func setupOrderLineTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE order_lines (
			id TEXT PRIMARY KEY,
			shop TEXT NOT NULL,
			order_id TEXT NOT NULL,
			created_at DATETIME,
			product_id TEXT,
			variant_id TEXT,
			qty INTEGER NOT NULL DEFAULT 0,
			currency TEXT NOT NULL,
			net_amount DECIMAL(12,2) NOT NULL DEFAULT 0
		)
	`).Error
	require.NoError(t, err)

	return db
}

func newTestOrderLine(t *testing.T, id string, qty int) *sales.OrderLine {
	t.Helper()
	productID := "gid://shopify/Product/7001"
	variantID := "gid://shopify/ProductVariant/8001"
	line, err := sales.NewOrderLine(
		"acme.myshopify.com",
		id,
		"gid://shopify/Order/1001",
		time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		&productID,
		&variantID,
		qty,
		"USD",
		decimal.RequireFromString("24.95"),
	)
	require.NoError(t, err)
	return line
}

func TestGormOrderLineRepository_InsertIfAbsent(t *testing.T) {
	db := setupOrderLineTestDB(t)
	repo := NewGormOrderLineRepository(db)
	ctx := context.Background()

	t.Run("inserts a new line", func(t *testing.T) {
		inserted, err := repo.InsertIfAbsent(ctx, newTestOrderLine(t, "gid://shopify/LineItem/5001", 2))
		require.NoError(t, err)
		assert.True(t, inserted)
	})

	t.Run("replayed line is ignored and the stored row never changes", func(t *testing.T) {
		original := newTestOrderLine(t, "gid://shopify/LineItem/5002", 2)
		inserted, err := repo.InsertIfAbsent(ctx, original)
		require.NoError(t, err)
		require.True(t, inserted)

		replay := newTestOrderLine(t, "gid://shopify/LineItem/5002", 99)
		inserted, err = repo.InsertIfAbsent(ctx, replay)
		require.NoError(t, err)
		assert.False(t, inserted)

		stored, err := repo.FindByID(ctx, "acme.myshopify.com", "gid://shopify/LineItem/5002")
		require.NoError(t, err)
		assert.Equal(t, 2, stored.Qty)
	})
}

func TestGormOrderLineRepository_FindByID(t *testing.T) {
	db := setupOrderLineTestDB(t)
	repo := NewGormOrderLineRepository(db)
	ctx := context.Background()

	t.Run("finds stored line", func(t *testing.T) {
		line := newTestOrderLine(t, "gid://shopify/LineItem/5003", 1)
		_, err := repo.InsertIfAbsent(ctx, line)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, "acme.myshopify.com", "gid://shopify/LineItem/5003")
		require.NoError(t, err)
		assert.Equal(t, line.ID, found.ID)
		assert.Equal(t, "USD", found.Currency)
		assert.True(t, found.NetAmount.Equal(decimal.RequireFromString("24.95")))
		require.NotNil(t, found.ProductID)
		assert.Equal(t, "gid://shopify/Product/7001", *found.ProductID)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "acme.myshopify.com", "gid://shopify/LineItem/9999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("does not cross shops", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "other.myshopify.com", "gid://shopify/LineItem/5003")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormOrderLineRepository_CountByShop(t *testing.T) {
	db := setupOrderLineTestDB(t)
	repo := NewGormOrderLineRepository(db)
	ctx := context.Background()

	for i, id := range []string{"gid://shopify/LineItem/1", "gid://shopify/LineItem/2", "gid://shopify/LineItem/3"} {
		_, err := repo.InsertIfAbsent(ctx, newTestOrderLine(t, id, i+1))
		require.NoError(t, err)
	}

	count, err := repo.CountByShop(ctx, "acme.myshopify.com")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	count, err = repo.CountByShop(ctx, "other.myshopify.com")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}
