package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	return fs, dir
}

func testOrder(userID string, createdAt time.Time) *models.Order {
	return &models.Order{
		UserID: userID,
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Áo thun", Price: 250000, Quantity: 2},
		},
		Subtotal:      500000,
		Shipping:      30000,
		Total:         530000,
		PaymentMethod: "cod",
		CreatedAt:     createdAt,
	}
}

func TestCreateOrderAssignsIdentity(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()

	order := testOrder("u1", time.Time{})
	require.NoError(t, fs.CreateOrder(ctx, order))

	assert.NotEmpty(t, order.ID)
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, order.OrderNumber)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.NotEmpty(t, order.Items[0].ID)
	assert.Equal(t, order.ID, order.Items[0].OrderID)
}

func TestGetUserOrderScoping(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()

	order := testOrder("u1", time.Time{})
	require.NoError(t, fs.CreateOrder(ctx, order))

	got, err := fs.GetUserOrder(ctx, order.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	// another user's id does not resolve the order
	_, err = fs.GetUserOrder(ctx, order.ID, "u2")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	// the unscoped admin path still does
	got, err = fs.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
}

func TestGetUserOrdersNewestFirst(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	old := testOrder("u1", base)
	mid := testOrder("u1", base.Add(time.Hour))
	other := testOrder("u2", base.Add(2*time.Hour))
	newest := testOrder("u1", base.Add(3*time.Hour))

	for _, o := range []*models.Order{old, mid, other, newest} {
		require.NoError(t, fs.CreateOrder(ctx, o))
	}

	orders, err := fs.GetUserOrders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, newest.ID, orders[0].ID)
	assert.Equal(t, mid.ID, orders[1].ID)
	assert.Equal(t, old.ID, orders[2].ID)
	for _, o := range orders {
		assert.Equal(t, "u1", o.UserID)
	}
}

func TestUpdateOrderMissingIDLeavesDocumentUntouched(t *testing.T) {
	fs, dir := newTestStore(t)
	ctx := context.Background()

	order := testOrder("u1", time.Time{})
	require.NoError(t, fs.CreateOrder(ctx, order))

	before, err := os.ReadFile(filepath.Join(dir, "orders.json"))
	require.NoError(t, err)

	ghost := testOrder("u1", time.Time{})
	ghost.ID = "does-not-exist"
	ghost.Status = models.OrderStatusConfirmed
	err = fs.UpdateOrder(ctx, ghost)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	after, err := os.ReadFile(filepath.Join(dir, "orders.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGetOrderByIdempotencyKey(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()

	order := testOrder("u1", time.Time{})
	order.IdempotencyKey = "chk-123"
	require.NoError(t, fs.CreateOrder(ctx, order))

	got, err := fs.GetOrderByIdempotencyKey(ctx, "chk-123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.ID, got.ID)

	got, err = fs.GetOrderByIdempotencyKey(ctx, "chk-999")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = fs.GetOrderByIdempotencyKey(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAddToWishlistReplacesExistingPair(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()

	first := models.WishlistItem{UserID: "u1", ProductID: "p1", ProductName: "Áo khoác", Price: 450000}
	require.NoError(t, fs.AddToWishlist(ctx, first))

	// re-adding the same product wins with the newer data
	second := first
	second.Price = 399000
	require.NoError(t, fs.AddToWishlist(ctx, second))

	items, err := fs.GetUserWishlist(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(399000), items[0].Price)

	ok, err := fs.IsInWishlist(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoveFromWishlist(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, fs.AddToWishlist(ctx, models.WishlistItem{UserID: "u1", ProductID: "p1"}))
	require.NoError(t, fs.RemoveFromWishlist(ctx, "u1", "p1"))

	ok, err := fs.IsInWishlist(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.False(t, ok)

	// removing a missing entry is a no-op
	assert.NoError(t, fs.RemoveFromWishlist(ctx, "u1", "p1"))
}

func TestReopenPreservesDocument(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	order := testOrder("u1", time.Time{})
	order.ShippingAddress = models.Address{FullName: "Nguyễn Văn A", City: "Hà Nội"}
	require.NoError(t, fs.CreateOrder(ctx, order))
	require.NoError(t, fs.AddToWishlist(ctx, models.WishlistItem{UserID: "u1", ProductID: "p9", ProductName: "Quần jean"}))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)

	got, err := reopened.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	assert.Equal(t, "Nguyễn Văn A", got.ShippingAddress.FullName)
	require.Len(t, got.Items, 1)
	assert.Equal(t, order.Items[0].Name, got.Items[0].Name)
	assert.Equal(t, order.Items[0].Price, got.Items[0].Price)
	assert.Equal(t, order.Items[0].Quantity, got.Items[0].Quantity)

	items, err := reopened.GetUserWishlist(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p9", items[0].ProductID)
}

func TestNewFileStoreRejectsCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.json"), []byte("{not json"), 0o644))

	_, err := NewFileStore(dir)
	assert.Error(t, err, "a corrupt document must not be treated as an empty store")
}
