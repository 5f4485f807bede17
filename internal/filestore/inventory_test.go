package filestore

import (
	"context"
	"errors"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, fs *FileStore, id string, available int) {
	t.Helper()
	require.NoError(t, fs.CreateProduct(context.Background(), &models.Product{
		ID:        id,
		SKU:       "SKU-" + id,
		Name:      "Product " + id,
		Price:     100000,
		Available: available,
	}))
}

func testMovement(direction models.MovementDirection, productID string, qty int) *models.StockMovement {
	return &models.StockMovement{
		Direction: direction,
		Status:    models.MovementStatusDraft,
		Items: []models.MovementItem{
			{ProductID: productID, Quantity: qty, UnitPrice: 100000},
		},
		Subtotal:   int64(qty) * 100000,
		FinalTotal: int64(qty) * 100000,
		DebtAmount: int64(qty) * 100000,
		CreatedBy:  "staff-1",
	}
}

func TestApproveMovementAppliesInboundStock(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, fs, "p1", 5)

	m := testMovement(models.MovementInbound, "p1", 10)
	require.NoError(t, fs.CreateMovement(ctx, m))

	m.Status = models.MovementStatusApproved
	require.NoError(t, fs.ApproveMovement(ctx, m, 0))
	assert.Equal(t, 1, m.Version)

	p, err := fs.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 15, p.Available)

	stored, err := fs.GetMovementByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MovementStatusApproved, stored.Status)
	assert.Equal(t, 1, stored.Version)
}

func TestApproveMovementStaleVersionConflicts(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, fs, "p1", 5)

	m := testMovement(models.MovementInbound, "p1", 10)
	require.NoError(t, fs.CreateMovement(ctx, m))

	m.Status = models.MovementStatusApproved
	require.NoError(t, fs.ApproveMovement(ctx, m, 0))

	// a second admin session approving from the version it originally read
	err := fs.ApproveMovement(ctx, m, 0)
	assert.True(t, errors.Is(err, store.ErrVersionConflict))

	// stock applied exactly once
	p, err := fs.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 15, p.Available)
}

func TestApproveOutboundRejectsInsufficientStock(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, fs, "p1", 20)
	seedProduct(t, fs, "p2", 3)

	m := &models.StockMovement{
		Direction: models.MovementOutbound,
		Status:    models.MovementStatusDraft,
		Items: []models.MovementItem{
			{ProductID: "p1", Quantity: 5, UnitPrice: 100000},
			{ProductID: "p2", Quantity: 4, UnitPrice: 100000},
		},
		Subtotal:   900000,
		FinalTotal: 900000,
	}
	require.NoError(t, fs.CreateMovement(ctx, m))

	m.Status = models.MovementStatusApproved
	err := fs.ApproveMovement(ctx, m, 0)
	assert.Error(t, err)

	// nothing was applied, not even the line that had stock
	p1, err := fs.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 20, p1.Available)
	p2, err := fs.GetProduct(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, 3, p2.Available)

	stored, err := fs.GetMovementByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MovementStatusDraft, stored.Status)
	assert.Equal(t, 0, stored.Version)
}

func TestUpdateMovementVersionGuard(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()

	m := testMovement(models.MovementInbound, "p1", 2)
	require.NoError(t, fs.CreateMovement(ctx, m))

	m.Status = models.MovementStatusPending
	require.NoError(t, fs.UpdateMovement(ctx, m, 0))
	assert.Equal(t, 1, m.Version)

	stale := *m
	err := fs.UpdateMovement(ctx, &stale, 0)
	assert.True(t, errors.Is(err, store.ErrVersionConflict))

	missing := testMovement(models.MovementInbound, "p1", 2)
	missing.ID = "nope"
	err = fs.UpdateMovement(ctx, missing, 0)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestListMovementsFiltersByStatus(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()

	draft := testMovement(models.MovementInbound, "p1", 1)
	require.NoError(t, fs.CreateMovement(ctx, draft))
	pending := testMovement(models.MovementOutbound, "p2", 1)
	pending.Status = models.MovementStatusPending
	require.NoError(t, fs.CreateMovement(ctx, pending))

	all, err := fs.ListMovements(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := fs.ListMovements(ctx, models.MovementStatusDraft)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, draft.ID, drafts[0].ID)
}

func TestListProductsOrderedBySKU(t *testing.T) {
	fs, _ := newTestStore(t)
	ctx := context.Background()
	seedProduct(t, fs, "b", 1)
	seedProduct(t, fs, "a", 1)

	products, err := fs.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "SKU-a", products[0].SKU)
	assert.Equal(t, "SKU-b", products[1].SKU)
}
