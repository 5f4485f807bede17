package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, st store.Store, id string, available int) {
	t.Helper()
	require.NoError(t, st.CreateProduct(context.Background(), &models.Product{
		ID:        id,
		SKU:       "SKU-" + id,
		Name:      "Product " + id,
		Price:     100000,
		Available: available,
	}))
}

func inboundRequest(productID string, qty int) *CreateMovementRequest {
	return &CreateMovementRequest{
		Direction: models.MovementInbound,
		Warehouse: "kho-hn",
		Supplier:  "NCC Dệt May",
		Items: []MovementItemRequest{
			{ProductID: productID, ProductName: "Product " + productID, Quantity: qty, UnitPrice: 100000},
		},
		VATAmount:  80000,
		PaidAmount: 500000,
	}
}

func TestCreateMovementComputesFinancials(t *testing.T) {
	st := newTestStore(t)
	svc := NewMovementService(st, newFakeLocker(), &fakePublisher{})

	m, err := svc.Create(context.Background(), Actor{UserID: "staff-1"}, inboundRequest("p1", 10))
	require.NoError(t, err)

	assert.Equal(t, models.MovementStatusDraft, m.Status)
	assert.Equal(t, int64(1000000), m.Subtotal)
	assert.Equal(t, int64(1080000), m.FinalTotal)
	assert.Equal(t, int64(580000), m.DebtAmount)
	assert.Equal(t, "staff-1", m.CreatedBy)
	assert.Regexp(t, `^NK-\d{8}-[0-9A-F]{8}$`, m.Code)

	require.Len(t, m.History, 1)
	assert.Equal(t, "created", m.History[0].Action)
}

func TestCreateOutboundMovementCode(t *testing.T) {
	st := newTestStore(t)
	svc := NewMovementService(st, newFakeLocker(), &fakePublisher{})

	req := inboundRequest("p1", 2)
	req.Direction = models.MovementOutbound
	m, err := svc.Create(context.Background(), Actor{UserID: "staff-1"}, req)
	require.NoError(t, err)
	assert.Regexp(t, `^XK-`, m.Code)
}

func TestSubmitMovement(t *testing.T) {
	st := newTestStore(t)
	svc := NewMovementService(st, newFakeLocker(), &fakePublisher{})
	ctx := context.Background()

	m, err := svc.Create(ctx, Actor{UserID: "staff-1"}, inboundRequest("p1", 5))
	require.NoError(t, err)

	m, err = svc.Submit(ctx, Actor{UserID: "staff-1"}, m.ID, m.Version)
	require.NoError(t, err)
	assert.Equal(t, models.MovementStatusPending, m.Status)
	assert.NotNil(t, m.SubmittedAt)
	assert.Equal(t, 1, m.Version)

	// submitting twice is an invalid transition
	_, err = svc.Submit(ctx, Actor{UserID: "staff-1"}, m.ID, m.Version)
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))
}

func TestApproveMovementRequiresAdmin(t *testing.T) {
	st := newTestStore(t)
	svc := NewMovementService(st, newFakeLocker(), &fakePublisher{})
	ctx := context.Background()
	seedProduct(t, st, "p1", 0)

	m, err := svc.Create(ctx, Actor{UserID: "staff-1"}, inboundRequest("p1", 5))
	require.NoError(t, err)

	_, err = svc.Approve(ctx, Actor{UserID: "staff-1"}, m.ID, m.Version)
	assert.True(t, errors.Is(err, store.ErrForbidden))
}

func TestApproveMovementAppliesStockOnce(t *testing.T) {
	st := newTestStore(t)
	pub := &fakePublisher{}
	svc := NewMovementService(st, newFakeLocker(), pub)
	ctx := context.Background()
	seedProduct(t, st, "p1", 3)

	m, err := svc.Create(ctx, Actor{UserID: "staff-1"}, inboundRequest("p1", 10))
	require.NoError(t, err)

	admin := Actor{UserID: "admin-1", Admin: true}
	approved, err := svc.Approve(ctx, admin, m.ID, m.Version)
	require.NoError(t, err)
	assert.Equal(t, models.MovementStatusApproved, approved.Status)
	assert.Equal(t, "admin-1", approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	p, err := st.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 13, p.Available)

	require.Len(t, pub.approved, 1)
	assert.Equal(t, m.ID, pub.approved[0].MovementID)

	// a stale retry conflicts and does not double-apply
	_, err = svc.Approve(ctx, admin, m.ID, m.Version)
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))

	p, err = st.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 13, p.Available)
}

func TestApproveMovementHeldLockConflicts(t *testing.T) {
	st := newTestStore(t)
	locker := newFakeLocker()
	svc := NewMovementService(st, locker, &fakePublisher{})
	ctx := context.Background()
	seedProduct(t, st, "p1", 0)

	m, err := svc.Create(ctx, Actor{UserID: "staff-1"}, inboundRequest("p1", 5))
	require.NoError(t, err)

	held, err := locker.AcquireLock(ctx, fmt.Sprintf("movement:%s", m.ID), approvalLockTTL)
	require.NoError(t, err)
	require.True(t, held)

	_, err = svc.Approve(ctx, Actor{UserID: "admin-1", Admin: true}, m.ID, m.Version)
	assert.True(t, errors.Is(err, store.ErrVersionConflict))

	p, err := st.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, p.Available)
}

func TestCompleteMovement(t *testing.T) {
	st := newTestStore(t)
	svc := NewMovementService(st, newFakeLocker(), &fakePublisher{})
	ctx := context.Background()
	seedProduct(t, st, "p1", 0)

	admin := Actor{UserID: "admin-1", Admin: true}
	m, err := svc.Create(ctx, Actor{UserID: "staff-1"}, inboundRequest("p1", 10))
	require.NoError(t, err)

	// completion requires approval first
	_, err = svc.Complete(ctx, admin, m.ID, m.Version, m.FinalTotal)
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))

	m, err = svc.Approve(ctx, admin, m.ID, m.Version)
	require.NoError(t, err)

	// overpaying is rejected
	_, err = svc.Complete(ctx, admin, m.ID, m.Version, m.FinalTotal+1)
	assert.Error(t, err)

	m, err = svc.Complete(ctx, admin, m.ID, m.Version, m.FinalTotal)
	require.NoError(t, err)
	assert.Equal(t, models.MovementStatusCompleted, m.Status)
	assert.Equal(t, int64(0), m.DebtAmount)
	assert.NotNil(t, m.CompletedAt)
}
