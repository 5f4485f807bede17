package service

import (
	"context"
	"errors"
	"testing"

	"storefront-service/internal/models"
	"storefront-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutRequest(userID string) *CreateOrderRequest {
	return &CreateOrderRequest{
		UserID: userID,
		Email:  userID + "@example.com",
		Items: []OrderItemRequest{
			{ProductID: "p1", Name: "Áo thun", Price: 250000, Quantity: 2},
			{ProductID: "p2", Name: "Quần short", Price: 180000, Quantity: 1},
		},
		Shipping:      30000,
		PaymentMethod: "cod",
	}
}

func TestCreateOrderComputesTotalsServerSide(t *testing.T) {
	st := newTestStore(t)
	pub := &fakePublisher{}
	svc := NewOrderService(st, pub, newFakeCache())

	order, err := svc.CreateOrder(context.Background(), checkoutRequest("u1"))
	require.NoError(t, err)

	assert.Equal(t, int64(680000), order.Subtotal)
	assert.Equal(t, int64(710000), order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.NotEmpty(t, order.OrderNumber)

	require.Len(t, pub.created, 1)
	assert.Equal(t, order.ID, pub.created[0].OrderID)
	assert.Equal(t, "u1@example.com", pub.created[0].Email)
}

func TestCreateOrderIdempotency(t *testing.T) {
	st := newTestStore(t)
	pub := &fakePublisher{}
	svc := NewOrderService(st, pub, newFakeCache())
	ctx := context.Background()

	req := checkoutRequest("u1")
	req.IdempotencyKey = "chk-42"

	first, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)

	second, err := svc.CreateOrder(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, pub.created, 1, "retry must not publish a second event")

	orders, err := st.GetUserOrders(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestUpdateOrderStatusRejectsInvalidTransition(t *testing.T) {
	st := newTestStore(t)
	svc := NewOrderService(st, &fakePublisher{}, newFakeCache())
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, checkoutRequest("u1"))
	require.NoError(t, err)

	actor := Actor{UserID: "u1"}
	_, err = svc.UpdateOrderStatus(ctx, actor, order.ID, models.OrderStatusDelivered, UpdateStatusOptions{})
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))

	// the stored order is untouched
	got, err := st.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, got.Status)
}

func TestUpdateOrderStatusDeliveredStampsAndPublishes(t *testing.T) {
	st := newTestStore(t)
	pub := &fakePublisher{}
	cache := newFakeCache()
	svc := NewOrderService(st, pub, cache)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, checkoutRequest("u1"))
	require.NoError(t, err)

	admin := Actor{UserID: "admin-1", Admin: true}
	for _, next := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipping,
		models.OrderStatusDelivered,
	} {
		order, err = svc.UpdateOrderStatus(ctx, admin, order.ID, next, UpdateStatusOptions{})
		require.NoError(t, err, "transition to %s", next)
	}

	assert.Equal(t, models.OrderStatusDelivered, order.Status)
	assert.NotNil(t, order.DeliveredAt)

	require.Len(t, pub.statusChanged, 4)
	last := pub.statusChanged[3]
	assert.Equal(t, models.OrderStatusShipping, last.From)
	assert.Equal(t, models.OrderStatusDelivered, last.To)
	assert.Equal(t, "u1@example.com", last.Email)

	assert.Contains(t, cache.invalidated, "u1")
}

func TestUpdateOrderStatusCancelRecordsReason(t *testing.T) {
	st := newTestStore(t)
	svc := NewOrderService(st, &fakePublisher{}, newFakeCache())
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, checkoutRequest("u1"))
	require.NoError(t, err)

	order, err = svc.UpdateOrderStatus(ctx, Actor{UserID: "u1"}, order.ID,
		models.OrderStatusCancelled, UpdateStatusOptions{CancelReason: "đổi ý"})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	assert.Equal(t, "đổi ý", order.CancelReason)
	assert.NotNil(t, order.CancelledAt)
}

func TestGetOrderOwnerScoping(t *testing.T) {
	st := newTestStore(t)
	svc := NewOrderService(st, &fakePublisher{}, newFakeCache())
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, checkoutRequest("u1"))
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, Actor{UserID: "u2"}, order.ID)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	got, err := svc.GetOrder(ctx, Actor{UserID: "someone-else", Admin: true}, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestListAllOrdersRequiresAdmin(t *testing.T) {
	st := newTestStore(t)
	svc := NewOrderService(st, &fakePublisher{}, newFakeCache())
	ctx := context.Background()

	_, err := svc.ListAllOrders(ctx, Actor{UserID: "u1"})
	assert.True(t, errors.Is(err, store.ErrForbidden))

	// an empty user id is not an admin either
	_, err = svc.ListAllOrders(ctx, Actor{})
	assert.True(t, errors.Is(err, store.ErrForbidden))

	_, err = svc.ListAllOrders(ctx, Actor{UserID: "admin-1", Admin: true})
	assert.NoError(t, err)
}

func TestUpdatePaymentStatus(t *testing.T) {
	st := newTestStore(t)
	svc := NewOrderService(st, &fakePublisher{}, newFakeCache())
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, checkoutRequest("u1"))
	require.NoError(t, err)

	_, err = svc.UpdatePaymentStatus(ctx, Actor{UserID: "u1"}, order.ID, models.PaymentStatusPaid)
	assert.True(t, errors.Is(err, store.ErrForbidden))

	admin := Actor{UserID: "admin-1", Admin: true}
	order, err = svc.UpdatePaymentStatus(ctx, admin, order.ID, models.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.NotNil(t, order.PaidAt)

	_, err = svc.UpdatePaymentStatus(ctx, admin, order.ID, models.PaymentStatusPending)
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))
}

func TestAdvanceInventoryStatus(t *testing.T) {
	st := newTestStore(t)
	svc := NewOrderService(st, &fakePublisher{}, newFakeCache())
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, checkoutRequest("u1"))
	require.NoError(t, err)

	admin := Actor{UserID: "admin-1", Admin: true}

	// no skipping straight to picked
	_, err = svc.AdvanceInventoryStatus(ctx, admin, order.ID, models.InventoryStatusPicked, "")
	assert.True(t, errors.Is(err, models.ErrInvalidTransition))

	order, err = svc.AdvanceInventoryStatus(ctx, admin, order.ID, models.InventoryStatusReserved, "")
	require.NoError(t, err)
	assert.Equal(t, models.InventoryStatusReserved, order.InventoryStatus)
	assert.NotNil(t, order.ReservedAt)

	order, err = svc.AdvanceInventoryStatus(ctx, admin, order.ID, models.InventoryStatusPicked, "XK-20260901-ABC")
	require.NoError(t, err)
	assert.Equal(t, "XK-20260901-ABC", order.OutboundID)
	assert.NotNil(t, order.PickedAt)

	_, err = svc.AdvanceInventoryStatus(ctx, Actor{UserID: "u1"}, order.ID, models.InventoryStatusPacked, "")
	assert.True(t, errors.Is(err, store.ErrForbidden))
}
