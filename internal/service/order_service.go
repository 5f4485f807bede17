package service

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService handles the customer order lifecycle
type OrderService struct {
	store     store.Store
	publisher Publisher
	cache     StatsCache
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(st store.Store, publisher Publisher, cache StatsCache) *OrderService {
	return &OrderService{
		store:     st,
		publisher: publisher,
		cache:     cache,
		logger:    util.GetLogger(),
	}
}

// CreateOrderRequest represents a checkout submission
type CreateOrderRequest struct {
	UserID          string             `json:"userId" binding:"required"`
	Email           string             `json:"email"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1"`
	Shipping        int64              `json:"shipping"`
	Tax             int64              `json:"tax"`
	Discount        int64              `json:"discount"`
	PaymentMethod   string             `json:"paymentMethod" binding:"required"`
	ShippingAddress models.Address     `json:"shippingAddress"`
	IdempotencyKey  string             `json:"idempotencyKey,omitempty"`
}

// OrderItemRequest represents a line item in a checkout submission
type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Price     int64  `json:"price" binding:"required,min=0"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Image     string `json:"image,omitempty"`
}

// UpdateStatusOptions carries optional fields merged during a transition
type UpdateStatusOptions struct {
	CancelReason string
}

// CreateOrder validates a checkout submission, computes totals server-side
// and persists the order. Duplicate idempotency keys return the existing
// order instead of creating a second one.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if req.IdempotencyKey != "" {
		existing, err := s.store.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency: %w", err)
		}
		if existing != nil {
			s.logger.Info("Duplicate order request detected",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.String("order_id", existing.ID))
			return existing, nil
		}
	}

	items := make([]models.OrderItem, len(req.Items))
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			util.OrdersFailedTotal.WithLabelValues("invalid_items").Inc()
			return nil, fmt.Errorf("invalid quantity for product %s", it.ProductID)
		}
		items[i] = models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
			Image:     it.Image,
		}
	}

	subtotal := models.ComputeSubtotal(items)
	order := &models.Order{
		UserID:          req.UserID,
		Email:           req.Email,
		Items:           items,
		Subtotal:        subtotal,
		Shipping:        req.Shipping,
		Tax:             req.Tax,
		Discount:        req.Discount,
		Total:           models.ComputeTotal(subtotal, req.Shipping, req.Tax, req.Discount),
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		IdempotencyKey:  req.IdempotencyKey,
	}
	if err := models.ValidateTotals(order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_totals").Inc()
		return nil, err
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total", order.Total))

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.NewString(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Email:       order.Email,
		Total:       order.Total,
		Items:       order.Items,
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return order, nil
}

// GetOrder retrieves a single order, owner-scoped unless the actor is admin
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, orderID string) (*models.Order, error) {
	if actor.Admin {
		return s.store.GetOrderByID(ctx, orderID)
	}
	return s.store.GetUserOrder(ctx, orderID, actor.UserID)
}

// ListUserOrders returns a user's orders, newest first
func (s *OrderService) ListUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	return s.store.GetUserOrders(ctx, userID)
}

// ListAllOrders returns every order for admin views and the CSV export
func (s *OrderService) ListAllOrders(ctx context.Context, actor Actor) ([]models.Order, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("listing all orders: %w", store.ErrForbidden)
	}
	return s.store.ListOrders(ctx)
}

// UpdateOrderStatus moves an order along its lifecycle. The transition table
// rejects regressions and skips; terminal stamps (deliveredAt, cancelledAt)
// and the cancel reason are recorded as statuses land.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor Actor, orderID string, next models.OrderStatus, opts UpdateStatusOptions) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	order, err := s.GetOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := models.ValidateOrderStatusTransition(from, next); err != nil {
		util.OrderTransitionsRejected.WithLabelValues(string(from), string(next)).Inc()
		return nil, err
	}

	now := time.Now().UTC()
	order.Status = next
	switch next {
	case models.OrderStatusDelivered:
		order.DeliveredAt = &now
	case models.OrderStatusCancelled:
		order.CancelledAt = &now
		order.CancelReason = opts.CancelReason
	}

	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	util.OrderTransitionsTotal.WithLabelValues(string(next)).Inc()
	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(next)))

	s.invalidateStats(ctx, order.UserID)

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.NewString(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: now,
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Email:       order.Email,
		From:        from,
		To:          next,
		Reason:      opts.CancelReason,
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return order, nil
}

// UpdatePaymentStatus records a payment state change on an order
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, actor Actor, orderID string, next models.PaymentStatus) (*models.Order, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("updating payment status: %w", store.ErrForbidden)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := models.ValidatePaymentStatusTransition(order.PaymentStatus, next); err != nil {
		return nil, err
	}

	order.PaymentStatus = next
	if next == models.PaymentStatusPaid {
		now := time.Now().UTC()
		order.PaidAt = &now
	}

	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// AdvanceInventoryStatus moves the warehouse track forward one stage,
// recording the outbound linkage and the per-stage timestamp. Admin only.
func (s *OrderService) AdvanceInventoryStatus(ctx context.Context, actor Actor, orderID string, next models.InventoryStatus, outboundID string) (*models.Order, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("advancing inventory status: %w", store.ErrForbidden)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.InventoryStatus
	if from == "" {
		from = models.InventoryStatusPending
	}
	if err := models.ValidateInventoryStatusTransition(from, next); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order.InventoryStatus = next
	if outboundID != "" {
		order.OutboundID = outboundID
	}
	switch next {
	case models.InventoryStatusReserved:
		order.ReservedAt = &now
	case models.InventoryStatusPicked:
		order.PickedAt = &now
	case models.InventoryStatusPacked:
		order.PackedAt = &now
	case models.InventoryStatusShipped:
		order.ShippedAt = &now
	}

	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order inventory status advanced",
		zap.String("order_id", order.ID),
		zap.String("from", string(from)),
		zap.String("to", string(next)))
	return order, nil
}

func (s *OrderService) invalidateStats(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUserStats(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate stats cache",
			zap.String("user_id", userID), zap.Error(err))
	}
}
