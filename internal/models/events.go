package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeMovementApproved   = "MOVEMENT_APPROVED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order is placed at checkout
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	UserID      string      `json:"user_id"`
	Email       string      `json:"email,omitempty"`
	Total       int64       `json:"total"`
	Items       []OrderItem `json:"items"`
}

// OrderStatusChangedEvent published on every order status transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	UserID      string      `json:"user_id"`
	Email       string      `json:"email,omitempty"`
	From        OrderStatus `json:"from"`
	To          OrderStatus `json:"to"`
	Reason      string      `json:"reason,omitempty"`
}

// MovementApprovedEvent published when a stock movement is approved and its
// stock deltas have been applied
type MovementApprovedEvent struct {
	BaseEvent
	MovementID string            `json:"movement_id"`
	Code       string            `json:"code"`
	Direction  MovementDirection `json:"direction"`
	ApprovedBy string            `json:"approved_by"`
}
