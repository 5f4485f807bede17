package models

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a status change is not allowed by the
// transition tables below.
var ErrInvalidTransition = errors.New("invalid status transition")

// OrderStatus is the customer-facing order lifecycle
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipping   OrderStatus = "shipping"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// PaymentStatus tracks the payment state recorded on an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// InventoryStatus is the warehouse fulfillment track, advanced independently
// of the customer-facing status.
type InventoryStatus string

const (
	InventoryStatusPending  InventoryStatus = "pending"
	InventoryStatusReserved InventoryStatus = "reserved"
	InventoryStatusPicked   InventoryStatus = "picked"
	InventoryStatusPacked   InventoryStatus = "packed"
	InventoryStatusShipped  InventoryStatus = "shipped"
)

// MovementStatus is the stock-movement approval lifecycle
type MovementStatus string

const (
	MovementStatusDraft     MovementStatus = "draft"
	MovementStatusPending   MovementStatus = "pending"
	MovementStatusApproved  MovementStatus = "approved"
	MovementStatusCompleted MovementStatus = "completed"
)

// ValidOrderTransitions defines the allowed order status progression.
// Flow: pending → confirmed → processing → shipping → delivered.
// cancelled is reachable from any pre-shipment state; refunded is the escape
// for delivered orders and for cancelled orders that were already paid.
var ValidOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipping, OrderStatusCancelled},
	OrderStatusShipping:   {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusRefunded},
	OrderStatusCancelled:  {OrderStatusRefunded},
	OrderStatusRefunded:   {},
}

// ValidPaymentTransitions defines the allowed payment status progression.
var ValidPaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:  {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusFailed:   {PaymentStatusPending},
	PaymentStatusPaid:     {PaymentStatusRefunded},
	PaymentStatusRefunded: {},
}

// ValidInventoryTransitions defines the warehouse track. The chain is strictly
// linear: reserved → picked → packed → shipped, no skips.
var ValidInventoryTransitions = map[InventoryStatus][]InventoryStatus{
	InventoryStatusPending:  {InventoryStatusReserved},
	InventoryStatusReserved: {InventoryStatusPicked},
	InventoryStatusPicked:   {InventoryStatusPacked},
	InventoryStatusPacked:   {InventoryStatusShipped},
	InventoryStatusShipped:  {},
}

// ValidMovementTransitions defines the stock-movement approval flow.
// Approve is accepted from both draft and pending: the admin screen offers
// direct approval on drafts.
var ValidMovementTransitions = map[MovementStatus][]MovementStatus{
	MovementStatusDraft:     {MovementStatusPending, MovementStatusApproved},
	MovementStatusPending:   {MovementStatusApproved},
	MovementStatusApproved:  {MovementStatusCompleted},
	MovementStatusCompleted: {},
}

func canTransition[S ~string](table map[S][]S, from, to S) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionOrderStatus reports whether from → to is a legal order move
func CanTransitionOrderStatus(from, to OrderStatus) bool {
	return canTransition(ValidOrderTransitions, from, to)
}

// CanTransitionPaymentStatus reports whether from → to is a legal payment move
func CanTransitionPaymentStatus(from, to PaymentStatus) bool {
	return canTransition(ValidPaymentTransitions, from, to)
}

// CanTransitionInventoryStatus reports whether from → to is a legal warehouse move
func CanTransitionInventoryStatus(from, to InventoryStatus) bool {
	return canTransition(ValidInventoryTransitions, from, to)
}

// CanTransitionMovementStatus reports whether from → to is a legal movement move
func CanTransitionMovementStatus(from, to MovementStatus) bool {
	return canTransition(ValidMovementTransitions, from, to)
}

// ValidateOrderStatusTransition returns ErrInvalidTransition if the move is not allowed
func ValidateOrderStatusTransition(from, to OrderStatus) error {
	if !CanTransitionOrderStatus(from, to) {
		return fmt.Errorf("%w: order %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// ValidatePaymentStatusTransition returns ErrInvalidTransition if the move is not allowed
func ValidatePaymentStatusTransition(from, to PaymentStatus) error {
	if !CanTransitionPaymentStatus(from, to) {
		return fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// ValidateInventoryStatusTransition returns ErrInvalidTransition if the move is not allowed
func ValidateInventoryStatusTransition(from, to InventoryStatus) error {
	if !CanTransitionInventoryStatus(from, to) {
		return fmt.Errorf("%w: inventory %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// ValidateMovementStatusTransition returns ErrInvalidTransition if the move is not allowed
func ValidateMovementStatusTransition(from, to MovementStatus) error {
	if !CanTransitionMovementStatus(from, to) {
		return fmt.Errorf("%w: movement %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// IsTerminalOrderStatus reports whether the order status has no outgoing moves
func IsTerminalOrderStatus(s OrderStatus) bool {
	return len(ValidOrderTransitions[s]) == 0
}

// IsTerminalMovementStatus reports whether the movement status has no outgoing moves
func IsTerminalMovementStatus(s MovementStatus) bool {
	return len(ValidMovementTransitions[s]) == 0
}
