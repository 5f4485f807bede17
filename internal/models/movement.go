package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MovementDirection distinguishes inbound receipts (stock entering the
// warehouse) from outbound ones (stock leaving).
type MovementDirection string

const (
	MovementInbound  MovementDirection = "inbound"
	MovementOutbound MovementDirection = "outbound"
)

// TrackingType selects how movement items are traced
type TrackingType string

const (
	TrackingNone   TrackingType = "none"
	TrackingBatch  TrackingType = "batch"
	TrackingSerial TrackingType = "serial"
)

// StringList stores a string slice as a JSONB column
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
	return json.Unmarshal(bytes, l)
}

// MovementEvent is one entry in a movement's audit trail
type MovementEvent struct {
	Action string    `json:"action"`
	By     string    `json:"by"`
	At     time.Time `json:"at"`
	Note   string    `json:"note,omitempty"`
}

// MovementHistory stores the audit trail as a JSONB column
type MovementHistory []MovementEvent

func (h MovementHistory) Value() (driver.Value, error) {
	if h == nil {
		return json.Marshal([]MovementEvent{})
	}
	return json.Marshal(h)
}

func (h *MovementHistory) Scan(value interface{}) error {
	if value == nil {
		*h = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for MovementHistory: %T", value)
	}
	return json.Unmarshal(bytes, h)
}

// StockMovement is a warehouse receipt (inbound or outbound). Only approved
// movements affect stock counts; Version guards concurrent transitions.
type StockMovement struct {
	ID             string            `db:"id" json:"id"`
	Code           string            `db:"code" json:"code"`
	Direction      MovementDirection `db:"direction" json:"direction"`
	Status         MovementStatus    `db:"status" json:"status"`
	Warehouse      string            `db:"warehouse" json:"warehouse,omitempty"`
	Supplier       string            `db:"supplier" json:"supplier,omitempty"`
	Items          []MovementItem    `db:"-" json:"items"`
	Subtotal       int64             `db:"subtotal" json:"subtotal"`
	VATAmount      int64             `db:"vat_amount" json:"vatAmount"`
	DiscountAmount int64             `db:"discount_amount" json:"discountAmount"`
	FinalTotal     int64             `db:"final_total" json:"finalTotal"`
	PaidAmount     int64             `db:"paid_amount" json:"paidAmount"`
	DebtAmount     int64             `db:"debt_amount" json:"debtAmount"`
	Note           string            `db:"note" json:"note,omitempty"`
	History        MovementHistory   `db:"history" json:"history"`
	Version        int               `db:"version" json:"version"`
	CreatedBy      string            `db:"created_by" json:"createdBy"`
	ApprovedBy     string            `db:"approved_by" json:"approvedBy,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updatedAt"`
	SubmittedAt    *time.Time        `db:"submitted_at" json:"submittedAt,omitempty"`
	ApprovedAt     *time.Time        `db:"approved_at" json:"approvedAt,omitempty"`
	CompletedAt    *time.Time        `db:"completed_at" json:"completedAt,omitempty"`
}

// MovementItem is one product line on a movement. Batch fields apply when
// TrackingType is batch, Serials when it is serial.
type MovementItem struct {
	ID              string       `db:"id" json:"id,omitempty"`
	MovementID      string       `db:"movement_id" json:"-"`
	ProductID       string       `db:"product_id" json:"productId"`
	ProductName     string       `db:"product_name" json:"productName"`
	Quantity        int          `db:"quantity" json:"quantity"`
	UnitPrice       int64        `db:"unit_price" json:"unitPrice"`
	TrackingType    TrackingType `db:"tracking_type" json:"trackingType"`
	BatchNumber     string       `db:"batch_number" json:"batchNumber,omitempty"`
	ManufactureDate *time.Time   `db:"manufacture_date" json:"manufactureDate,omitempty"`
	ExpiryDate      *time.Time   `db:"expiry_date" json:"expiryDate,omitempty"`
	Serials         StringList   `db:"serials" json:"serials,omitempty"`
}

// ValidateMovement checks line items and the financial identity
// finalTotal = subtotal + vat − discount, debt = finalTotal − paid.
func ValidateMovement(m *StockMovement) error {
	if m.Direction != MovementInbound && m.Direction != MovementOutbound {
		return fmt.Errorf("unknown movement direction %q", m.Direction)
	}
	if len(m.Items) == 0 {
		return fmt.Errorf("movement has no items")
	}
	var subtotal int64
	for i, item := range m.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive", i)
		}
		switch item.TrackingType {
		case TrackingBatch:
			if item.BatchNumber == "" {
				return fmt.Errorf("item %d: batch tracking requires a batch number", i)
			}
			if item.ManufactureDate != nil && item.ExpiryDate != nil &&
				!item.ExpiryDate.After(*item.ManufactureDate) {
				return fmt.Errorf("item %d: expiry date must be after manufacture date", i)
			}
		case TrackingSerial:
			if len(item.Serials) != item.Quantity {
				return fmt.Errorf("item %d: %d serials for quantity %d", i, len(item.Serials), item.Quantity)
			}
		case TrackingNone, "":
		default:
			return fmt.Errorf("item %d: unknown tracking type %q", i, item.TrackingType)
		}
		subtotal += item.UnitPrice * int64(item.Quantity)
	}
	if m.Subtotal != subtotal {
		return fmt.Errorf("subtotal %d does not match line items (want %d)", m.Subtotal, subtotal)
	}
	if want := m.Subtotal + m.VATAmount - m.DiscountAmount; m.FinalTotal != want {
		return fmt.Errorf("final total %d inconsistent with components (want %d)", m.FinalTotal, want)
	}
	if m.DebtAmount != m.FinalTotal-m.PaidAmount {
		return fmt.Errorf("debt %d inconsistent with final total %d and paid %d", m.DebtAmount, m.FinalTotal, m.PaidAmount)
	}
	return nil
}

// StockDelta is the signed effect one movement item has on a product's
// available count once the movement is approved.
func (m *StockMovement) StockDelta(item MovementItem) int {
	if m.Direction == MovementOutbound {
		return -item.Quantity
	}
	return item.Quantity
}
