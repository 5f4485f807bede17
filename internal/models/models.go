package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Address is a shipping address, stored as a JSONB column in postgres.
type Address struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Line1    string `json:"address"`
	Ward     string `json:"ward,omitempty"`
	District string `json:"district,omitempty"`
	City     string `json:"city"`
}

func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for Address: %T", value)
	}
	return json.Unmarshal(bytes, a)
}

// Order represents a customer order
type Order struct {
	ID              string          `db:"id" json:"id"`
	OrderNumber     string          `db:"order_number" json:"orderNumber"`
	UserID          string          `db:"user_id" json:"userId"`
	Email           string          `db:"email" json:"email,omitempty"`
	Items           []OrderItem     `db:"-" json:"items"`
	Subtotal        int64           `db:"subtotal" json:"subtotal"`
	Shipping        int64           `db:"shipping" json:"shipping"`
	Tax             int64           `db:"tax" json:"tax"`
	Discount        int64           `db:"discount" json:"discount,omitempty"`
	Total           int64           `db:"total" json:"total"`
	Status          OrderStatus     `db:"status" json:"status"`
	PaymentMethod   string          `db:"payment_method" json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `db:"payment_status" json:"paymentStatus"`
	ShippingAddress Address         `db:"shipping_address" json:"shippingAddress"`
	InventoryStatus InventoryStatus `db:"inventory_status" json:"inventoryStatus,omitempty"`
	OutboundID      string          `db:"outbound_id" json:"outboundId,omitempty"`
	CancelReason    string          `db:"cancel_reason" json:"cancelReason,omitempty"`
	IdempotencyKey  string          `db:"idempotency_key" json:"idempotencyKey,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updatedAt"`
	PaidAt          *time.Time      `db:"paid_at" json:"paidAt,omitempty"`
	DeliveredAt     *time.Time      `db:"delivered_at" json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time      `db:"cancelled_at" json:"cancelledAt,omitempty"`
	ReservedAt      *time.Time      `db:"reserved_at" json:"reservedAt,omitempty"`
	PickedAt        *time.Time      `db:"picked_at" json:"pickedAt,omitempty"`
	PackedAt        *time.Time      `db:"packed_at" json:"packedAt,omitempty"`
	ShippedAt       *time.Time      `db:"shipped_at" json:"shippedAt,omitempty"`
}

// OrderItem represents a line item in an order
type OrderItem struct {
	ID        string `db:"id" json:"id,omitempty"`
	OrderID   string `db:"order_id" json:"-"`
	ProductID string `db:"product_id" json:"productId"`
	Name      string `db:"name" json:"name"`
	Price     int64  `db:"price" json:"price"`
	Quantity  int    `db:"quantity" json:"quantity"`
	Size      string `db:"size" json:"size,omitempty"`
	Color     string `db:"color" json:"color,omitempty"`
	Image     string `db:"image" json:"image,omitempty"`
}

// WishlistItem is a saved product for a user. The (UserID, ProductID) pair is
// unique; re-adding the same product replaces the stored entry.
type WishlistItem struct {
	UserID      string    `db:"user_id" json:"userId"`
	ProductID   string    `db:"product_id" json:"productId"`
	ProductName string    `db:"product_name" json:"productName"`
	Price       int64     `db:"price" json:"price"`
	Image       string    `db:"image" json:"image,omitempty"`
	AddedAt     time.Time `db:"added_at" json:"addedAt"`
}

// Product represents a catalog product with its stock counts
type Product struct {
	ID           string       `db:"id" json:"id"`
	SKU          string       `db:"sku" json:"sku"`
	Name         string       `db:"name" json:"name"`
	Price        int64        `db:"price" json:"price"`
	TrackingType TrackingType `db:"tracking_type" json:"trackingType"`
	Available    int          `db:"available" json:"available"`
	Reserved     int          `db:"reserved" json:"reserved"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

// UserStats is the per-user roll-up shown on the account page.
// TotalSpent counts delivered orders only; TotalPoints is TotalSpent/1000.
type UserStats struct {
	TotalOrders   int   `json:"totalOrders"`
	TotalSpent    int64 `json:"totalSpent"`
	TotalPoints   int64 `json:"totalPoints"`
	TotalWishlist int   `json:"totalWishlist"`
}

// OrdersData is the flat-file document layout inherited from the predecessor
// system: a single JSON object holding all orders and wishlist entries. The
// file driver persists it as-is and the importer reads it for migration.
type OrdersData struct {
	Orders   []Order        `json:"orders"`
	Wishlist []WishlistItem `json:"wishlist"`
}

// InventoryData is the sibling document for products and stock movements.
type InventoryData struct {
	Products  []Product       `json:"products"`
	Movements []StockMovement `json:"movements"`
}
