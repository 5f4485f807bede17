package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdersDataRoundTrip(t *testing.T) {
	created := time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC)
	delivered := created.Add(72 * time.Hour)

	data := OrdersData{
		Orders: []Order{
			{
				ID:          "o1",
				OrderNumber: "ORD-20260815-AAAA1111",
				UserID:      "u1",
				Email:       "u1@example.com",
				Items: []OrderItem{
					{ID: "i1", ProductID: "p1", Name: "Áo thun", Price: 250000, Quantity: 2, Size: "L"},
				},
				Subtotal:        500000,
				Shipping:        30000,
				Total:           530000,
				Status:          OrderStatusDelivered,
				PaymentMethod:   "cod",
				PaymentStatus:   PaymentStatusPaid,
				ShippingAddress: Address{FullName: "Nguyễn Văn A", Phone: "0900000000", City: "Hà Nội"},
				InventoryStatus: InventoryStatusShipped,
				CreatedAt:       created,
				UpdatedAt:       delivered,
				DeliveredAt:     &delivered,
			},
		},
		Wishlist: []WishlistItem{
			{UserID: "u1", ProductID: "p9", ProductName: "Quần jean", Price: 450000, AddedAt: created},
		},
	}

	raw, err := json.Marshal(data)
	require.NoError(t, err)

	var decoded OrdersData
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, data, decoded)
}
