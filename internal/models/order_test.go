package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeSubtotal(t *testing.T) {
	items := []OrderItem{
		{ProductID: "p1", Price: 250000, Quantity: 2},
		{ProductID: "p2", Price: 99000, Quantity: 1},
	}
	assert.Equal(t, int64(599000), ComputeSubtotal(items))
	assert.Equal(t, int64(0), ComputeSubtotal(nil))
}

func TestComputeTotal(t *testing.T) {
	// total = subtotal + shipping + tax - discount
	assert.Equal(t, int64(500000), ComputeTotal(500000, 0, 0, 0))
	assert.Equal(t, int64(530000), ComputeTotal(500000, 30000, 0, 0))
	assert.Equal(t, int64(515000), ComputeTotal(500000, 30000, 35000, 50000))
}

func TestValidateTotals(t *testing.T) {
	order := &Order{
		Items: []OrderItem{
			{ProductID: "p1", Price: 250000, Quantity: 2},
		},
		Subtotal: 500000,
		Shipping: 30000,
		Total:    530000,
	}
	assert.NoError(t, ValidateTotals(order))

	order.Total = 500000
	assert.Error(t, ValidateTotals(order))

	order.Total = 530000
	order.Subtotal = 400000
	assert.Error(t, ValidateTotals(order))
}

func TestValidateTotalsWithoutItems(t *testing.T) {
	// legacy imports carry totals but no line items; only the identity is checked
	order := &Order{Subtotal: 100000, Shipping: 20000, Discount: 10000, Total: 110000}
	assert.NoError(t, ValidateTotals(order))
}
