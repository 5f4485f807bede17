package models

import "fmt"

// ComputeSubtotal sums price × quantity over the line items
func ComputeSubtotal(items []OrderItem) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += item.Price * int64(item.Quantity)
	}
	return subtotal
}

// ComputeTotal derives the grand total from its components
func ComputeTotal(subtotal, shipping, tax, discount int64) int64 {
	return subtotal + shipping + tax - discount
}

// ValidateTotals rejects an order whose stored totals drifted from its
// components: subtotal must match the line items and
// total = subtotal + shipping + tax − discount must hold.
func ValidateTotals(o *Order) error {
	if len(o.Items) > 0 {
		if got := ComputeSubtotal(o.Items); got != o.Subtotal {
			return fmt.Errorf("subtotal %d does not match line items (want %d)", o.Subtotal, got)
		}
	}
	if want := ComputeTotal(o.Subtotal, o.Shipping, o.Tax, o.Discount); want != o.Total {
		return fmt.Errorf("total %d inconsistent with components (want %d)", o.Total, want)
	}
	return nil
}
