package orders

import (
	"math"

	"quickbites-api/models"
)

// DefaultTaxRate applies when the caller has no configured rate.
const DefaultTaxRate = 0.05

// Totals is the derived money breakdown for a set of line items.
type Totals struct {
	Subtotal float64
	Taxes    float64
	Total    float64
}

// ComputeTotals derives order totals from line items:
//
//	subtotal = Σ (unit price × quantity + Σ customization prices)
//	taxes    = round(subtotal × taxRate)
//	total    = max(0, subtotal + deliveryFee + taxes − couponDiscount)
//
// The clamp at zero means an oversized coupon can never produce a negative
// total.
func ComputeTotals(items []models.OrderItem, deliveryFee, couponDiscount, taxRate float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
		for _, custom := range item.Customizations {
			subtotal += custom.Price
		}
	}

	taxes := math.Round(subtotal * taxRate)
	total := math.Max(0, subtotal+deliveryFee+taxes-couponDiscount)

	return Totals{Subtotal: subtotal, Taxes: taxes, Total: total}
}
