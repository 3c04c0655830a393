package orders

import (
	"reflect"

	"quickbites-api/models"
)

// Cart aggregates a customer's pending selection before placement. A cart
// holds items from a single restaurant at a time: adding an item from a
// different restaurant clears it first. That is a business rule, not an
// accident.
type Cart struct {
	RestaurantID   uint
	Items          []models.OrderItem
	DeliveryFee    float64
	CouponCode     string
	CouponDiscount float64
	TaxRate        float64
}

func NewCart(taxRate float64) *Cart {
	return &Cart{TaxRate: taxRate}
}

// AddItem puts an item in the cart. An identical item (same menu item, same
// customizations) merges by quantity instead of duplicating the line.
func (c *Cart) AddItem(restaurantID uint, item models.OrderItem) {
	if c.RestaurantID != 0 && c.RestaurantID != restaurantID {
		c.Items = nil
		c.CouponCode = ""
		c.CouponDiscount = 0
	}
	c.RestaurantID = restaurantID

	for i := range c.Items {
		if c.Items[i].MenuItemID == item.MenuItemID &&
			sameCustomizations(c.Items[i].Customizations, item.Customizations) {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// RemoveItem drops every line for the given menu item.
func (c *Cart) RemoveItem(menuItemID uint) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.MenuItemID != menuItemID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	if len(c.Items) == 0 {
		c.RestaurantID = 0
	}
}

// UpdateQuantity sets the quantity for a menu item; zero or below removes it.
func (c *Cart) UpdateQuantity(menuItemID uint, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(menuItemID)
		return
	}
	for i := range c.Items {
		if c.Items[i].MenuItemID == menuItemID {
			c.Items[i].Quantity = quantity
			return
		}
	}
}

func (c *Cart) ApplyCoupon(code string, discount float64) {
	c.CouponCode = code
	c.CouponDiscount = discount
}

func (c *Cart) RemoveCoupon() {
	c.CouponCode = ""
	c.CouponDiscount = 0
}

// Totals computes the current money breakdown of the cart.
func (c *Cart) Totals() Totals {
	rate := c.TaxRate
	if rate == 0 {
		rate = DefaultTaxRate
	}
	return ComputeTotals(c.Items, c.DeliveryFee, c.CouponDiscount, rate)
}

func sameCustomizations(a, b []models.OrderItemCustomization) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
