package models

import "time"

// OrderStatus represents all possible states of a food delivery order
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

type PaymentMethod string

const (
	PaymentGateway        PaymentMethod = "gateway"
	PaymentWallet         PaymentMethod = "wallet"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Pricing is the money breakdown of an order. All fields are non-negative and
// TotalAmount = max(0, Subtotal + DeliveryFee + Taxes - CouponDiscount).
type Pricing struct {
	Subtotal       float64 `json:"subtotal" gorm:"not null"`
	DeliveryFee    float64 `json:"delivery_fee" gorm:"not null"`
	Taxes          float64 `json:"taxes" gorm:"not null"`
	CouponDiscount float64 `json:"coupon_discount" gorm:"not null;default:0"`
	TotalAmount    float64 `json:"total_amount" gorm:"not null"`
}

type Payment struct {
	Method            PaymentMethod `json:"method" gorm:"not null"`
	Status            PaymentStatus `json:"status" gorm:"not null;default:'pending'"`
	ExternalID        string        `json:"external_id"` // gateway order reference
	ExternalPaymentID string        `json:"external_payment_id"`
}

// Delivery is the address snapshot taken at placement time; later profile
// edits never change where an in-flight order is headed.
type Delivery struct {
	StreetAddress string  `json:"street_address" gorm:"not null"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	Pincode       string  `json:"pincode"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	EstimatedTime int     `json:"estimated_time_minutes"` // never below 5
	Instructions  string  `json:"instructions"`           // max 200 chars
}

type Order struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	OrderNumber string `json:"order_number" gorm:"uniqueIndex;not null"`

	CustomerID        uint        `json:"customer_id" gorm:"index;not null"`
	Customer          *User       `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	RestaurantID      uint        `json:"restaurant_id" gorm:"index;not null"`
	Restaurant        *Restaurant `json:"restaurant,omitempty" gorm:"foreignKey:RestaurantID"`
	DeliveryPartnerID *uint       `json:"delivery_partner_id" gorm:"index"`
	DeliveryPartner   *User       `json:"delivery_partner,omitempty" gorm:"foreignKey:DeliveryPartnerID"`

	Status OrderStatus `json:"status" gorm:"index;not null;default:'pending'"`

	Items    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	Pricing  Pricing     `json:"pricing" gorm:"embedded;embeddedPrefix:pricing_"`
	Payment  Payment     `json:"payment" gorm:"embedded;embeddedPrefix:payment_"`
	Delivery Delivery    `json:"delivery" gorm:"embedded;embeddedPrefix:delivery_"`

	Notes string `json:"notes"`

	// One timestamp per status reached, each set exactly once on first entry.
	PlacedAt    time.Time  `json:"placed_at" gorm:"not null"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	PreparingAt *time.Time `json:"preparing_at"`
	ReadyAt     *time.Time `json:"ready_at"`
	PickedUpAt  *time.Time `json:"picked_up_at"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CancelledAt *time.Time `json:"cancelled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID             uint                     `json:"id" gorm:"primaryKey"`
	OrderID        uint                     `json:"order_id" gorm:"index;not null"`
	MenuItemID     uint                     `json:"menu_item_id" gorm:"not null"`
	Name           string                   `json:"name"` // snapshot at order time
	Quantity       int                      `json:"quantity" gorm:"not null"`
	Price          float64                  `json:"price" gorm:"not null"` // unit price snapshot
	Customizations []OrderItemCustomization `json:"customizations,omitempty" gorm:"foreignKey:OrderItemID"`
}

type OrderItemCustomization struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	OrderItemID uint    `json:"order_item_id" gorm:"index;not null"`
	Name        string  `json:"name" gorm:"not null"`
	Option      string  `json:"option"`
	Price       float64 `json:"price" gorm:"not null"`
}
