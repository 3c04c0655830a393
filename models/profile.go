package models

import "time"

// CustomerProfile is owned 1:1 by a User with role customer.
type CustomerProfile struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	UserID        uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Addresses     []Address `json:"addresses,omitempty" gorm:"foreignKey:ProfileID"`
	VegOnly       bool      `json:"veg_only" gorm:"default:false"`
	WalletBalance float64   `json:"wallet_balance" gorm:"not null;default:0"`
	LoyaltyPoints int       `json:"loyalty_points" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Address struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ProfileID     uint      `json:"profile_id" gorm:"not null"`
	Label         string    `json:"label"` // home, work, other
	StreetAddress string    `json:"street_address" gorm:"not null"`
	Landmark      string    `json:"landmark"`
	City          string    `json:"city" gorm:"not null"`
	State         string    `json:"state" gorm:"not null"`
	Pincode       string    `json:"pincode" gorm:"not null"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	IsDefault     bool      `json:"is_default" gorm:"default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NormalizeDefaultAddress keeps at most one default address, preferring the
// one at keepIdx. Callers run this before every persist of the address list.
func NormalizeDefaultAddress(addresses []Address, keepIdx int) {
	for i := range addresses {
		addresses[i].IsDefault = i == keepIdx
	}
}

// EnsureSingleDefault demotes every default after the first. Used when no
// particular address was chosen, only the invariant matters.
func EnsureSingleDefault(addresses []Address) {
	seen := false
	for i := range addresses {
		if addresses[i].IsDefault {
			if seen {
				addresses[i].IsDefault = false
			}
			seen = true
		}
	}
}
