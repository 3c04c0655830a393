package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer          UserRole = "customer"
	RoleAdmin             UserRole = "admin"
	RoleRestaurantPartner UserRole = "restaurant_partner"
	RoleDeliveryPartner   UserRole = "delivery_partner"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleRestaurantPartner, RoleDeliveryPartner:
		return true
	}
	return false
}

type User struct {
	ID        uint     `json:"id" gorm:"primaryKey"`
	FirstName string   `json:"first_name" gorm:"not null"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email" gorm:"uniqueIndex;not null"`
	Phone     string   `json:"phone" gorm:"uniqueIndex;not null"`
	Role      UserRole `json:"role" gorm:"not null;default:'customer'"`
	// Empty for externally-authenticated accounts; such users never log in
	// with a password.
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active" gorm:"not null;default:true"`
	IsVerified   bool      `json:"is_verified" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns the fields safe to embed in API responses.
func (u *User) Public() map[string]any {
	return map[string]any{
		"id":          u.ID,
		"email":       u.Email,
		"first_name":  u.FirstName,
		"last_name":   u.LastName,
		"phone":       u.Phone,
		"role":        u.Role,
		"is_active":   u.IsActive,
		"is_verified": u.IsVerified,
	}
}
