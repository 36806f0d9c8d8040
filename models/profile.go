package models

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
)

// Profile carries the marketplace-facing identity of a user. Role is fixed
// at sign-up; there is no customer->provider transition.
type Profile struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"uniqueIndex"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	AvatarURL   string     `json:"avatar_url"`
	Facilities  []Facility `json:"facilities,omitempty" gorm:"foreignKey:ProviderID"`
	Bookings    []Booking  `json:"bookings,omitempty" gorm:"foreignKey:CustomerID"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NormalizeRole falls back to customer for anything that is not exactly
// "provider" or "customer".
func NormalizeRole(role string) string {
	if role != RoleProvider && role != RoleCustomer {
		return RoleCustomer
	}
	return role
}
