package model

import "strings"

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleVendor   Role = "VENDOR"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole accepts any casing and rejects values outside the closed set.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// Capability is what a route demands of the caller's role.
type Capability int

const (
	CapabilityShop Capability = iota
	CapabilitySell
	CapabilityAdminister
)

func (c Capability) String() string {
	switch c {
	case CapabilityShop:
		return "shop"
	case CapabilitySell:
		return "sell"
	case CapabilityAdminister:
		return "administer"
	}
	return "unknown"
}

// Can is the single place role checks are decided. Admins do not inherit
// vendor capabilities.
func (r Role) Can(c Capability) bool {
	switch c {
	case CapabilityShop:
		return r.Valid()
	case CapabilitySell:
		return r == RoleVendor
	case CapabilityAdminister:
		return r == RoleAdmin
	}
	return false
}

type User struct {
	Base
	ExternalID  string  `gorm:"size:128;uniqueIndex;not null" json:"externalId"` // identity provider id
	Email       string  `gorm:"size:255;index;not null" json:"email"`
	Name        string  `gorm:"size:255" json:"name"`
	CompanyName *string `gorm:"size:255" json:"companyName,omitempty"`
	Role        Role    `gorm:"size:16;index;not null;default:CUSTOMER" json:"role"`
}

// UserSummary is the public projection of a user joined onto other records.
type UserSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email,omitempty"`
	CompanyName *string `json:"companyName,omitempty"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, CompanyName: u.CompanyName}
}

// Identity is the caller as asserted by the identity provider, before it is
// matched to a local User.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
}
