package model

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// VendorApplication moves PENDING -> APPROVED or PENDING -> REJECTED exactly once.
type VendorApplication struct {
	Base
	UserID          string            `gorm:"size:36;index;not null" json:"userId"`
	CompanyName     *string           `gorm:"size:255" json:"companyName,omitempty"`
	Description     string            `gorm:"type:text;not null" json:"description"`
	Status          ApplicationStatus `gorm:"size:16;index;not null;default:PENDING" json:"status"`
	ReviewedBy      *string           `gorm:"size:36" json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time        `json:"reviewedAt,omitempty"`
	RejectionReason *string           `gorm:"type:text" json:"rejectionReason,omitempty"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
