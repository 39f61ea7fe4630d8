package model

import "time"

// WebhookEvent records identity-provider deliveries already applied.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// IdentityUserData is the user resource carried by identity webhooks.
type IdentityUserData struct {
	ID                    string         `json:"id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	Username              string         `json:"username"`
	Deleted               bool           `json:"deleted"`
}

type IdentityWebhookEvent struct {
	Type   string           `json:"type"`
	Object string           `json:"object"`
	Data   IdentityUserData `json:"data"`
}
