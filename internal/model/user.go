package model

import "time"

// User represents a user in the system
type User struct {
	UserID         string          `db:"user_id" json:"user_id"`
	Name           string          `db:"name" json:"name"`
	Email          string          `db:"email" json:"email"`
	AvatarURL      string          `db:"avatar_url" json:"avatar_url"`
	BillingAddress *BillingAddress `db:"billing_address" json:"billing_address,omitempty"`
	PaymentMethod  *PaymentCard    `db:"payment_method" json:"payment_method,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// BillingAddress is the billing address copied from the default payment method.
type BillingAddress struct {
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	State      string `json:"state,omitempty"`
}

// PaymentCard is the card summary stored on the user profile for display.
type PaymentCard struct {
	Brand    string `json:"brand,omitempty"`
	Last4    string `json:"last4,omitempty"`
	ExpMonth int64  `json:"exp_month,omitempty"`
	ExpYear  int64  `json:"exp_year,omitempty"`
}
