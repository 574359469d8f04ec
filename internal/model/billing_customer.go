package model

// BillingCustomer maps an internal user to their Stripe customer.
// One row per user, one user per Stripe customer; created lazily the first
// time a user needs billing and kept for the lifetime of the user.
type BillingCustomer struct {
	UserID           string `db:"user_id" json:"user_id"`
	StripeCustomerID string `db:"stripe_customer_id" json:"stripe_customer_id"`
}
