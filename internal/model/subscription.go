package model

import "time"

// Subscription statuses as reported by Stripe.
const (
	SubscriptionStatusIncomplete        = "incomplete"
	SubscriptionStatusIncompleteExpired = "incomplete_expired"
	SubscriptionStatusTrialing          = "trialing"
	SubscriptionStatusActive            = "active"
	SubscriptionStatusPastDue           = "past_due"
	SubscriptionStatusCanceled          = "canceled"
	SubscriptionStatusUnpaid            = "unpaid"
	SubscriptionStatusPaused            = "paused"
)

// Subscription is the local snapshot of a Stripe subscription. It is always
// rebuilt from a fresh fetch of the canonical Stripe object and written as a
// full-row upsert keyed by ID, so redelivered or reordered webhook events
// converge on the same row.
type Subscription struct {
	ID                 string            `db:"id" json:"id"`
	UserID             string            `db:"user_id" json:"user_id"`
	Metadata           map[string]string `db:"metadata" json:"metadata"`
	Status             string            `db:"status" json:"status"`
	PriceID            string            `db:"price_id" json:"price_id"`
	Quantity           *int64            `db:"quantity" json:"quantity,omitempty"`
	CancelAtPeriodEnd  bool              `db:"cancel_at_period_end" json:"cancel_at_period_end"`
	CancelAt           *time.Time        `db:"cancel_at" json:"cancel_at,omitempty"`
	CanceledAt         *time.Time        `db:"canceled_at" json:"canceled_at,omitempty"`
	CurrentPeriodStart time.Time         `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd   *time.Time        `db:"current_period_end" json:"current_period_end,omitempty"`
	EndedAt            *time.Time        `db:"ended_at" json:"ended_at,omitempty"`
	TrialStart         *time.Time        `db:"trial_start" json:"trial_start,omitempty"`
	TrialEnd           *time.Time        `db:"trial_end" json:"trial_end,omitempty"`
	Created            time.Time         `db:"created" json:"created"`
}
