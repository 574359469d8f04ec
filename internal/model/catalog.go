package model

// DefaultMaxNotificationLimit is used when a product carries no parseable
// max_notification_limit in its metadata.
const DefaultMaxNotificationLimit = 5

// Product is a local snapshot of a Stripe product. Rows are only ever
// replaced whole; deactivation is Active=false, never deletion.
type Product struct {
	ID                   string            `db:"id" json:"id"`
	Active               bool              `db:"active" json:"active"`
	Name                 string            `db:"name" json:"name"`
	Description          *string           `db:"description" json:"description,omitempty"`
	Image                *string           `db:"image" json:"image,omitempty"`
	Metadata             map[string]string `db:"metadata" json:"metadata"`
	MaxNotificationLimit int               `db:"max_notification_limit" json:"max_notification_limit"`
}

// Price is a local snapshot of a Stripe price. ProductID references Product
// by id only; an expanded or missing product reference is stored as "".
type Price struct {
	ID              string            `db:"id" json:"id"`
	ProductID       string            `db:"product_id" json:"product_id"`
	Active          bool              `db:"active" json:"active"`
	Currency        string            `db:"currency" json:"currency"`
	Description     *string           `db:"description" json:"description,omitempty"`
	Type            string            `db:"type" json:"type"`
	UnitAmount      *int64            `db:"unit_amount" json:"unit_amount,omitempty"`
	Interval        *string           `db:"interval" json:"interval,omitempty"`
	IntervalCount   *int64            `db:"interval_count" json:"interval_count,omitempty"`
	TrialPeriodDays *int64            `db:"trial_period_days" json:"trial_period_days,omitempty"`
	Metadata        map[string]string `db:"metadata" json:"metadata"`
}
