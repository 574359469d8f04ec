package dto

// SubscriptionCheckoutRequest starts a checkout for a catalog price.
type SubscriptionCheckoutRequest struct {
	PriceID string `json:"price_id" validate:"required"`
}

// CategoryDTO is one selected deal category.
type CategoryDTO struct {
	Slug  string `json:"slug" validate:"required"`
	Level int    `json:"level" validate:"gte=0"`
}

// NotificationLimitRequest asks for the expected daily deal volume of a
// category selection.
type NotificationLimitRequest struct {
	Categories []CategoryDTO `json:"categories" validate:"required,min=1,dive"`
}
