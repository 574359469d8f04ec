package service

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v82"
)

// WebhookEvent is the closed set of webhook deliveries this service acts on.
// Each variant carries the payload type fixed for its event family, so
// dispatch cannot accidentally cast the wrong object.
type WebhookEvent interface {
	webhookEvent()
}

// ProductEvent covers product.created and product.updated.
type ProductEvent struct {
	Product *stripe.Product
}

// PriceEvent covers price.created and price.updated.
type PriceEvent struct {
	Price *stripe.Price
}

// SubscriptionEvent covers the customer.subscription lifecycle events.
// Creation is true only for customer.subscription.created.
type SubscriptionEvent struct {
	Subscription *stripe.Subscription
	Creation     bool
}

// CheckoutEvent covers checkout.session.completed.
type CheckoutEvent struct {
	Session *stripe.CheckoutSession
}

func (ProductEvent) webhookEvent()      {}
func (PriceEvent) webhookEvent()        {}
func (SubscriptionEvent) webhookEvent() {}
func (CheckoutEvent) webhookEvent()     {}

// ClassifyEvent maps a verified Stripe event onto the closed event set.
// Event types outside the set return (nil, nil): the delivery is acknowledged
// and dropped so the provider does not retry it.
func ClassifyEvent(event stripe.Event) (WebhookEvent, error) {
	switch event.Type {
	case "product.created", "product.updated":
		var p stripe.Product
		if err := json.Unmarshal(event.Data.Raw, &p); err != nil {
			return nil, fmt.Errorf("parse %s payload: %w", event.Type, err)
		}
		return ProductEvent{Product: &p}, nil

	case "price.created", "price.updated":
		var p stripe.Price
		if err := json.Unmarshal(event.Data.Raw, &p); err != nil {
			return nil, fmt.Errorf("parse %s payload: %w", event.Type, err)
		}
		return PriceEvent{Price: &p}, nil

	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("parse %s payload: %w", event.Type, err)
		}
		return SubscriptionEvent{
			Subscription: &sub,
			Creation:     event.Type == "customer.subscription.created",
		}, nil

	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return nil, fmt.Errorf("parse %s payload: %w", event.Type, err)
		}
		return CheckoutEvent{Session: &cs}, nil

	default:
		return nil, nil
	}
}
