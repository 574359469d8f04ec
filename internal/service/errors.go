package service

import "errors"

var (
	// ErrUnknownCustomer is returned when a webhook references a Stripe
	// customer with no local user mapping. Usually an ordering problem:
	// the customer-creation write has not landed yet, so the delivery
	// should be retried, not dropped.
	ErrUnknownCustomer = errors.New("no user mapping for stripe customer")

	// ErrUnhandledEvent means an event type passed classification but no
	// dispatch branch handles it. That is a bug; the delivery must fail so
	// provider retries succeed once the dispatcher is fixed.
	ErrUnhandledEvent = errors.New("no handler for webhook event type")
)
