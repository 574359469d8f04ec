package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"app/internal/config"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeService is the outbound collaborator for the Stripe API. Webhook
// handlers never trust event payloads for state; they go through
// GetSubscription to read canonical truth.
type StripeService interface {
	// GetSubscription fetches the canonical subscription with the default
	// payment method expanded.
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
	CreateCustomer(ctx context.Context, email, userID string) (*stripe.Customer, error)
	UpdateCustomerBilling(ctx context.Context, customerID string, billing *stripe.PaymentMethodBillingDetails) error
	CreateCheckoutSession(ctx context.Context, customerID, priceID string) (string, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
}

type stripeService struct {
	api    *client.API
	cfg    *config.Config
	logger zerolog.Logger
}

// NewStripeService builds a Stripe client with the configured retry count and
// request timeout and returns a service with a scoped logger.
func NewStripeService(cfg *config.Config, logger zerolog.Logger) StripeService {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(int64(cfg.StripeMaxRetries)),
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.StripeTimeoutSec) * time.Second,
		},
	})
	api := client.New(cfg.StripeSecretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
	lg := logger.With().Str("service", "StripeService").Logger()
	return &stripeService{api: api, cfg: cfg, logger: lg}
}

func (s *stripeService) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{Params: stripe.Params{Context: ctx}}
	params.AddExpand("default_payment_method")
	sub, err := s.api.Subscriptions.Get(id, params)
	if err != nil {
		s.logger.Error().Err(err).Str("subscription_id", id).Msg("Failed to fetch subscription from Stripe")
		return nil, fmt.Errorf("fetch stripe subscription %s: %w", id, err)
	}
	return sub, nil
}

func (s *stripeService) CreateCustomer(ctx context.Context, email, userID string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Params:   stripe.Params{Context: ctx},
		Metadata: map[string]string{"user_id": userID},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	cust, err := s.api.Customers.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create Stripe customer")
		return nil, fmt.Errorf("create stripe customer: %w", err)
	}
	return cust, nil
}

func (s *stripeService) UpdateCustomerBilling(ctx context.Context, customerID string, billing *stripe.PaymentMethodBillingDetails) error {
	params := &stripe.CustomerParams{
		Params: stripe.Params{Context: ctx},
		Name:   stripe.String(billing.Name),
		Phone:  stripe.String(billing.Phone),
	}
	if billing.Address != nil {
		params.Address = &stripe.AddressParams{
			City:       optString(billing.Address.City),
			Country:    optString(billing.Address.Country),
			Line1:      optString(billing.Address.Line1),
			Line2:      optString(billing.Address.Line2),
			PostalCode: optString(billing.Address.PostalCode),
			State:      optString(billing.Address.State),
		}
	}
	if _, err := s.api.Customers.Update(customerID, params); err != nil {
		s.logger.Error().Err(err).Str("stripe_customer_id", customerID).Msg("Failed to update Stripe customer billing details")
		return fmt.Errorf("update stripe customer %s: %w", customerID, err)
	}
	return nil
}

func (s *stripeService) CreateCheckoutSession(ctx context.Context, customerID, priceID string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(s.cfg.SiteURL + "/account?status=success"),
		CancelURL:  stripe.String(s.cfg.SiteURL + "/account?status=cancel"),
	}
	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("price_id", priceID).Msg("Failed to create Stripe checkout session")
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (s *stripeService) CreatePortalSession(ctx context.Context, customerID string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Params:    stripe.Params{Context: ctx},
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.cfg.SiteURL + "/account"),
	}
	sess, err := s.api.BillingPortalSessions.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("stripe_customer_id", customerID).Msg("Failed to create Stripe billing portal session")
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return sess.URL, nil
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return stripe.String(v)
}
