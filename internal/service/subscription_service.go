package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"app/internal/model"
	"app/internal/pubsub"
	"app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
)

// SubscriptionService reconciles local subscription state with Stripe.
type SubscriptionService interface {
	// Reconcile re-fetches the canonical subscription from Stripe and
	// replaces the local row. Event payloads only tell it that something
	// changed; the fetch decides what the row looks like, which makes
	// redelivered and reordered events converge on current truth.
	Reconcile(ctx context.Context, subscriptionID, stripeCustomerID string, isCreation bool) error
	// GetSubscription returns the user's most recent subscription, or nil.
	GetSubscription(ctx context.Context, userID string) (*model.Subscription, error)
}

// SubscriptionChange is published after each successful reconcile so the
// notification engine can refresh the user's entitlements.
type SubscriptionChange struct {
	UserID         string `json:"user_id"`
	SubscriptionID string `json:"subscription_id"`
	Status         string `json:"status"`
	PriceID        string `json:"price_id"`
}

type subscriptionService struct {
	repo        repository.SubscriptionRepository
	userRepo    repository.UserRepository
	customerSvc CustomerService
	stripeSvc   StripeService
	publisher   pubsub.Publisher
	topic       string
	logger      zerolog.Logger
}

// NewSubscriptionService creates a new SubscriptionService with a scoped logger.
// publisher may be nil when change fan-out is not configured.
func NewSubscriptionService(
	repo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	customerSvc CustomerService,
	stripeSvc StripeService,
	publisher pubsub.Publisher,
	topic string,
	logger zerolog.Logger,
) SubscriptionService {
	return &subscriptionService{
		repo:        repo,
		userRepo:    userRepo,
		customerSvc: customerSvc,
		stripeSvc:   stripeSvc,
		publisher:   publisher,
		topic:       topic,
		logger:      logger.With().Str("service", "SubscriptionService").Logger(),
	}
}

func (s *subscriptionService) Reconcile(ctx context.Context, subscriptionID, stripeCustomerID string, isCreation bool) error {
	userID, err := s.customerSvc.UserIDByStripeCustomer(ctx, stripeCustomerID)
	if err != nil {
		return err
	}

	sub, err := s.stripeSvc.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 || sub.Items.Data[0].Price == nil {
		return fmt.Errorf("subscription %s has no priced items", subscriptionID)
	}
	item := sub.Items.Data[0]

	quantity := item.Quantity
	row := &model.Subscription{
		ID:                 sub.ID,
		UserID:             userID,
		Metadata:           sub.Metadata,
		Status:             string(sub.Status),
		PriceID:            item.Price.ID,
		Quantity:           &quantity,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CancelAt:           unixPtr(sub.CancelAt),
		CanceledAt:         unixPtr(sub.CanceledAt),
		CurrentPeriodStart: time.Unix(sub.StartDate, 0).UTC(),
		EndedAt:            unixPtr(sub.EndedAt),
		TrialStart:         unixPtr(sub.TrialStart),
		TrialEnd:           unixPtr(sub.TrialEnd),
		Created:            time.Unix(sub.Created, 0).UTC(),
	}
	if sub.CancelAtPeriodEnd && sub.CancelAt != 0 {
		row.CurrentPeriodEnd = unixPtr(sub.CancelAt)
	}

	if err := s.repo.Upsert(ctx, row); err != nil {
		s.logger.Error().Err(err).Str("subscription_id", sub.ID).Str("user_id", userID).Msg("Failed to upsert subscription")
		return err
	}
	s.logger.Info().
		Str("subscription_id", sub.ID).
		Str("user_id", userID).
		Str("status", row.Status).
		Msg("Subscription reconciled")

	s.publishChange(ctx, row)

	if isCreation && sub.DefaultPaymentMethod != nil {
		if err := s.copyBillingDetails(ctx, userID, sub.DefaultPaymentMethod); err != nil {
			return err
		}
	}
	return nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch subscription")
		return nil, err
	}
	return sub, nil
}

// copyBillingDetails pushes the payment method's billing details onto the
// Stripe customer and the local user profile. Partial details are common for
// non-card or test-mode payment methods and skip the copy entirely.
func (s *subscriptionService) copyBillingDetails(ctx context.Context, userID string, pm *stripe.PaymentMethod) error {
	bd := pm.BillingDetails
	if bd == nil || bd.Name == "" || bd.Phone == "" || bd.Address == nil {
		s.logger.Warn().
			Str("user_id", userID).
			Str("payment_method_id", pm.ID).
			Msg("Incomplete billing details on payment method, skipping copy")
		return nil
	}
	if pm.Customer == nil {
		s.logger.Warn().Str("payment_method_id", pm.ID).Msg("Payment method has no customer, skipping billing details copy")
		return nil
	}

	if err := s.stripeSvc.UpdateCustomerBilling(ctx, pm.Customer.ID, bd); err != nil {
		return err
	}

	address := &model.BillingAddress{
		City:       bd.Address.City,
		Country:    bd.Address.Country,
		Line1:      bd.Address.Line1,
		Line2:      bd.Address.Line2,
		PostalCode: bd.Address.PostalCode,
		State:      bd.Address.State,
	}
	var card *model.PaymentCard
	if pm.Type == stripe.PaymentMethodTypeCard && pm.Card != nil {
		card = &model.PaymentCard{
			Brand:    string(pm.Card.Brand),
			Last4:    pm.Card.Last4,
			ExpMonth: pm.Card.ExpMonth,
			ExpYear:  pm.Card.ExpYear,
		}
	}
	if err := s.userRepo.UpdateBillingDetails(ctx, userID, address, card); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to store billing details on user profile")
		return err
	}
	s.logger.Info().Str("user_id", userID).Msg("Billing details copied to customer and user profile")
	return nil
}

// publishChange is best-effort; a fan-out failure never fails the webhook.
func (s *subscriptionService) publishChange(ctx context.Context, row *model.Subscription) {
	if s.publisher == nil || s.topic == "" {
		return
	}
	payload, err := json.Marshal(SubscriptionChange{
		UserID:         row.UserID,
		SubscriptionID: row.ID,
		Status:         row.Status,
		PriceID:        row.PriceID,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to marshal subscription change event")
		return
	}
	if _, err := s.publisher.Publish(ctx, s.topic, payload); err != nil {
		s.logger.Warn().Err(err).Str("subscription_id", row.ID).Msg("Failed to publish subscription change event")
	}
}

func unixPtr(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
