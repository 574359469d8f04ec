package service

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
)

// CustomerService resolves the durable mapping between internal users and
// Stripe customers.
type CustomerService interface {
	// CreateOrRetrieveCustomer returns the user's Stripe customer id,
	// creating the Stripe customer and the local link on first use. Safe to
	// call concurrently for the same user.
	CreateOrRetrieveCustomer(ctx context.Context, userID, email string) (string, error)
	// UserIDByStripeCustomer translates an inbound customer reference back
	// to an internal user. Returns ErrUnknownCustomer when no link exists.
	UserIDByStripeCustomer(ctx context.Context, stripeCustomerID string) (string, error)
}

type customerService struct {
	repo      repository.BillingCustomerRepository
	stripeSvc StripeService
	logger    zerolog.Logger
}

// NewCustomerService creates a new CustomerService with a scoped logger.
func NewCustomerService(repo repository.BillingCustomerRepository, stripeSvc StripeService, logger zerolog.Logger) CustomerService {
	return &customerService{
		repo:      repo,
		stripeSvc: stripeSvc,
		logger:    logger.With().Str("service", "CustomerService").Logger(),
	}
}

func (s *customerService) CreateOrRetrieveCustomer(ctx context.Context, userID, email string) (string, error) {
	link, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if link != nil {
		return link.StripeCustomerID, nil
	}

	s.logger.Info().Str("user_id", userID).Msg("No billing customer link found, creating Stripe customer")
	cust, err := s.stripeSvc.CreateCustomer(ctx, email, userID)
	if err != nil {
		return "", err
	}

	err = s.repo.Insert(ctx, &model.BillingCustomer{UserID: userID, StripeCustomerID: cust.ID})
	if err == nil {
		s.logger.Info().Str("user_id", userID).Str("stripe_customer_id", cust.ID).Msg("Billing customer link created")
		return cust.ID, nil
	}
	if errors.Is(err, repository.ErrDuplicateLink) {
		// Lost the creation race; the winner's link is the durable one.
		existing, rerr := s.repo.GetByUserID(ctx, userID)
		if rerr != nil {
			return "", rerr
		}
		if existing == nil {
			return "", fmt.Errorf("billing customer link for user %s missing after insert conflict", userID)
		}
		s.logger.Warn().
			Str("user_id", userID).
			Str("stripe_customer_id", existing.StripeCustomerID).
			Str("orphaned_stripe_customer_id", cust.ID).
			Msg("Concurrent billing customer creation, keeping existing link")
		return existing.StripeCustomerID, nil
	}
	return "", err
}

func (s *customerService) UserIDByStripeCustomer(ctx context.Context, stripeCustomerID string) (string, error) {
	link, err := s.repo.GetByStripeCustomerID(ctx, stripeCustomerID)
	if err != nil {
		return "", err
	}
	if link == nil {
		s.logger.Error().Str("stripe_customer_id", stripeCustomerID).Msg("Stripe customer has no user mapping")
		return "", fmt.Errorf("%w: %s", ErrUnknownCustomer, stripeCustomerID)
	}
	return link.UserID, nil
}
