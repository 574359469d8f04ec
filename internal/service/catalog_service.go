package service

import (
	"context"
	"strconv"

	"app/internal/model"
	"app/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
)

// CatalogService keeps local product and price snapshots in sync with the
// catalog objects Stripe reports via webhooks.
type CatalogService interface {
	UpsertProduct(ctx context.Context, product *stripe.Product) error
	UpsertPrice(ctx context.Context, price *stripe.Price) error
}

type catalogService struct {
	repo   repository.CatalogRepository
	logger zerolog.Logger
}

// NewCatalogService creates a new CatalogService with a scoped logger.
func NewCatalogService(repo repository.CatalogRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		repo:   repo,
		logger: logger.With().Str("service", "CatalogService").Logger(),
	}
}

func (s *catalogService) UpsertProduct(ctx context.Context, product *stripe.Product) error {
	limit := model.DefaultMaxNotificationLimit
	if raw, ok := product.Metadata["max_notification_limit"]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		} else {
			s.logger.Warn().
				Str("product_id", product.ID).
				Str("max_notification_limit", raw).
				Msgf("Non-numeric max_notification_limit in product metadata, defaulting to %d", model.DefaultMaxNotificationLimit)
		}
	}

	row := &model.Product{
		ID:                   product.ID,
		Active:               product.Active,
		Name:                 product.Name,
		Metadata:             product.Metadata,
		MaxNotificationLimit: limit,
	}
	if product.Description != "" {
		row.Description = &product.Description
	}
	if len(product.Images) > 0 {
		row.Image = &product.Images[0]
	}

	if err := s.repo.UpsertProduct(ctx, row); err != nil {
		s.logger.Error().Err(err).Str("product_id", product.ID).Msg("Failed to upsert product")
		return err
	}
	s.logger.Info().Str("product_id", product.ID).Bool("active", product.Active).Msg("Product upserted")
	return nil
}

func (s *catalogService) UpsertPrice(ctx context.Context, price *stripe.Price) error {
	row := &model.Price{
		ID:       price.ID,
		Active:   price.Active,
		Currency: string(price.Currency),
		Type:     string(price.Type),
		Metadata: price.Metadata,
	}
	// The product reference may arrive expanded or absent; only a plain id
	// reference is stored.
	if price.Product != nil {
		row.ProductID = price.Product.ID
	}
	if price.Nickname != "" {
		row.Description = &price.Nickname
	}
	amount := price.UnitAmount
	row.UnitAmount = &amount
	if price.Recurring != nil {
		interval := string(price.Recurring.Interval)
		count := price.Recurring.IntervalCount
		row.Interval = &interval
		row.IntervalCount = &count
		if price.Recurring.TrialPeriodDays != 0 {
			trial := price.Recurring.TrialPeriodDays
			row.TrialPeriodDays = &trial
		}
	}

	if err := s.repo.UpsertPrice(ctx, row); err != nil {
		s.logger.Error().Err(err).Str("price_id", price.ID).Msg("Failed to upsert price")
		return err
	}
	s.logger.Info().Str("price_id", price.ID).Str("product_id", row.ProductID).Msg("Price upserted")
	return nil
}
