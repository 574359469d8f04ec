package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriptionRepository persists subscription snapshots.
type SubscriptionRepository interface {
	// Upsert replaces the whole row keyed by subscription id. Concurrent
	// writers converge because the row is never patched field-by-field.
	Upsert(ctx context.Context, s *model.Subscription) error
	// GetByUserID returns the user's most recent subscription, or nil when none exists.
	GetByUserID(ctx context.Context, userID string) (*model.Subscription, error)
}

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepo creates a new SubscriptionRepository.
func NewSubscriptionRepo(pool *pgxpool.Pool) SubscriptionRepository {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) Upsert(ctx context.Context, s *model.Subscription) error {
	metadata, err := json.Marshal(s.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata for subscription %s: %w", s.ID, err)
	}
	const q = `
        INSERT INTO subscriptions (
            id, user_id, metadata, status, price_id, quantity,
            cancel_at_period_end, cancel_at, canceled_at,
            current_period_start, current_period_end, ended_at,
            trial_start, trial_end, created
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        ON CONFLICT (id) DO UPDATE
        SET user_id = EXCLUDED.user_id,
            metadata = EXCLUDED.metadata,
            status = EXCLUDED.status,
            price_id = EXCLUDED.price_id,
            quantity = EXCLUDED.quantity,
            cancel_at_period_end = EXCLUDED.cancel_at_period_end,
            cancel_at = EXCLUDED.cancel_at,
            canceled_at = EXCLUDED.canceled_at,
            current_period_start = EXCLUDED.current_period_start,
            current_period_end = EXCLUDED.current_period_end,
            ended_at = EXCLUDED.ended_at,
            trial_start = EXCLUDED.trial_start,
            trial_end = EXCLUDED.trial_end,
            created = EXCLUDED.created;
    `
	if _, err := r.pool.Exec(ctx, q,
		s.ID, s.UserID, metadata, s.Status, s.PriceID, s.Quantity,
		s.CancelAtPeriodEnd, s.CancelAt, s.CanceledAt,
		s.CurrentPeriodStart, s.CurrentPeriodEnd, s.EndedAt,
		s.TrialStart, s.TrialEnd, s.Created,
	); err != nil {
		return fmt.Errorf("upsert subscription %s: %w", s.ID, err)
	}
	return nil
}

func (r *subscriptionRepo) GetByUserID(ctx context.Context, userID string) (*model.Subscription, error) {
	const q = `
        SELECT id, user_id, metadata, status, price_id, quantity,
               cancel_at_period_end, cancel_at, canceled_at,
               current_period_start, current_period_end, ended_at,
               trial_start, trial_end, created
        FROM subscriptions
        WHERE user_id = $1
        ORDER BY created DESC
        LIMIT 1
    `
	var s model.Subscription
	var rawMetadata []byte
	err := r.pool.QueryRow(ctx, q, userID).Scan(
		&s.ID, &s.UserID, &rawMetadata, &s.Status, &s.PriceID, &s.Quantity,
		&s.CancelAtPeriodEnd, &s.CancelAt, &s.CanceledAt,
		&s.CurrentPeriodStart, &s.CurrentPeriodEnd, &s.EndedAt,
		&s.TrialStart, &s.TrialEnd, &s.Created,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch subscription for user %s: %w", userID, err)
	}
	if len(rawMetadata) > 0 {
		if err := json.Unmarshal(rawMetadata, &s.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for subscription %s: %w", s.ID, err)
		}
	}
	return &s, nil
}
