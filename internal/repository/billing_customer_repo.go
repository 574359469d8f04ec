package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateLink is returned when inserting a billing customer link that
// already exists for the user or the Stripe customer. Callers treat it as
// "someone else created the link concurrently" and re-read.
var ErrDuplicateLink = errors.New("billing customer link already exists")

// BillingCustomerRepository persists the user <-> Stripe customer mapping.
type BillingCustomerRepository interface {
	// GetByUserID returns the link for a user, or nil when none exists.
	GetByUserID(ctx context.Context, userID string) (*model.BillingCustomer, error)
	// GetByStripeCustomerID returns the link for a Stripe customer, or nil when none exists.
	GetByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*model.BillingCustomer, error)
	// Insert creates a new link. Returns ErrDuplicateLink on a unique-constraint conflict.
	Insert(ctx context.Context, link *model.BillingCustomer) error
}

type billingCustomerRepo struct {
	pool *pgxpool.Pool
}

// NewBillingCustomerRepo creates a new BillingCustomerRepository.
func NewBillingCustomerRepo(pool *pgxpool.Pool) BillingCustomerRepository {
	return &billingCustomerRepo{pool: pool}
}

func (r *billingCustomerRepo) GetByUserID(ctx context.Context, userID string) (*model.BillingCustomer, error) {
	const q = `SELECT user_id, stripe_customer_id FROM billing_customers WHERE user_id = $1`
	var bc model.BillingCustomer
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&bc.UserID, &bc.StripeCustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch billing customer for user %s: %w", userID, err)
	}
	return &bc, nil
}

func (r *billingCustomerRepo) GetByStripeCustomerID(ctx context.Context, stripeCustomerID string) (*model.BillingCustomer, error) {
	const q = `SELECT user_id, stripe_customer_id FROM billing_customers WHERE stripe_customer_id = $1`
	var bc model.BillingCustomer
	if err := r.pool.QueryRow(ctx, q, stripeCustomerID).Scan(&bc.UserID, &bc.StripeCustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch billing customer %s: %w", stripeCustomerID, err)
	}
	return &bc, nil
}

func (r *billingCustomerRepo) Insert(ctx context.Context, link *model.BillingCustomer) error {
	const q = `INSERT INTO billing_customers (user_id, stripe_customer_id) VALUES ($1, $2)`
	if _, err := r.pool.Exec(ctx, q, link.UserID, link.StripeCustomerID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateLink
		}
		return fmt.Errorf("insert billing customer for user %s: %w", link.UserID, err)
	}
	return nil
}
