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

type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// UpdateBillingDetails stores the billing address and card summary copied
	// from the default payment method on first subscription creation.
	UpdateBillingDetails(ctx context.Context, userID string, address *model.BillingAddress, card *model.PaymentCard) error
}

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	var rawAddress, rawCard []byte
	const q = `SELECT user_id, email, name, avatar_url, billing_address, payment_method, created_at, updated_at
               FROM user_profiles WHERE user_id = $1`
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.UserID, &u.Email, &u.Name, &u.AvatarURL, &rawAddress, &rawCard, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch user %s: %w", id, err)
	}
	if len(rawAddress) > 0 {
		if err := json.Unmarshal(rawAddress, &u.BillingAddress); err != nil {
			return nil, fmt.Errorf("unmarshal billing_address for user %s: %w", id, err)
		}
	}
	if len(rawCard) > 0 {
		if err := json.Unmarshal(rawCard, &u.PaymentMethod); err != nil {
			return nil, fmt.Errorf("unmarshal payment_method for user %s: %w", id, err)
		}
	}
	return &u, nil
}

func (r *userRepo) UpdateBillingDetails(ctx context.Context, userID string, address *model.BillingAddress, card *model.PaymentCard) error {
	rawAddress, err := json.Marshal(address)
	if err != nil {
		return fmt.Errorf("marshal billing address for user %s: %w", userID, err)
	}
	var rawCard []byte
	if card != nil {
		if rawCard, err = json.Marshal(card); err != nil {
			return fmt.Errorf("marshal payment method for user %s: %w", userID, err)
		}
	}
	const q = `UPDATE user_profiles
               SET billing_address = $2,
                   payment_method = COALESCE($3, payment_method),
                   updated_at = NOW()
               WHERE user_id = $1`
	if _, err := r.pool.Exec(ctx, q, userID, rawAddress, rawCard); err != nil {
		return fmt.Errorf("update billing details for user %s: %w", userID, err)
	}
	return nil
}
