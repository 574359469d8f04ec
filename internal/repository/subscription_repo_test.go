package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Requires a database with the schema applied. Set TEST_DATABASE_URL to run.
func TestSubscriptionUpsertReplacesRow(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer pool.Close()
	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM subscriptions WHERE id = 'sub_it_1'`)
	})

	repo := NewSubscriptionRepo(pool)
	quantity := int64(1)
	row := &model.Subscription{
		ID:                 "sub_it_1",
		UserID:             "user_it_1",
		Metadata:           map[string]string{"source": "integration"},
		Status:             model.SubscriptionStatusTrialing,
		PriceID:            "price_it_1",
		Quantity:           &quantity,
		CurrentPeriodStart: time.Now().UTC().Truncate(time.Second),
		Created:            time.Now().UTC().Truncate(time.Second),
	}
	if err := repo.Upsert(ctx, row); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	row.Status = model.SubscriptionStatusActive
	if err := repo.Upsert(ctx, row); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, err := repo.GetByUserID(ctx, "user_it_1")
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a subscription row")
	}
	if got.Status != model.SubscriptionStatusActive {
		t.Fatalf("expected the replayed status to win, got %q", got.Status)
	}
	if got.Metadata["source"] != "integration" {
		t.Fatalf("metadata did not round-trip: %+v", got.Metadata)
	}

	missing, err := repo.GetByUserID(ctx, "user_it_absent")
	if err != nil {
		t.Fatalf("GetByUserID for absent user failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for an absent user, got %+v", missing)
	}
}
