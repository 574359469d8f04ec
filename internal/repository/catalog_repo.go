package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"app/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository persists product and price snapshots. Both writes are
// full-row upserts keyed by id, so webhook redelivery is idempotent.
type CatalogRepository interface {
	UpsertProduct(ctx context.Context, p *model.Product) error
	UpsertPrice(ctx context.Context, p *model.Price) error
}

type catalogRepo struct {
	pool *pgxpool.Pool
}

// NewCatalogRepo creates a new CatalogRepository.
func NewCatalogRepo(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepo{pool: pool}
}

func (r *catalogRepo) UpsertProduct(ctx context.Context, p *model.Product) error {
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata for product %s: %w", p.ID, err)
	}
	const q = `
        INSERT INTO products (id, active, name, description, image, metadata, max_notification_limit)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO UPDATE
        SET active = EXCLUDED.active,
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            image = EXCLUDED.image,
            metadata = EXCLUDED.metadata,
            max_notification_limit = EXCLUDED.max_notification_limit;
    `
	if _, err := r.pool.Exec(ctx, q, p.ID, p.Active, p.Name, p.Description, p.Image, metadata, p.MaxNotificationLimit); err != nil {
		return fmt.Errorf("upsert product %s: %w", p.ID, err)
	}
	return nil
}

func (r *catalogRepo) UpsertPrice(ctx context.Context, p *model.Price) error {
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata for price %s: %w", p.ID, err)
	}
	const q = `
        INSERT INTO prices (id, product_id, active, currency, description, type, unit_amount, interval, interval_count, trial_period_days, metadata)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (id) DO UPDATE
        SET product_id = EXCLUDED.product_id,
            active = EXCLUDED.active,
            currency = EXCLUDED.currency,
            description = EXCLUDED.description,
            type = EXCLUDED.type,
            unit_amount = EXCLUDED.unit_amount,
            interval = EXCLUDED.interval,
            interval_count = EXCLUDED.interval_count,
            trial_period_days = EXCLUDED.trial_period_days,
            metadata = EXCLUDED.metadata;
    `
	if _, err := r.pool.Exec(ctx, q,
		p.ID, p.ProductID, p.Active, p.Currency, p.Description, p.Type,
		p.UnitAmount, p.Interval, p.IntervalCount, p.TrialPeriodDays, metadata,
	); err != nil {
		return fmt.Errorf("upsert price %s: %w", p.ID, err)
	}
	return nil
}
