package product

import (
	"context"
	"errors"

	"vendorhub/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `
id::text, shop_id::text, key, sku, name, COALESCE(description, ''),
price_cents, weekly_price_cents, monthly_price_cents, yearly_price_cents,
currency, requires_shipping, active, attributes, created_at
`

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (
    id, shop_id, key, sku, name, description,
    price_cents, weekly_price_cents, monthly_price_cents, yearly_price_cents,
    currency, requires_shipping, active, attributes
) VALUES (
    COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, NULLIF($6, ''),
    $7, $8, $9, $10, $11, $12, $13, COALESCE($14, '{}'::jsonb)
)
ON CONFLICT (shop_id, key) DO UPDATE SET
    sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    weekly_price_cents = EXCLUDED.weekly_price_cents,
    monthly_price_cents = EXCLUDED.monthly_price_cents,
    yearly_price_cents = EXCLUDED.yearly_price_cents,
    currency = EXCLUDED.currency,
    requires_shipping = EXCLUDED.requires_shipping,
    active = EXCLUDED.active,
    attributes = EXCLUDED.attributes
RETURNING id::text, created_at
`
	res := p
	err := r.pool.QueryRow(ctx, q,
		p.ID,
		p.ShopID,
		p.Key,
		p.SKU,
		p.Name,
		p.Description,
		p.PriceCents,
		p.WeeklyPriceCents,
		p.MonthlyPriceCents,
		p.YearlyPriceCents,
		p.Currency,
		p.RequiresShipping,
		p.Active,
		p.Attributes,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("product repo: upsert", zap.String("key", p.Key), zap.Error(err))
		return nil, err
	}
	return &res, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.ShopID, &p.Key, &p.SKU, &p.Name, &p.Description,
		&p.PriceCents, &p.WeeklyPriceCents, &p.MonthlyPriceCents, &p.YearlyPriceCents,
		&p.Currency, &p.RequiresShipping, &p.Active, &p.Attributes, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("product repo: get", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) ListByShop(ctx context.Context, shopID string, activeOnly bool) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE shop_id = $1`
	if activeOnly {
		q += ` AND active`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.ShopID, &p.Key, &p.SKU, &p.Name, &p.Description,
			&p.PriceCents, &p.WeeklyPriceCents, &p.MonthlyPriceCents, &p.YearlyPriceCents,
			&p.Currency, &p.RequiresShipping, &p.Active, &p.Attributes, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE products SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
