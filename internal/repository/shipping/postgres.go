package shipping

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

const zoneColumns = `id::text, shop_id::text, name, countries, created_at`
const rateColumns = `id::text, zone_id::text, name, description, price_cents, delivery_estimate, created_at`

func (r *postgresRepo) CreateZone(ctx context.Context, in CreateZoneInput) (*domain.ShippingZone, error) {
	q := `
INSERT INTO shipping_zones (shop_id, name, countries)
VALUES ($1, $2, $3)
RETURNING ` + zoneColumns
	z, err := scanZone(r.pool.QueryRow(ctx, q, in.ShopID, in.Name, in.Countries))
	if err != nil {
		r.logger.Error("shipping repo: create zone", zap.String("shop_id", in.ShopID), zap.Error(err))
		return nil, err
	}
	return z, nil
}

func (r *postgresRepo) GetZone(ctx context.Context, id string) (*domain.ShippingZone, error) {
	z, err := scanZone(r.pool.QueryRow(ctx, `SELECT `+zoneColumns+` FROM shipping_zones WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return z, nil
}

func (r *postgresRepo) ListZonesByShop(ctx context.Context, shopID string) ([]domain.ShippingZone, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+zoneColumns+` FROM shipping_zones WHERE shop_id = $1 ORDER BY created_at ASC`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ShippingZone
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *z)
	}
	return result, rows.Err()
}

func (r *postgresRepo) UpdateZone(ctx context.Context, id string, in UpdateZoneInput) (*domain.ShippingZone, error) {
	q := `
UPDATE shipping_zones SET name = $1, countries = $2
WHERE id = $3
RETURNING ` + zoneColumns
	z, err := scanZone(r.pool.QueryRow(ctx, q, in.Name, in.Countries, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return z, nil
}

func (r *postgresRepo) DeleteZone(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM shipping_zones WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) CreateRate(ctx context.Context, in CreateRateInput) (*domain.ShippingRate, error) {
	q := `
INSERT INTO shipping_rates (zone_id, name, description, price_cents, delivery_estimate)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + rateColumns
	rate, err := scanRate(r.pool.QueryRow(ctx, q, in.ZoneID, in.Name, in.Description, in.PriceCents, in.DeliveryEstimate))
	if err != nil {
		r.logger.Error("shipping repo: create rate", zap.String("zone_id", in.ZoneID), zap.Error(err))
		return nil, err
	}
	return rate, nil
}

func (r *postgresRepo) GetRate(ctx context.Context, id string) (*domain.ShippingRate, error) {
	rate, err := scanRate(r.pool.QueryRow(ctx, `SELECT `+rateColumns+` FROM shipping_rates WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rate, nil
}

func (r *postgresRepo) ListRatesByZone(ctx context.Context, zoneID string) ([]domain.ShippingRate, error) {
	return r.listRates(ctx,
		`SELECT `+rateColumns+` FROM shipping_rates WHERE zone_id = $1 ORDER BY price_cents ASC`, zoneID)
}

func (r *postgresRepo) ListRatesForCountry(ctx context.Context, shopID, country string) ([]domain.ShippingRate, error) {
	q := `
SELECT r.id::text, r.zone_id::text, r.name, r.description, r.price_cents, r.delivery_estimate, r.created_at
FROM shipping_rates r
JOIN shipping_zones z ON z.id = r.zone_id
WHERE z.shop_id = $1
  AND EXISTS (SELECT 1 FROM unnest(z.countries) c WHERE lower(trim(c)) = lower(trim($2)))
ORDER BY r.price_cents ASC
`
	return r.listRates(ctx, q, shopID, country)
}

func (r *postgresRepo) listRates(ctx context.Context, q string, args ...interface{}) ([]domain.ShippingRate, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ShippingRate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rate)
	}
	return result, rows.Err()
}

func (r *postgresRepo) UpdateRate(ctx context.Context, id string, in UpdateRateInput) (*domain.ShippingRate, error) {
	q := `
UPDATE shipping_rates SET name = $1, description = $2, price_cents = $3, delivery_estimate = $4
WHERE id = $5
RETURNING ` + rateColumns
	rate, err := scanRate(r.pool.QueryRow(ctx, q, in.Name, in.Description, in.PriceCents, in.DeliveryEstimate, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rate, nil
}

func (r *postgresRepo) DeleteRate(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM shipping_rates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanZone(row pgx.Row) (*domain.ShippingZone, error) {
	var z domain.ShippingZone
	if err := row.Scan(&z.ID, &z.ShopID, &z.Name, &z.Countries, &z.CreatedAt); err != nil {
		return nil, err
	}
	return &z, nil
}

func scanRate(row pgx.Row) (*domain.ShippingRate, error) {
	var rate domain.ShippingRate
	if err := row.Scan(&rate.ID, &rate.ZoneID, &rate.Name, &rate.Description, &rate.PriceCents, &rate.DeliveryEstimate, &rate.CreatedAt); err != nil {
		return nil, err
	}
	return &rate, nil
}
