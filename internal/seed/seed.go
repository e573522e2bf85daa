// Package seed inserts demo data for manual testing.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	Key              string
	SKU              string
	Name             string
	Description      string
	PriceCents       int64
	MonthlyCents     *int64
	Currency         string
	RequiresShipping bool
}

// Apply inserts a demo shop with a physical, a digital and a subscription
// product, plus a North America shipping zone with two rates. It is
// idempotent: rerunning updates rather than duplicates.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	shopID, err := ensureShop(ctx, pool, "Trailhead Goods", "owner@trailhead.example.com", 0.15)
	if err != nil {
		return fmt.Errorf("ensure shop: %w", err)
	}

	monthly := int64(1500)
	products := []productSeed{
		{
			Key:              "tour-tee",
			SKU:              "SKU-TOUR-TEE",
			Name:             "Tour Tee",
			Description:      "Soft cotton tee",
			PriceCents:       2000,
			Currency:         "usd",
			RequiresShipping: true,
		},
		{
			Key:              "field-guide",
			SKU:              "SKU-FIELD-GUIDE",
			Name:             "Field Guide",
			Description:      "Digital trail guide, delivered by email",
			PriceCents:       900,
			Currency:         "usd",
			RequiresShipping: false,
		},
		{
			Key:              "coffee-club",
			SKU:              "SKU-COFFEE-CLUB",
			Name:             "Coffee Club",
			Description:      "Fresh beans, billed monthly",
			PriceCents:       1800,
			MonthlyCents:     &monthly,
			Currency:         "usd",
			RequiresShipping: true,
		},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, shopID, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}

	zoneID, err := ensureZone(ctx, pool, shopID, "North America", []string{"US", "CA"})
	if err != nil {
		return fmt.Errorf("ensure zone: %w", err)
	}
	if err := ensureRate(ctx, pool, zoneID, "Standard", "5-7 business days", 599); err != nil {
		return fmt.Errorf("ensure standard rate: %w", err)
	}
	if err := ensureRate(ctx, pool, zoneID, "Express", "1-2 business days", 1999); err != nil {
		return fmt.Errorf("ensure express rate: %w", err)
	}

	return nil
}

func ensureShop(ctx context.Context, pool *pgxpool.Pool, name, ownerEmail string, feePercent float64) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM shops WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	err = pool.QueryRow(ctx, `
INSERT INTO shops (name, owner_email, platform_fee_percent)
VALUES ($1, $2, $3)
RETURNING id::text
`, name, ownerEmail, feePercent).Scan(&id)
	return id, err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, shopID string, p productSeed) error {
	_, err := pool.Exec(ctx, `
INSERT INTO products (shop_id, key, sku, name, description, price_cents, monthly_price_cents, currency, requires_shipping)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (shop_id, key) DO UPDATE
SET sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    monthly_price_cents = EXCLUDED.monthly_price_cents,
    currency = EXCLUDED.currency,
    requires_shipping = EXCLUDED.requires_shipping
`, shopID, p.Key, p.SKU, p.Name, p.Description, p.PriceCents, p.MonthlyCents, p.Currency, p.RequiresShipping)
	return err
}

func ensureZone(ctx context.Context, pool *pgxpool.Pool, shopID, name string, countries []string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM shipping_zones WHERE shop_id = $1 AND name = $2`, shopID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}
	err = pool.QueryRow(ctx, `
INSERT INTO shipping_zones (shop_id, name, countries)
VALUES ($1, $2, $3)
RETURNING id::text
`, shopID, name, countries).Scan(&id)
	return id, err
}

func ensureRate(ctx context.Context, pool *pgxpool.Pool, zoneID, name, estimate string, priceCents int64) error {
	var id string
	err := pool.QueryRow(ctx, `SELECT id::text FROM shipping_rates WHERE zone_id = $1 AND name = $2`, zoneID, name).Scan(&id)
	if err == nil {
		_, err = pool.Exec(ctx, `UPDATE shipping_rates SET price_cents = $2, delivery_estimate = $3 WHERE id = $1`, id, priceCents, estimate)
		return err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	_, err = pool.Exec(ctx, `
INSERT INTO shipping_rates (zone_id, name, delivery_estimate, price_cents)
VALUES ($1, $2, $3, $4)
`, zoneID, name, estimate, priceCents)
	return err
}
