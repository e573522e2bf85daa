package subscription

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

const subscriptionColumns = `
id::text, customer_id::text, product_id::text, shop_id::text,
billing_cycle, amount_cents, currency, status, current_period_end, created_at
`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	s, err := scanSubscription(r.pool.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Subscription, error) {
	return r.list(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE customer_id = $1 ORDER BY created_at DESC`,
		customerID)
}

func (r *postgresRepo) ListByShop(ctx context.Context, shopID string) ([]domain.Subscription, error) {
	return r.list(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE shop_id = $1 ORDER BY created_at DESC`,
		shopID)
}

func (r *postgresRepo) list(ctx context.Context, q, arg string) ([]domain.Subscription, error) {
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, from, to domain.SubscriptionStatus) (*domain.Subscription, error) {
	q := `
UPDATE subscriptions SET status = $1
WHERE id = $2 AND status = $3
RETURNING ` + subscriptionColumns
	s, err := scanSubscription(r.pool.QueryRow(ctx, q, to, id, from))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, gerr := r.GetByID(ctx, id); gerr != nil {
				return nil, gerr
			}
			return nil, domain.ErrConflict
		}
		r.logger.Error("subscription repo: update status", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s, nil
}

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	err := row.Scan(
		&s.ID, &s.CustomerID, &s.ProductID, &s.ShopID,
		&s.BillingCycle, &s.AmountCents, &s.Currency, &s.Status, &s.CurrentPeriodEnd, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
