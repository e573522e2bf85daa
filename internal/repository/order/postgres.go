package order

import (
	"context"
	"encoding/json"
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

const orderColumns = `
id::text, order_number, shop_id::text, product_id::text, customer_id::text, checkout_session_id::text,
email, name, phone, shipping_address, quantity, billing_cycle,
subtotal_cents, platform_fee_cents, shipping_cost_cents, total_cents, currency, platform_fee_percent,
provider_session_id, payment_status, fulfillment_status, tracking_number, carrier, estimated_delivery,
customer_note, created_at, updated_at
`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *postgresRepo) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber)
}

func (r *postgresRepo) GetByProviderSessionID(ctx context.Context, providerSessionID string) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE provider_session_id = $1`, providerSessionID)
}

func (r *postgresRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	return r.getOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE checkout_session_id = $1`, sessionID)
}

func (r *postgresRepo) getOne(ctx context.Context, q, arg string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByShop(ctx context.Context, shopID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE shop_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	return result, rows.Err()
}

func (r *postgresRepo) UpdateFulfillment(ctx context.Context, in FulfillmentUpdate) (*domain.Order, error) {
	q := `
UPDATE orders SET
    fulfillment_status = $1,
    tracking_number = COALESCE(NULLIF($2, ''), tracking_number),
    carrier = COALESCE(NULLIF($3, ''), carrier),
    estimated_delivery = COALESCE($4, estimated_delivery),
    updated_at = now()
WHERE id = $5 AND fulfillment_status = $6
RETURNING ` + orderColumns
	o, err := scanOrder(r.pool.QueryRow(ctx, q,
		in.ToStatus, in.TrackingNumber, in.Carrier, in.EstimatedDelivery, in.OrderID, in.FromStatus,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, gerr := r.GetByID(ctx, in.OrderID); gerr != nil {
				return nil, gerr
			}
			return nil, domain.ErrConflict
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) SetPaymentStatus(ctx context.Context, providerSessionID string, status domain.OrderPaymentStatus) (*domain.Order, error) {
	q := `
UPDATE orders SET payment_status = $1, updated_at = now()
WHERE provider_session_id = $2
RETURNING ` + orderColumns
	o, err := scanOrder(r.pool.QueryRow(ctx, q, status, providerSessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("order repo: set payment status", zap.String("provider_session_id", providerSessionID), zap.Error(err))
		return nil, err
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		addrJSON []byte
		psid     *string
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.ShopID, &o.ProductID, &o.CustomerID, &o.CheckoutSessionID,
		&o.Email, &o.Name, &o.Phone, &addrJSON, &o.Quantity, &o.BillingCycle,
		&o.SubtotalCents, &o.PlatformFeeCents, &o.ShippingCostCents, &o.TotalCents, &o.Currency, &o.PlatformFeePct,
		&psid, &o.PaymentStatus, &o.FulfillmentStatus, &o.TrackingNumber, &o.Carrier, &o.EstimatedDelivery,
		&o.CustomerNote, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(addrJSON) > 0 {
		var addr domain.Address
		if err := json.Unmarshal(addrJSON, &addr); err != nil {
			return nil, err
		}
		o.ShippingAddress = &addr
	}
	if psid != nil {
		o.ProviderSessionID = *psid
	}
	return &o, nil
}
