package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

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

const sessionColumns = `
id::text, shop_id::text, product_id::text, quantity, billing_cycle, current_step,
email, name, phone, shipping_address, selected_shipping_rate_id,
subtotal_cents, platform_fee_cents, shipping_cost_cents, total_cents, currency,
payment_method, provider_session_id, payment_status, customer_note,
expires_at, created_at, updated_at
`

func (r *postgresRepo) Create(ctx context.Context, in CreateSessionInput) (*domain.CheckoutSession, error) {
	const q = `
INSERT INTO checkout_sessions (
    shop_id, product_id, quantity, billing_cycle,
    subtotal_cents, platform_fee_cents, total_cents, currency, expires_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + sessionColumns
	row := r.pool.QueryRow(ctx, q,
		in.ShopID, in.ProductID, in.Quantity, in.BillingCycle,
		in.SubtotalCents, in.PlatformFeeCents, in.TotalCents, in.Currency, in.ExpiresAt,
	)
	s, err := scanSession(row)
	if err != nil {
		r.logger.Error("checkout repo: create", zap.String("product_id", in.ProductID), zap.Error(err))
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM checkout_sessions WHERE id = $1`
	s, err := scanSession(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) GetByProviderSessionID(ctx context.Context, providerSessionID string) (*domain.CheckoutSession, error) {
	q := `SELECT ` + sessionColumns + ` FROM checkout_sessions WHERE provider_session_id = $1`
	s, err := scanSession(r.pool.QueryRow(ctx, q, providerSessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) UpdateInformation(ctx context.Context, in UpdateInformationInput) (*domain.CheckoutSession, error) {
	addrJSON, err := json.Marshal(in.Address)
	if err != nil {
		return nil, err
	}
	q := `
UPDATE checkout_sessions SET
    email = $1, name = $2, phone = $3, shipping_address = $4, customer_note = $5,
    subtotal_cents = $6, platform_fee_cents = $7, shipping_cost_cents = $8, total_cents = $9,
    current_step = $10, updated_at = now()
WHERE id = $11 AND current_step = $12 AND payment_status = 'pending'
RETURNING ` + sessionColumns
	row := r.pool.QueryRow(ctx, q,
		in.Email, in.Name, in.Phone, addrJSON, in.Note,
		in.Totals.SubtotalCents, in.Totals.PlatformFeeCents, in.Totals.ShippingCostCents, in.Totals.TotalCents,
		in.ToStep, in.SessionID, in.FromStep,
	)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.casMiss(ctx, in.SessionID)
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) UpdateShipping(ctx context.Context, in UpdateShippingInput) (*domain.CheckoutSession, error) {
	q := `
UPDATE checkout_sessions SET
    selected_shipping_rate_id = $1,
    subtotal_cents = $2, platform_fee_cents = $3, shipping_cost_cents = $4, total_cents = $5,
    current_step = $6, updated_at = now()
WHERE id = $7 AND current_step = $8 AND payment_status = 'pending'
RETURNING ` + sessionColumns
	row := r.pool.QueryRow(ctx, q,
		in.RateID,
		in.Totals.SubtotalCents, in.Totals.PlatformFeeCents, in.Totals.ShippingCostCents, in.Totals.TotalCents,
		in.ToStep, in.SessionID, in.FromStep,
	)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.casMiss(ctx, in.SessionID)
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) SetPayment(ctx context.Context, in SetPaymentInput) (*domain.CheckoutSession, error) {
	q := `
UPDATE checkout_sessions SET
    payment_method = $1, provider_session_id = $2, updated_at = now()
WHERE id = $3 AND current_step = $4 AND payment_status = 'pending'
RETURNING ` + sessionColumns
	row := r.pool.QueryRow(ctx, q, in.PaymentMethod, in.ProviderSessionID, in.SessionID, in.FromStep)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.casMiss(ctx, in.SessionID)
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) FinalizePayment(ctx context.Context, in FinalizePaymentInput) (*domain.Order, bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	q := `SELECT ` + sessionColumns + ` FROM checkout_sessions WHERE id = $1 FOR UPDATE`
	session, err := scanSession(tx.QueryRow(ctx, q, in.SessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, err
	}

	if session.PaymentStatus == domain.PaymentPaid {
		order, err := scanOrder(tx.QueryRow(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE checkout_session_id = $1`, session.ID))
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, false, err
		}
		return order, false, nil
	}

	if _, err := tx.Exec(ctx, `
UPDATE checkout_sessions
SET payment_status = 'paid', current_step = $1, updated_at = now()
WHERE id = $2
`, domain.StepConfirmation, session.ID); err != nil {
		return nil, false, err
	}

	var customerID string
	if err := tx.QueryRow(ctx, `
INSERT INTO customers (email, name, phone)
VALUES (lower($1), $2, $3)
ON CONFLICT (email) DO UPDATE SET
    name = COALESCE(NULLIF(EXCLUDED.name, ''), customers.name),
    phone = COALESCE(NULLIF(EXCLUDED.phone, ''), customers.phone)
RETURNING id::text
`, session.Email, session.Name, session.Phone).Scan(&customerID); err != nil {
		return nil, false, err
	}

	var addrJSON []byte
	if session.ShippingAddress != nil {
		if addrJSON, err = json.Marshal(session.ShippingAddress); err != nil {
			return nil, false, err
		}
	}

	order, err := scanOrder(tx.QueryRow(ctx, `
INSERT INTO orders (
    order_number, shop_id, product_id, customer_id, checkout_session_id,
    email, name, phone, shipping_address, quantity, billing_cycle,
    subtotal_cents, platform_fee_cents, shipping_cost_cents, total_cents,
    currency, platform_fee_percent, provider_session_id, customer_note
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
)
RETURNING `+orderColumns,
		in.OrderNumber, session.ShopID, session.ProductID, customerID, session.ID,
		session.Email, session.Name, session.Phone, addrJSON, session.Quantity, session.BillingCycle,
		session.SubtotalCents, session.PlatformFeeCents, session.ShippingCostCents, session.TotalCents,
		session.Currency, in.PlatformFeePct, session.ProviderSessionID, session.CustomerNote,
	))
	if err != nil {
		return nil, false, err
	}

	if in.Subscription != nil {
		if _, err := tx.Exec(ctx, `
INSERT INTO subscriptions (customer_id, product_id, shop_id, billing_cycle, amount_cents, currency, status, current_period_end)
VALUES ($1, $2, $3, $4, $5, $6, 'active', $7)
ON CONFLICT (customer_id, product_id) WHERE status <> 'canceled' DO UPDATE SET
    amount_cents = EXCLUDED.amount_cents,
    status = 'active',
    current_period_end = EXCLUDED.current_period_end
`, customerID, session.ProductID, session.ShopID, session.BillingCycle,
			in.Subscription.AmountCents, session.Currency, in.Subscription.CurrentPeriodEnd); err != nil {
			return nil, false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return order, true, nil
}

func (r *postgresRepo) MarkPaymentFailed(ctx context.Context, providerSessionID string) (*domain.CheckoutSession, error) {
	q := `
UPDATE checkout_sessions
SET payment_status = 'failed', updated_at = now()
WHERE provider_session_id = $1 AND payment_status = 'pending'
RETURNING ` + sessionColumns
	s, err := scanSession(r.pool.QueryRow(ctx, q, providerSessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either unknown or already paid; let the caller decide from a read.
			return r.GetByProviderSessionID(ctx, providerSessionID)
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `
DELETE FROM checkout_sessions
WHERE payment_status <> 'paid' AND expires_at < $1
`, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// casMiss distinguishes a missing session from a step that moved underneath
// the caller.
func (r *postgresRepo) casMiss(ctx context.Context, sessionID string) error {
	if _, err := r.GetByID(ctx, sessionID); err != nil {
		return err
	}
	return domain.ErrConflict
}

func scanSession(row pgx.Row) (*domain.CheckoutSession, error) {
	var (
		s        domain.CheckoutSession
		addrJSON []byte
		rateID   *string
		psid     *string
	)
	err := row.Scan(
		&s.ID, &s.ShopID, &s.ProductID, &s.Quantity, &s.BillingCycle, &s.CurrentStep,
		&s.Email, &s.Name, &s.Phone, &addrJSON, &rateID,
		&s.SubtotalCents, &s.PlatformFeeCents, &s.ShippingCostCents, &s.TotalCents, &s.Currency,
		&s.PaymentMethod, &psid, &s.PaymentStatus, &s.CustomerNote,
		&s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(addrJSON) > 0 {
		var addr domain.Address
		if err := json.Unmarshal(addrJSON, &addr); err != nil {
			return nil, err
		}
		s.ShippingAddress = &addr
	}
	s.SelectedShippingRateID = rateID
	if psid != nil {
		s.ProviderSessionID = *psid
	}
	return &s, nil
}

const orderColumns = `
id::text, order_number, shop_id::text, product_id::text, customer_id::text, checkout_session_id::text,
email, name, phone, shipping_address, quantity, billing_cycle,
subtotal_cents, platform_fee_cents, shipping_cost_cents, total_cents, currency, platform_fee_percent,
provider_session_id, payment_status, fulfillment_status, tracking_number, carrier, estimated_delivery,
customer_note, created_at, updated_at
`

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
