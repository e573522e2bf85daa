package customer

import (
	"context"
	"errors"
	"strings"

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

func (r *postgresRepo) UpsertByEmail(ctx context.Context, email, name, phone string) (*domain.Customer, error) {
	const q = `
INSERT INTO customers (email, name, phone)
VALUES ($1, $2, $3)
ON CONFLICT (email) DO UPDATE SET
    name = COALESCE(NULLIF(EXCLUDED.name, ''), customers.name),
    phone = COALESCE(NULLIF(EXCLUDED.phone, ''), customers.phone)
RETURNING id::text, email, name, phone, created_at
`
	var c domain.Customer
	err := r.pool.QueryRow(ctx, q, strings.ToLower(strings.TrimSpace(email)), name, phone).Scan(
		&c.ID, &c.Email, &c.Name, &c.Phone, &c.CreatedAt,
	)
	if err != nil {
		r.logger.Error("customer repo: upsert", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.get(ctx, `SELECT id::text, email, name, phone, created_at FROM customers WHERE id = $1`, id)
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.get(ctx, `SELECT id::text, email, name, phone, created_at FROM customers WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
}

func (r *postgresRepo) get(ctx context.Context, q, arg string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.pool.QueryRow(ctx, q, arg).Scan(&c.ID, &c.Email, &c.Name, &c.Phone, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
