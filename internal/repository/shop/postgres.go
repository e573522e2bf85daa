package shop

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

func (r *postgresRepo) Create(ctx context.Context, in CreateShopInput) (*domain.Shop, error) {
	const q = `
INSERT INTO shops (name, owner_email, platform_fee_percent)
VALUES ($1, $2, $3)
RETURNING id::text, name, owner_email, platform_fee_percent, created_at
`
	var s domain.Shop
	err := r.pool.QueryRow(ctx, q, in.Name, in.OwnerEmail, in.PlatformFeePercent).Scan(
		&s.ID, &s.Name, &s.OwnerEmail, &s.PlatformFeePercent, &s.CreatedAt,
	)
	if err != nil {
		r.logger.Error("shop repo: create", zap.String("name", in.Name), zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	const q = `
SELECT id::text, name, owner_email, platform_fee_percent, created_at
FROM shops
WHERE id = $1
`
	var s domain.Shop
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.Name, &s.OwnerEmail, &s.PlatformFeePercent, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("shop repo: get", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Shop, error) {
	const q = `
SELECT id::text, name, owner_email, platform_fee_percent, created_at
FROM shops
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Shop
	for rows.Next() {
		var s domain.Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.OwnerEmail, &s.PlatformFeePercent, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
