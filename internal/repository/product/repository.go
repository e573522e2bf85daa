package product

import (
	"context"

	"vendorhub/internal/domain"
)

type Repository interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListByShop(ctx context.Context, shopID string, activeOnly bool) ([]domain.Product, error)
	SetActive(ctx context.Context, id string, active bool) error
}
