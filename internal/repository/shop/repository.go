package shop

import (
	"context"

	"vendorhub/internal/domain"
)

type CreateShopInput struct {
	Name               string
	OwnerEmail         string
	PlatformFeePercent float64
}

type Repository interface {
	Create(ctx context.Context, in CreateShopInput) (*domain.Shop, error)
	GetByID(ctx context.Context, id string) (*domain.Shop, error)
	List(ctx context.Context) ([]domain.Shop, error)
}
