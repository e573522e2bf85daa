package shipping

import (
	"context"

	"vendorhub/internal/domain"
)

type CreateZoneInput struct {
	ShopID    string
	Name      string
	Countries []string
}

type UpdateZoneInput struct {
	Name      string
	Countries []string
}

type CreateRateInput struct {
	ZoneID           string
	Name             string
	Description      string
	PriceCents       int64
	DeliveryEstimate string
}

type UpdateRateInput struct {
	Name             string
	Description      string
	PriceCents       int64
	DeliveryEstimate string
}

type Repository interface {
	CreateZone(ctx context.Context, in CreateZoneInput) (*domain.ShippingZone, error)
	GetZone(ctx context.Context, id string) (*domain.ShippingZone, error)
	ListZonesByShop(ctx context.Context, shopID string) ([]domain.ShippingZone, error)
	UpdateZone(ctx context.Context, id string, in UpdateZoneInput) (*domain.ShippingZone, error)
	DeleteZone(ctx context.Context, id string) error

	CreateRate(ctx context.Context, in CreateRateInput) (*domain.ShippingRate, error)
	GetRate(ctx context.Context, id string) (*domain.ShippingRate, error)
	ListRatesByZone(ctx context.Context, zoneID string) ([]domain.ShippingRate, error)
	// ListRatesForCountry returns rates whose zone belongs to the shop and
	// covers the destination country, cheapest first.
	ListRatesForCountry(ctx context.Context, shopID, country string) ([]domain.ShippingRate, error)
	UpdateRate(ctx context.Context, id string, in UpdateRateInput) (*domain.ShippingRate, error)
	DeleteRate(ctx context.Context, id string) error
}
