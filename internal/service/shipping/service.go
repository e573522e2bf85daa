// Package shipping resolves delivery options for a destination and manages
// the zone/rate catalog behind the admin endpoints.
package shipping

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"vendorhub/internal/domain"
	shippingrepo "vendorhub/internal/repository/shipping"

	"go.uber.org/zap"
)

type repo interface {
	CreateZone(ctx context.Context, in shippingrepo.CreateZoneInput) (*domain.ShippingZone, error)
	GetZone(ctx context.Context, id string) (*domain.ShippingZone, error)
	ListZonesByShop(ctx context.Context, shopID string) ([]domain.ShippingZone, error)
	UpdateZone(ctx context.Context, id string, in shippingrepo.UpdateZoneInput) (*domain.ShippingZone, error)
	DeleteZone(ctx context.Context, id string) error
	CreateRate(ctx context.Context, in shippingrepo.CreateRateInput) (*domain.ShippingRate, error)
	GetRate(ctx context.Context, id string) (*domain.ShippingRate, error)
	ListRatesByZone(ctx context.Context, zoneID string) ([]domain.ShippingRate, error)
	ListRatesForCountry(ctx context.Context, shopID, country string) ([]domain.ShippingRate, error)
	UpdateRate(ctx context.Context, id string, in shippingrepo.UpdateRateInput) (*domain.ShippingRate, error)
	DeleteRate(ctx context.Context, id string) error
}

type Service struct {
	repo     repo
	defaults []domain.ShippingRate
	logger   *zap.Logger
}

// DefaultRates builds the platform-wide fallback rates used when no shop
// zone covers a destination. The ids come from configuration so deployments
// stay stable across restarts.
func DefaultRates(standardID, expressID string) []domain.ShippingRate {
	return []domain.ShippingRate{
		{
			ID:               standardID,
			Name:             "Standard Shipping",
			Description:      "Tracked delivery",
			PriceCents:       599,
			DeliveryEstimate: "5-7 business days",
		},
		{
			ID:               expressID,
			Name:             "Express Shipping",
			Description:      "Priority courier",
			PriceCents:       1999,
			DeliveryEstimate: "1-2 business days",
		},
	}
}

func New(r shippingrepo.Repository, defaults []domain.ShippingRate, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: r, defaults: defaults, logger: logger}
}

// Resolve returns the eligible rates for a destination, cheapest first.
// When no zone of the shop covers the country it falls back to the
// platform defaults, so the result is never empty.
func (s *Service) Resolve(ctx context.Context, shopID, country string) ([]domain.ShippingRate, error) {
	if strings.TrimSpace(country) == "" {
		return nil, fmt.Errorf("%w: destination country required", domain.ErrInvalidInput)
	}
	rates, err := s.repo.ListRatesForCountry(ctx, shopID, country)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		s.logger.Debug("shipping: no zone match, using platform defaults",
			zap.String("shop_id", shopID), zap.String("country", country))
		rates = append([]domain.ShippingRate(nil), s.defaults...)
	}
	sort.SliceStable(rates, func(i, j int) bool { return rates[i].PriceCents < rates[j].PriceCents })
	return rates, nil
}

// RateForSelection validates that a rate id picked by the client is
// actually offered for the session's destination and returns it.
func (s *Service) RateForSelection(ctx context.Context, shopID, country, rateID string) (*domain.ShippingRate, error) {
	rates, err := s.Resolve(ctx, shopID, country)
	if err != nil {
		return nil, err
	}
	for i := range rates {
		if rates[i].ID == rateID {
			return &rates[i], nil
		}
	}
	return nil, fmt.Errorf("%w: shipping rate %s not offered for %s", domain.ErrNotFound, rateID, country)
}

type ZoneInput struct {
	ShopID    string   `json:"shopId" binding:"required"`
	Name      string   `json:"name" binding:"required"`
	Countries []string `json:"countries" binding:"required,min=1"`
}

func (s *Service) CreateZone(ctx context.Context, in ZoneInput) (*domain.ShippingZone, error) {
	return s.repo.CreateZone(ctx, shippingrepo.CreateZoneInput{
		ShopID:    in.ShopID,
		Name:      in.Name,
		Countries: normalizeCountries(in.Countries),
	})
}

func (s *Service) GetZone(ctx context.Context, id string) (*domain.ShippingZone, error) {
	return s.repo.GetZone(ctx, id)
}

func (s *Service) ListZones(ctx context.Context, shopID string) ([]domain.ShippingZone, error) {
	return s.repo.ListZonesByShop(ctx, shopID)
}

func (s *Service) UpdateZone(ctx context.Context, id, name string, countries []string) (*domain.ShippingZone, error) {
	if strings.TrimSpace(name) == "" || len(countries) == 0 {
		return nil, fmt.Errorf("%w: name and countries required", domain.ErrInvalidInput)
	}
	return s.repo.UpdateZone(ctx, id, shippingrepo.UpdateZoneInput{
		Name:      name,
		Countries: normalizeCountries(countries),
	})
}

func (s *Service) DeleteZone(ctx context.Context, id string) error {
	return s.repo.DeleteZone(ctx, id)
}

type RateInput struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	PriceCents       int64  `json:"priceCents" binding:"min=0"`
	DeliveryEstimate string `json:"deliveryEstimate"`
}

func (s *Service) CreateRate(ctx context.Context, zoneID string, in RateInput) (*domain.ShippingRate, error) {
	if _, err := s.repo.GetZone(ctx, zoneID); err != nil {
		return nil, err
	}
	return s.repo.CreateRate(ctx, shippingrepo.CreateRateInput{
		ZoneID:           zoneID,
		Name:             in.Name,
		Description:      in.Description,
		PriceCents:       in.PriceCents,
		DeliveryEstimate: in.DeliveryEstimate,
	})
}

func (s *Service) GetRate(ctx context.Context, id string) (*domain.ShippingRate, error) {
	return s.repo.GetRate(ctx, id)
}

func (s *Service) ListRates(ctx context.Context, zoneID string) ([]domain.ShippingRate, error) {
	return s.repo.ListRatesByZone(ctx, zoneID)
}

func (s *Service) UpdateRate(ctx context.Context, id string, in RateInput) (*domain.ShippingRate, error) {
	return s.repo.UpdateRate(ctx, id, shippingrepo.UpdateRateInput{
		Name:             in.Name,
		Description:      in.Description,
		PriceCents:       in.PriceCents,
		DeliveryEstimate: in.DeliveryEstimate,
	})
}

func (s *Service) DeleteRate(ctx context.Context, id string) error {
	return s.repo.DeleteRate(ctx, id)
}

func normalizeCountries(countries []string) []string {
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
